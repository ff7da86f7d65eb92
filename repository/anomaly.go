package repository

import (
	"context"
	"errors"
	"time"

	"github.com/openvasp/openvasp-host/session"
)

// AnomalyRecord is the stored form of one session anomaly.
type AnomalyRecord struct {
	SessionID  string    `json:"session_id" db:"session_id"`
	Role       string    `json:"role"       db:"role"`
	State      string    `json:"state"      db:"state"`
	Trigger    string    `json:"trigger"    db:"trigger"`
	Reason     string    `json:"reason"     db:"reason"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// WriteAnomaly appends one session anomaly to the audit trail.
func (db DataBase) WriteAnomaly(ctx context.Context, a session.Anomaly) error {
	_, err := db.inner.ExecContext(ctx,
		`INSERT INTO anomalies (session_id, role, state, trigger, reason, recorded_at)
			VALUES($1, $2, $3, $4, $5, $6)`,
		a.SessionID, a.Role.String(), a.State.String(), a.Trigger, a.Reason, time.Now().UnixMicro())
	if err != nil {
		return errors.Join(ErrInsertFailed, err)
	}
	return nil
}

// AnomaliesBySession reads the audit trail of one session, oldest first.
func (db DataBase) AnomaliesBySession(ctx context.Context, sessionID string) ([]AnomalyRecord, error) {
	rows, err := db.inner.QueryContext(ctx,
		`SELECT session_id, role, state, trigger, reason, recorded_at
			FROM anomalies WHERE session_id = $1 ORDER BY recorded_at ASC`, sessionID)
	if err != nil {
		return nil, errors.Join(ErrSelectFailed, err)
	}
	defer rows.Close()

	var records []AnomalyRecord
	for rows.Next() {
		var r AnomalyRecord
		var recordedAt int64
		if err := rows.Scan(&r.SessionID, &r.Role, &r.State, &r.Trigger, &r.Reason, &recordedAt); err != nil {
			return nil, errors.Join(ErrScanFailed, err)
		}
		r.RecordedAt = time.UnixMicro(recordedAt)
		records = append(records, r)
	}
	return records, nil
}
