package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/openvasp/openvasp-host/registry"
)

// SaveSession writes or overwrites the session info row.
func (db DataBase) SaveSession(ctx context.Context, v registry.View) error {
	_, err := db.inner.ExecContext(ctx,
		`INSERT INTO sessions (id, role, state, done, peer_vasp_id, idle_since)
			VALUES($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state, done = EXCLUDED.done,
			peer_vasp_id = EXCLUDED.peer_vasp_id, idle_since = EXCLUDED.idle_since`,
		v.ID, v.Role, v.State, v.Done, v.PeerVaspID, v.IdleSince.UnixMicro())
	if err != nil {
		return errors.Join(ErrInsertFailed, err)
	}
	return nil
}

// SessionByID reads the session info row of the given session.
func (db DataBase) SessionByID(ctx context.Context, sessionID string) (registry.View, error) {
	row := db.inner.QueryRowContext(ctx,
		`SELECT id, role, state, done, peer_vasp_id, idle_since FROM sessions WHERE id = $1`, sessionID)

	var v registry.View
	var idleSince int64
	err := row.Scan(&v.ID, &v.Role, &v.State, &v.Done, &v.PeerVaspID, &idleSince)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return registry.View{}, registry.ErrSessionNotFound
	case err != nil:
		return registry.View{}, errors.Join(ErrScanFailed, err)
	}
	v.IdleSince = time.UnixMicro(idleSince)
	return v, nil
}
