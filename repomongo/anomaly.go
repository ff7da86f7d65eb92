package repomongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openvasp/openvasp-host/session"
)

// AnomalyRecord is the stored form of one session anomaly.
type AnomalyRecord struct {
	ID         primitive.ObjectID `json:"-"           bson:"_id,omitempty"`
	SessionID  string             `json:"session_id"  bson:"session_id"`
	Role       string             `json:"role"        bson:"role"`
	State      string             `json:"state"       bson:"state"`
	Trigger    string             `json:"trigger"     bson:"trigger"`
	Reason     string             `json:"reason"      bson:"reason"`
	RecordedAt time.Time          `json:"recorded_at" bson:"recorded_at"`
}

// WriteAnomaly appends one session anomaly to the audit trail.
func (db DataBase) WriteAnomaly(ctx context.Context, a session.Anomaly) error {
	record := AnomalyRecord{
		ID:         primitive.NewObjectID(),
		SessionID:  a.SessionID,
		Role:       a.Role.String(),
		State:      a.State.String(),
		Trigger:    a.Trigger,
		Reason:     a.Reason,
		RecordedAt: time.Now(),
	}
	_, err := db.inner.Collection(anomaliesCollection).InsertOne(ctx, record)
	return err
}

// AnomaliesBySession reads the audit trail of one session, oldest first.
func (db DataBase) AnomaliesBySession(ctx context.Context, sessionID string) ([]AnomalyRecord, error) {
	opts := options.Find().SetSort(bson.M{"recorded_at": 1})
	curs, err := db.inner.Collection(anomaliesCollection).
		Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	var records []AnomalyRecord
	if err := curs.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
