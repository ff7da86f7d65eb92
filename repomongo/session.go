package repomongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openvasp/openvasp-host/registry"
)

// SessionRecord is the stored form of one session info row.
type SessionRecord struct {
	ID         string    `json:"id"           bson:"_id"`
	Role       string    `json:"role"         bson:"role"`
	State      string    `json:"state"        bson:"state"`
	Done       bool      `json:"done"         bson:"done"`
	PeerVaspID string    `json:"peer_vasp_id" bson:"peer_vasp_id"`
	IdleSince  time.Time `json:"idle_since"   bson:"idle_since"`
}

// SaveSession upserts the session info row by session id.
func (db DataBase) SaveSession(ctx context.Context, v registry.View) error {
	record := SessionRecord{
		ID:         v.ID,
		Role:       v.Role,
		State:      v.State,
		Done:       v.Done,
		PeerVaspID: v.PeerVaspID,
		IdleSince:  v.IdleSince,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := db.inner.Collection(sessionsCollection).
		ReplaceOne(ctx, bson.M{"_id": record.ID}, record, opts)
	return err
}

// SessionByID reads the session info row of the given session.
func (db DataBase) SessionByID(ctx context.Context, sessionID string) (registry.View, error) {
	var record SessionRecord
	err := db.inner.Collection(sessionsCollection).
		FindOne(ctx, bson.M{"_id": sessionID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return registry.View{}, registry.ErrSessionNotFound
		}
		return registry.View{}, err
	}
	return registry.View{
		ID:         record.ID,
		Role:       record.Role,
		State:      record.State,
		Done:       record.Done,
		PeerVaspID: record.PeerVaspID,
		IdleSince:  record.IdleSince,
	}, nil
}
