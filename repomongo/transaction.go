package repomongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openvasp/openvasp-host/transfers"
)

// SaveTransaction upserts the transaction by its identifier.
func (db DataBase) SaveTransaction(ctx context.Context, trx *transfers.Transaction) error {
	opts := options.Replace().SetUpsert(true)
	_, err := db.inner.Collection(transactionsCollection).
		ReplaceOne(ctx, bson.M{"_id": trx.ID}, trx, opts)
	return err
}

// TransactionByID reads a single transaction by its identifier.
func (db DataBase) TransactionByID(ctx context.Context, id string) (transfers.Transaction, error) {
	return db.findOne(ctx, bson.M{"_id": id})
}

// TransactionBySession reads the transaction driven by the given session.
func (db DataBase) TransactionBySession(ctx context.Context, sessionID string) (transfers.Transaction, error) {
	return db.findOne(ctx, bson.M{"session_id": sessionID})
}

func (db DataBase) findOne(ctx context.Context, filter bson.M) (transfers.Transaction, error) {
	var trx transfers.Transaction
	err := db.inner.Collection(transactionsCollection).FindOne(ctx, filter).Decode(&trx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return transfers.Transaction{}, transfers.ErrNotFound
		}
		return transfers.Transaction{}, err
	}
	return trx, nil
}

// Transactions reads all transactions of the given direction, newest first.
func (db DataBase) Transactions(ctx context.Context, typ transfers.Type) ([]transfers.Transaction, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	curs, err := db.inner.Collection(transactionsCollection).
		Find(ctx, bson.M{"type": typ}, opts)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	var trxs []transfers.Transaction
	if err := curs.All(ctx, &trxs); err != nil {
		return nil, err
	}
	return trxs, nil
}
