// Package repomongo stores transactions, session rows, logs and session
// anomalies in MongoDB. It is selected over the PostgreSQL repository by the
// connection string scheme, see the repohelper package.
package repomongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	transactionsCollection = "transactions"
	sessionsCollection     = "sessions"
	logsCollection         = "logs"
	anomaliesCollection    = "anomalies"
)

// DBConfig contains configuration for the database.
type DBConfig struct {
	ConnStr      string `yaml:"conn_str"`      // ConnStr is the connection string to the database.
	DatabaseName string `yaml:"database_name"` // DatabaseName is the name of the database.
}

// DataBase provides database access for read, write and delete of repository entities.
type DataBase struct {
	inner mongo.Database
}

// Connect creates new connection to the repository and returns pointer to the DataBase.
func Connect(ctx context.Context, cfg DBConfig) (*DataBase, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.ConnStr))
	if err != nil {
		return nil, err
	}

	ctxx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := cli.Ping(ctxx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &DataBase{*cli.Database(cfg.DatabaseName)}, nil
}

// Disconnect disconnects user from database.
func (db DataBase) Disconnect(ctx context.Context) error {
	return db.inner.Client().Disconnect(ctx)
}

// Ping checks if the connection to the database is still alive.
func (db DataBase) Ping(ctx context.Context) error {
	return db.inner.Client().Ping(ctx, readpref.Primary())
}
