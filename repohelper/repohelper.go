// Package repohelper selects the repository driver behind a single
// connection string. Every driver carries the full storage surface of the
// host, so the rest of the process never knows which one runs underneath.
package repohelper

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openvasp/openvasp-host/registry"
	"github.com/openvasp/openvasp-host/repomongo"
	"github.com/openvasp/openvasp-host/repository"
	"github.com/openvasp/openvasp-host/session"
	"github.com/openvasp/openvasp-host/transfers"
)

var ErrDatabaseNotSupported = fmt.Errorf("database not supported")

// SessionAuditor abstracts session row and anomaly record operations.
type SessionAuditor interface {
	SaveSession(ctx context.Context, v registry.View) error
	SessionByID(ctx context.Context, sessionID string) (registry.View, error)
	WriteAnomaly(ctx context.Context, a session.Anomaly) error
}

// ConnectionCloser abstracts connection closing operations.
type ConnectionCloser interface {
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
}

// RepositoryProvider is the full storage surface a driver must implement
// to back the host: transaction store, log sink and session audit trail.
type RepositoryProvider interface {
	transfers.Store
	io.Writer
	SessionAuditor
	ConnectionCloser
}

// Config contains configuration for the database.
type Config struct {
	ConnStr      string `yaml:"conn_str"`      // ConnStr is the connection string to the database.
	DatabaseName string `yaml:"database_name"` // DatabaseName is the name of the database.
	IsSSL        bool   `yaml:"is_ssl"`        // IsSSL only applies to the PostgreSQL driver.
}

// Connect connects to the database the connection string points at and
// returns that connection.
func (cfg Config) Connect(ctx context.Context) (RepositoryProvider, error) {
	switch {
	case strings.Contains(cfg.ConnStr, "postgres"):
		return repository.Connect(ctx, repository.DBConfig{
			ConnStr:      cfg.ConnStr,
			DatabaseName: cfg.DatabaseName,
			IsSSL:        cfg.IsSSL,
		})
	case strings.Contains(cfg.ConnStr, "mongodb"):
		return repomongo.Connect(ctx, repomongo.DBConfig{
			ConnStr:      cfg.ConnStr,
			DatabaseName: cfg.DatabaseName,
		})
	}

	return nil, ErrDatabaseNotSupported
}
