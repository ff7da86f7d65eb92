package localcache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openvasp/openvasp-host/transfers"
)

var ErrCacheFull = errors.New("transaction cache reached its maximum size")

type Config struct {
	MaxLen int `yaml:"max_len"`
}

// TransactionCache keeps transaction records in memory. It serves as the
// store for single node setups and for tests; production setups plug the
// postgres or mongo repository instead.
type TransactionCache struct {
	trxs     map[string]transfers.Transaction
	sessions map[string]string
	mux      sync.RWMutex
	maxLen   int
}

// NewTransactionCache creates a new TransactionCache according to Config.
func NewTransactionCache(cfg Config) *TransactionCache {
	if cfg.MaxLen < 1000 {
		cfg.MaxLen = 1000
	}
	return &TransactionCache{
		trxs:     make(map[string]transfers.Transaction, cfg.MaxLen),
		sessions: make(map[string]string, cfg.MaxLen),
		maxLen:   cfg.MaxLen,
	}
}

// SaveTransaction writes or overwrites the transaction if the cache has
// enough space.
func (c *TransactionCache) SaveTransaction(_ context.Context, trx *transfers.Transaction) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if _, ok := c.trxs[trx.ID]; !ok && len(c.trxs) == c.maxLen {
		return fmt.Errorf("%w, max size of [ %v ]", ErrCacheFull, c.maxLen)
	}
	if prev, ok := c.trxs[trx.ID]; ok && prev.SessionID != trx.SessionID {
		delete(c.sessions, prev.SessionID)
	}
	c.trxs[trx.ID] = *trx
	if trx.SessionID != "" {
		c.sessions[trx.SessionID] = trx.ID
	}
	return nil
}

// TransactionByID reads the transaction of the given id if it exists in the cache.
func (c *TransactionCache) TransactionByID(_ context.Context, id string) (transfers.Transaction, error) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	trx, ok := c.trxs[id]
	if !ok {
		return transfers.Transaction{}, fmt.Errorf("%w, id [ %s ]", transfers.ErrNotFound, id)
	}
	return trx, nil
}

// TransactionBySession reads the transaction tracked for the given session.
func (c *TransactionCache) TransactionBySession(_ context.Context, sessionID string) (transfers.Transaction, error) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	id, ok := c.sessions[sessionID]
	if !ok {
		return transfers.Transaction{}, fmt.Errorf("%w, session [ %s ]", transfers.ErrNotFound, sessionID)
	}
	trx, ok := c.trxs[id]
	if !ok {
		return transfers.Transaction{}, fmt.Errorf("%w, session [ %s ]", transfers.ErrNotFound, sessionID)
	}
	return trx, nil
}

// Transactions reads all the transactions of the given type.
func (c *TransactionCache) Transactions(_ context.Context, t transfers.Type) ([]transfers.Transaction, error) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	trxs := make([]transfers.Transaction, 0, len(c.trxs))
	for _, trx := range c.trxs {
		if trx.Type != t {
			continue
		}
		trxs = append(trxs, trx)
	}
	return trxs, nil
}
