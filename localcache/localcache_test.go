package localcache

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openvasp/openvasp-host/transfers"
)

func newTrx(typ transfers.Type, sessionID string) transfers.Transaction {
	return transfers.Transaction{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Type:      typ,
		Status:    transfers.StatusCreated,
	}
}

func TestSaveAndReadBack(t *testing.T) {
	ctx := context.Background()
	c := NewTransactionCache(Config{})

	trx := newTrx(transfers.TypeOutgoing, "sess-1")
	assert.Nil(t, c.SaveTransaction(ctx, &trx))

	byID, err := c.TransactionByID(ctx, trx.ID)
	assert.Nil(t, err)
	assert.Equal(t, trx.ID, byID.ID)

	bySession, err := c.TransactionBySession(ctx, "sess-1")
	assert.Nil(t, err)
	assert.Equal(t, trx.ID, bySession.ID)
}

func TestReadMissing(t *testing.T) {
	ctx := context.Background()
	c := NewTransactionCache(Config{})

	_, err := c.TransactionByID(ctx, "missing")
	assert.ErrorIs(t, err, transfers.ErrNotFound)

	_, err = c.TransactionBySession(ctx, "missing")
	assert.ErrorIs(t, err, transfers.ErrNotFound)
}

func TestSessionIndexFollowsUpdate(t *testing.T) {
	ctx := context.Background()
	c := NewTransactionCache(Config{})

	trx := newTrx(transfers.TypeOutgoing, "")
	assert.Nil(t, c.SaveTransaction(ctx, &trx))

	_, err := c.TransactionBySession(ctx, "sess-1")
	assert.ErrorIs(t, err, transfers.ErrNotFound)

	trx.SessionID = "sess-1"
	assert.Nil(t, c.SaveTransaction(ctx, &trx))

	bySession, err := c.TransactionBySession(ctx, "sess-1")
	assert.Nil(t, err)
	assert.Equal(t, trx.ID, bySession.ID)
}

func TestTransactionsFiltersByType(t *testing.T) {
	ctx := context.Background()
	c := NewTransactionCache(Config{})

	for i := 0; i < 3; i++ {
		trx := newTrx(transfers.TypeOutgoing, fmt.Sprintf("out-%d", i))
		assert.Nil(t, c.SaveTransaction(ctx, &trx))
	}
	for i := 0; i < 2; i++ {
		trx := newTrx(transfers.TypeIncoming, fmt.Sprintf("in-%d", i))
		assert.Nil(t, c.SaveTransaction(ctx, &trx))
	}

	outgoing, err := c.Transactions(ctx, transfers.TypeOutgoing)
	assert.Nil(t, err)
	assert.Len(t, outgoing, 3)

	incoming, err := c.Transactions(ctx, transfers.TypeIncoming)
	assert.Nil(t, err)
	assert.Len(t, incoming, 2)
}

func TestCacheFull(t *testing.T) {
	ctx := context.Background()
	c := &TransactionCache{
		trxs:     make(map[string]transfers.Transaction, 2),
		sessions: make(map[string]string, 2),
		maxLen:   2,
	}

	first := newTrx(transfers.TypeOutgoing, "sess-1")
	second := newTrx(transfers.TypeOutgoing, "sess-2")
	third := newTrx(transfers.TypeOutgoing, "sess-3")

	assert.Nil(t, c.SaveTransaction(ctx, &first))
	assert.Nil(t, c.SaveTransaction(ctx, &second))
	assert.ErrorIs(t, c.SaveTransaction(ctx, &third), ErrCacheFull)

	first.Status = transfers.StatusSessionRequested
	assert.Nil(t, c.SaveTransaction(ctx, &first))
}
