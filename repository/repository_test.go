//go:build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"

	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/registry"
	"github.com/openvasp/openvasp-host/session"
	"github.com/openvasp/openvasp-host/transfers"
)

func dbTestHelper(t *testing.T, ctx context.Context) *DataBase {
	t.Helper()

	godotenv.Load("../.env")
	user := os.Getenv("POSTGRES_DB_USER")
	passwd := os.Getenv("POSTGRES_DB_PASSWORD")
	dbName := os.Getenv("POSTGRES_DB_NAME")

	cfg := DBConfig{
		ConnStr:      fmt.Sprintf("postgres://%s:%s@localhost:5432", user, passwd),
		DatabaseName: dbName,
	}

	db, err := Connect(ctx, cfg)
	assert.Nil(t, err)
	assert.Nil(t, db.Ping(ctx))
	return db
}

func TestConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := dbTestHelper(t, ctx)
	assert.Nil(t, db.Disconnect(ctx))
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := dbTestHelper(t, ctx)
	defer db.Disconnect(ctx)

	o, err := message.NewOriginator(
		"John Smith",
		"1234567800000000000001",
		message.PostalAddress{Street: "Mainstreet", Building: "1", PostCode: "8000", Town: "Zurich", Country: "CH"},
	)
	assert.Nil(t, err)
	o.PlaceOfBirth = &message.PlaceOfBirth{DateOfBirth: time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC), CityOfBirth: "Zurich", CountryOfBirth: "CH"}

	trx, err := transfers.NewOutgoing(transfers.Draft{
		Originator:   o,
		Beneficiary:  message.Beneficiary{Name: "Jane Doe", VAAN: "8765432100000000000002"},
		Asset:        message.AssetETH,
		TransferType: message.TransferTypeBlockchain,
		Amount:       "1.5",
	})
	assert.Nil(t, err)
	trx.SessionID = "sess-repo-test"

	assert.Nil(t, db.SaveTransaction(ctx, &trx))

	got, err := db.TransactionByID(ctx, trx.ID)
	assert.Nil(t, err)
	assert.Equal(t, trx.OriginatorVaan, got.OriginatorVaan)
	assert.Equal(t, "1.5", got.Amount.String())

	got.Status = transfers.StatusSessionRequested
	assert.Nil(t, db.SaveTransaction(ctx, &got))

	bySession, err := db.TransactionBySession(ctx, "sess-repo-test")
	assert.Nil(t, err)
	assert.Equal(t, transfers.StatusSessionRequested, bySession.Status)

	outgoing, err := db.Transactions(ctx, transfers.TypeOutgoing)
	assert.Nil(t, err)
	assert.NotEmpty(t, outgoing)
}

func TestTransactionNotFound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := dbTestHelper(t, ctx)
	defer db.Disconnect(ctx)

	_, err := db.TransactionByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, transfers.ErrNotFound)
}

func TestSessionRowRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := dbTestHelper(t, ctx)
	defer db.Disconnect(ctx)

	v := registry.View{
		ID:         "sess-row-test",
		Role:       "originator",
		State:      "SessionRequested",
		PeerVaspID: "bb0000ff87654321",
		IdleSince:  time.Now().UTC(),
	}
	assert.Nil(t, db.SaveSession(ctx, v))

	v.State = "TransferConfirmed"
	v.Done = true
	assert.Nil(t, db.SaveSession(ctx, v))

	got, err := db.SessionByID(ctx, "sess-row-test")
	assert.Nil(t, err)
	assert.Equal(t, "TransferConfirmed", got.State)
	assert.True(t, got.Done)
	assert.Equal(t, "bb0000ff87654321", got.PeerVaspID)

	_, err = db.SessionByID(ctx, "no-such-row")
	assert.ErrorIs(t, err, registry.ErrSessionNotFound)
}

func TestAnomalyAuditTrail(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := dbTestHelper(t, ctx)
	defer db.Disconnect(ctx)

	a := session.Anomaly{
		SessionID: "sess-anomaly-test",
		Role:      session.RoleBeneficiary,
		State:     session.StateSessionConfirmed,
		Trigger:   "TransferDispatch",
		Reason:    "transfer was not allowed for this session",
	}
	assert.Nil(t, db.WriteAnomaly(ctx, a))

	records, err := db.AnomaliesBySession(ctx, "sess-anomaly-test")
	assert.Nil(t, err)
	assert.NotEmpty(t, records)
	last := records[len(records)-1]
	assert.Equal(t, "beneficiary", last.Role)
	assert.Equal(t, "TransferDispatch", last.Trigger)
}
