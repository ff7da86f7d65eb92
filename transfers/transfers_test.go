package transfers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/reactive"
)

type memStore struct {
	mux      sync.Mutex
	byID     map[string]Transaction
	bySessID map[string]string
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]Transaction), bySessID: make(map[string]string)}
}

func (m *memStore) SaveTransaction(_ context.Context, trx *Transaction) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.byID[trx.ID] = *trx
	if trx.SessionID != "" {
		m.bySessID[trx.SessionID] = trx.ID
	}
	return nil
}

func (m *memStore) TransactionByID(_ context.Context, id string) (Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	trx, ok := m.byID[id]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return trx, nil
}

func (m *memStore) TransactionBySession(_ context.Context, sessionID string) (Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	id, ok := m.bySessID[sessionID]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return m.byID[id], nil
}

func (m *memStore) Transactions(_ context.Context, t Type) ([]Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	var trxs []Transaction
	for _, trx := range m.byID {
		if trx.Type == t {
			trxs = append(trxs, trx)
		}
	}
	return trxs, nil
}

type noopLog struct{}

func (noopLog) Debug(string) {}
func (noopLog) Info(string)  {}
func (noopLog) Warn(string)  {}
func (noopLog) Error(string) {}
func (noopLog) Fatal(string) {}

func naturalPersonDraft() Draft {
	o, _ := message.NewOriginator(
		"John Smith",
		"1234567800000000000001",
		message.PostalAddress{Street: "Mainstreet", Building: "1", PostCode: "8000", Town: "Zurich", Country: "CH"},
	)
	o.PlaceOfBirth = &message.PlaceOfBirth{DateOfBirth: time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC), CityOfBirth: "Zurich", CountryOfBirth: "CH"}
	return Draft{
		Originator:   o,
		Beneficiary:  message.Beneficiary{Name: "Jane Doe", VAAN: "8765432100000000000002"},
		Asset:        message.AssetETH,
		TransferType: message.TransferTypeBlockchain,
		Amount:       "1.5",
	}
}

func TestNewOutgoingCreatesRecord(t *testing.T) {
	trx, err := NewOutgoing(naturalPersonDraft())
	assert.Nil(t, err)
	assert.NotEmpty(t, trx.ID)
	assert.Equal(t, TypeOutgoing, trx.Type)
	assert.Equal(t, StatusCreated, trx.Status)
	assert.Equal(t, "1.5", trx.Amount.String())
	assert.Equal(t, "1234567800000000000001", trx.OriginatorVaan)
}

func TestNewOutgoingRejectsUnclassifiedOriginator(t *testing.T) {
	d := naturalPersonDraft()
	d.Originator.PlaceOfBirth = nil
	d.Originator.NaturalPersonIDs = nil
	_, err := NewOutgoing(d)
	assert.ErrorIs(t, err, ErrOriginatorUnclassifed)
}

func TestNewOutgoingRejectsAmbiguousOriginator(t *testing.T) {
	d := naturalPersonDraft()
	d.Originator.BIC = "ABCDCHZZ"
	_, err := NewOutgoing(d)
	assert.ErrorIs(t, err, ErrOriginatorAmbiguous)
}

func TestNewOutgoingRejectsBadAmount(t *testing.T) {
	for _, amount := range []string{"", "zero", "-1", "0"} {
		d := naturalPersonDraft()
		d.Amount = amount
		_, err := NewOutgoing(d)
		assert.ErrorIs(t, err, ErrAmountNotPositive, amount)
	}
}

func TestNewOutgoingRejectsBadVaan(t *testing.T) {
	d := naturalPersonDraft()
	d.Beneficiary.VAAN = "too short"
	_, err := NewOutgoing(d)
	assert.NotNil(t, err)
}

func TestProjectionOutgoingLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewProjection(store, noopLog{}, nil)

	trx, err := NewOutgoing(naturalPersonDraft())
	assert.Nil(t, err)
	assert.Nil(t, p.Track(ctx, trx, "sess-1"))

	p.SessionRequestSent(ctx, "sess-1")
	p.SessionReplyReceived(ctx, "sess-1", message.SessionAccepted, message.VaspInformation{ID: "bb0000ff87654321"})
	p.TransferRequestSent(ctx, "sess-1")
	p.TransferReplyReceived(ctx, "sess-1", message.TransferAccepted, "0xBEEF")
	p.TransferDispatchSent(ctx, "sess-1", message.BlockchainTransaction{ID: "0xHASH", SendingAddress: "0xA"})
	p.TransferConfirmationReceived(ctx, "sess-1", message.TransferConfirmed)
	p.SessionTerminated(ctx, "sess-1", message.SessionClosedTransferOccured)

	got, err := store.TransactionBySession(ctx, "sess-1")
	assert.Nil(t, err)
	assert.Equal(t, StatusTransferConfirmed, got.Status)
	assert.Equal(t, "bb0000ff87654321", got.PeerVaspID)
	assert.Equal(t, "0xBEEF", got.DestinationAddress)
	assert.Equal(t, "0xHASH", got.TransactionHash)
	assert.Equal(t, "0xA", got.SendingAddress)
	assert.Equal(t, "1", got.ConfirmationCode)
	assert.Equal(t, "1", got.TerminationCode)
}

func TestProjectionIncomingDeclined(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewProjection(store, noopLog{}, nil)

	p.SessionRequestReceived(ctx, "sess-2", message.VaspInformation{ID: "aa0000ff12345678"})

	got, err := store.TransactionBySession(ctx, "sess-2")
	assert.Nil(t, err)
	assert.Equal(t, TypeIncoming, got.Type)
	assert.Equal(t, StatusSessionRequested, got.Status)

	p.SessionReplySent(ctx, "sess-2", message.SessionDeclinedOriginatorVaspCouldNotBeAuthenticated)

	got, err = store.TransactionBySession(ctx, "sess-2")
	assert.Nil(t, err)
	assert.Equal(t, StatusSessionDeclined, got.Status)
	assert.Equal(t, "3", got.SessionDeclineCode)
}

func TestProjectionIncomingFilledFromTransferRequest(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewProjection(store, noopLog{}, nil)

	p.SessionRequestReceived(ctx, "sess-3", message.VaspInformation{ID: "aa0000ff12345678"})
	p.SessionReplySent(ctx, "sess-3", message.SessionAccepted)
	d := naturalPersonDraft()
	p.TransferRequestReceived(ctx, "sess-3", message.TransferRequest{
		Originator:  d.Originator,
		Beneficiary: d.Beneficiary,
		Transfer:    message.TransferDetails{VirtualAsset: message.AssetETH, TransferType: message.TransferTypeBlockchain, Amount: "1.5"},
	})

	got, err := store.TransactionBySession(ctx, "sess-3")
	assert.Nil(t, err)
	assert.Equal(t, StatusTransferRequested, got.Status)
	assert.Equal(t, "John Smith", got.OriginatorName)
	assert.Equal(t, message.AssetETH, got.Asset)
	assert.Equal(t, "1.5", got.Amount.String())
}

func TestProjectionPublishesUpdates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	obs := reactive.New[Transaction](8)
	sub := obs.Subscribe()
	defer sub.Cancel()
	p := NewProjection(store, noopLog{}, obs)

	trx, err := NewOutgoing(naturalPersonDraft())
	assert.Nil(t, err)
	assert.Nil(t, p.Track(ctx, trx, "sess-4"))
	p.SessionRequestSent(ctx, "sess-4")

	first := <-sub.Channel()
	assert.Equal(t, StatusCreated, first.Status)
	second := <-sub.Channel()
	assert.Equal(t, StatusSessionRequested, second.Status)
}

func TestProjectionDropsUntrackedSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := NewProjection(store, noopLog{}, nil)

	p.TransferRequestSent(ctx, "nobody-home")

	_, err := store.TransactionBySession(ctx, "nobody-home")
	assert.ErrorIs(t, err, ErrNotFound)
}
