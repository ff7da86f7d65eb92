package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openvasp/openvasp-host/message"
)

func inboundSessionRequest() message.SessionRequest {
	return message.NewSessionRequest("session-test", message.HandshakeRequest{TopicA: "0x0a", ECDHPK: "0x04aa"}, peerVasp())
}

func inboundTransferRequest() message.TransferRequest {
	return message.NewTransferRequest(
		"session-test",
		testOriginatorEntity(),
		message.Beneficiary{Name: "Jane Doe", VAAN: "8765432100000000000002"},
		testTransfer(),
		peerVasp(),
	)
}

func inboundDispatch() message.TransferDispatch {
	return message.NewTransferDispatch(
		"session-test",
		testOriginatorEntity(),
		message.Beneficiary{Name: "Jane Doe", VAAN: "8765432100000000000002"},
		message.TransferReplyDetails{DestinationAddress: "0xBEEF", VirtualAsset: message.AssetETH, TransferType: message.TransferTypeBlockchain, Amount: "1.5"},
		message.BlockchainTransaction{ID: "0xHASH", DateTime: time.Now().UTC(), SendingAddress: "0xA"},
		peerVasp(),
	)
}

func newTestBeneficiary(gw *fakeGateway, ev *fakeEvents, rep *fakeReporter) *Beneficiary {
	return NewBeneficiary(context.Background(), inboundSessionRequest(), localVasp(), gw, ev, rep, time.Second)
}

func TestBeneficiaryHappyPath(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := newTestBeneficiary(gw, ev, rep)

	assert.Equal(t, StateSessionRequested, b.State())
	assert.Equal(t, RoleBeneficiary, b.Role())

	assert.Nil(t, b.SessionReply(ctx, message.SessionAccepted))
	assert.Equal(t, StateSessionConfirmed, b.State())
	assert.Equal(t, message.TypeSessionReply, gw.last().Type())

	b.Receive(ctx, inboundTransferRequest())
	assert.Equal(t, StateTransferRequested, b.State())

	assert.Nil(t, b.TransferReply(ctx, message.TransferAccepted, "0xBEEF"))
	assert.Equal(t, StateTransferAllowed, b.State())
	reply, ok := gw.last().(message.TransferReply)
	assert.True(t, ok)
	assert.Equal(t, "0xBEEF", reply.Transfer.DestinationAddress)
	assert.Equal(t, "1.5", reply.Transfer.Amount)

	b.Receive(ctx, inboundDispatch())
	assert.Equal(t, StateTransferDispatched, b.State())

	assert.Nil(t, b.ConfirmTransfer(ctx, message.TransferConfirmed))
	assert.Equal(t, StateTransferConfirmed, b.State())
	confirmation, ok := gw.last().(message.TransferConfirmation)
	assert.True(t, ok)
	assert.Equal(t, "0xHASH", confirmation.Transaction.ID)
	assert.Zero(t, rep.count())
}

func TestBeneficiarySessionDeclineIsTerminal(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := newTestBeneficiary(gw, ev, rep)

	assert.Nil(t, b.SessionReply(ctx, message.SessionDeclinedOriginatorVaspDeclined))
	assert.Equal(t, StateSessionDeclined, b.State())
	assert.True(t, b.Done())

	reply, ok := gw.last().(message.SessionReply)
	assert.True(t, ok)
	assert.Equal(t, "4", reply.Envelope().MessageCode)

	// Messages after the decline are dropped.
	b.Receive(ctx, inboundTransferRequest())
	assert.Equal(t, StateSessionDeclined, b.State())
	assert.Equal(t, 1, rep.count())
}

func TestBeneficiaryTransferForbiddenOmitsDestination(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := newTestBeneficiary(gw, ev, rep)

	assert.Nil(t, b.SessionReply(ctx, message.SessionAccepted))
	b.Receive(ctx, inboundTransferRequest())

	assert.Nil(t, b.TransferReply(ctx, message.TransferDeclinedNoSuchBeneficiary, "0xNEVER"))
	assert.Equal(t, StateTransferForbidden, b.State())

	reply, ok := gw.last().(message.TransferReply)
	assert.True(t, ok)
	assert.Equal(t, "3", reply.Envelope().MessageCode)
	assert.Empty(t, reply.Transfer.DestinationAddress)
}

func TestBeneficiaryOutOfOrderDispatchIsAnomaly(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := newTestBeneficiary(gw, ev, rep)

	assert.Nil(t, b.SessionReply(ctx, message.SessionAccepted))

	// TransferDispatch before any TransferReply was given: dropped.
	b.Receive(ctx, inboundDispatch())
	assert.Equal(t, StateSessionConfirmed, b.State())
	assert.Equal(t, 1, rep.count())
}

func TestBeneficiaryDoubleDecisionIsRejected(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := newTestBeneficiary(gw, ev, rep)

	assert.Nil(t, b.SessionReply(ctx, message.SessionAccepted))
	assert.Equal(t, ErrInvalidState, b.SessionReply(ctx, message.SessionAccepted))
}

func TestBeneficiaryDecisionTimeoutRetiresSession(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := NewBeneficiary(context.Background(), inboundSessionRequest(), localVasp(), gw, ev, rep, 20*time.Millisecond)

	err := b.AwaitDecision(ctx)
	assert.ErrorIs(t, err, ErrGateTimeout)
	assert.Equal(t, StateTerminated, b.State())
	assert.True(t, b.Done())
	assert.Equal(t, 1, rep.count())

	// The counterparty is told, otherwise its originator machine waits out
	// the whole idle timeout on its own.
	term, ok := gw.last().(message.Termination)
	assert.True(t, ok)
	assert.Equal(t, "3", term.Envelope().MessageCode)
}

func TestBeneficiaryDecisionTimeoutRetiresEvenWhenSendFails(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{failNext: true}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := NewBeneficiary(context.Background(), inboundSessionRequest(), localVasp(), gw, ev, rep, 20*time.Millisecond)

	assert.ErrorIs(t, b.AwaitDecision(ctx), ErrGateTimeout)
	assert.True(t, b.Done())
	assert.Nil(t, gw.last())
	assert.Equal(t, 2, rep.count())
}

func TestBeneficiaryDecisionResolvesGate(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	ev := &fakeEvents{}
	rep := &fakeReporter{}
	b := NewBeneficiary(context.Background(), inboundSessionRequest(), localVasp(), gw, ev, rep, time.Second)

	done := make(chan error, 1)
	go func() { done <- b.AwaitDecision(ctx) }()

	assert.Nil(t, b.SessionReply(ctx, message.SessionAccepted))
	assert.Nil(t, <-done)
	assert.Equal(t, StateSessionConfirmed, b.State())
}

func TestGateResolvesExactlyOnce(t *testing.T) {
	g := NewGate()
	assert.False(t, g.Resolved())
	assert.Nil(t, g.Resolve())
	assert.ErrorIs(t, g.Resolve(), ErrGateResolved)
	assert.True(t, g.Resolved())
	assert.Nil(t, g.Await(context.Background(), time.Millisecond))
}
