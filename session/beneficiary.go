package session

import (
	"context"
	"fmt"
	"time"

	"github.com/openvasp/openvasp-host/message"
)

// Beneficiary runs the receiving side of a transfer session. It is created by
// the registry the instant a valid first-contact SessionRequest arrives and
// waits on the owning application to approve or decline each phase.
type Beneficiary struct {
	core
	originator      message.Originator
	beneficiary     message.Beneficiary
	transfer        message.TransferDetails
	transaction     message.BlockchainTransaction
	destination     string
	pending         *Gate
	decisionTimeout time.Duration
}

// NewBeneficiary constructs the beneficiary role machine from the received
// SessionRequest. The machine starts in SessionRequested awaiting the
// application session decision; decisionTimeout bounds every such wait.
func NewBeneficiary(
	ctx context.Context,
	req message.SessionRequest,
	local message.VaspInformation,
	gw sender, ev Events, rep anomalyReporter,
	decisionTimeout time.Duration,
) *Beneficiary {
	c := newCore(req.Envelope().SessionID, RoleBeneficiary, local, req.VASP.VaspCode(), gw, ev, rep)
	c.peer = req.VASP
	c.state = StateSessionRequested
	b := &Beneficiary{core: c, decisionTimeout: decisionTimeout}
	b.arm()
	b.events.SessionRequestReceived(ctx, b.id, req.VASP)
	return b
}

// arm parks a fresh decision gate. Caller must hold the mutex or be the
// constructor.
func (b *Beneficiary) arm() {
	b.pending = NewGate()
}

// AwaitDecision blocks until the currently pending application decision is
// taken or the decision timeout passes. Used by the registry reaper; a
// timeout retires the session.
func (b *Beneficiary) AwaitDecision(ctx context.Context) error {
	b.mux.Lock()
	gate := b.pending
	b.mux.Unlock()
	if gate == nil {
		return nil
	}

	if err := gate.Await(ctx, b.decisionTimeout); err != nil {
		b.expire(ctx, err.Error())
		return err
	}
	return nil
}

// expire retires a session stuck on an application decision. The counterparty
// is told with a Termination first, a failed send must not keep the session
// alive so the retirement proceeds either way.
func (b *Beneficiary) expire(ctx context.Context, reason string) {
	b.mux.Lock()
	defer b.mux.Unlock()
	if b.retired || b.state.Terminal() {
		return
	}
	b.anomaly("DecisionTimeout", reason)
	if err := b.send(ctx, message.NewTermination(b.id, message.SessionClosedTransferCancelledByOriginator, b.local)); err != nil {
		b.anomaly("Termination", fmt.Sprintf("send failed: %s", err))
	}
	b.transition(StateTerminated)
	b.retired = true
	b.events.SessionTerminated(ctx, b.id, message.SessionClosedTransferCancelledByOriginator)
}

// SessionReply answers the session handshake with the application decision.
// Valid only while the session is in SessionRequested.
func (b *Beneficiary) SessionReply(ctx context.Context, code message.SessionReplyCode) error {
	b.mux.Lock()
	defer b.mux.Unlock()

	if b.state != StateSessionRequested {
		b.anomaly("SessionReply", "session is not awaiting a session decision")
		return ErrInvalidState
	}

	m := message.NewSessionReply(b.id, code, message.HandshakeResponse{TopicB: newTopic()}, b.local)
	if err := b.send(ctx, m); err != nil {
		return err
	}

	b.pending.Resolve()
	if code == message.SessionAccepted {
		b.transition(StateSessionConfirmed)
	} else {
		b.transition(StateSessionDeclined)
		b.retired = true
	}
	b.events.SessionReplySent(ctx, b.id, code)
	return nil
}

// Receive dispatches one inbound message into the machine. Messages arriving
// off the transition table are dropped with a recorded anomaly.
func (b *Beneficiary) Receive(ctx context.Context, m message.Msg) {
	b.mux.Lock()
	defer b.mux.Unlock()

	switch msg := m.(type) {
	case message.TransferRequest:
		b.onTransferRequest(ctx, msg)
	case message.TransferDispatch:
		b.onTransferDispatch(ctx, msg)
	case message.Termination:
		b.onTermination(ctx, msg)
	default:
		b.anomaly(m.Type().String(), "message kind not expected by the beneficiary role")
	}
}

func (b *Beneficiary) onTransferRequest(ctx context.Context, msg message.TransferRequest) {
	if b.state != StateSessionConfirmed {
		b.anomaly("TransferRequest", "session handshake is not confirmed")
		return
	}

	b.originator = msg.Originator
	b.beneficiary = msg.Beneficiary
	b.transfer = msg.Transfer
	b.arm()
	b.transition(StateTransferRequested)
	b.events.TransferRequestReceived(ctx, b.id, msg)
}

func (b *Beneficiary) onTransferDispatch(ctx context.Context, msg message.TransferDispatch) {
	if b.state != StateTransferAllowed {
		b.anomaly("TransferDispatch", "transfer was not allowed for this session")
		return
	}

	b.transaction = msg.Transaction
	b.transition(StateTransferDispatched)
	b.events.TransferDispatchReceived(ctx, b.id, msg.Transaction)
}

func (b *Beneficiary) onTermination(ctx context.Context, msg message.Termination) {
	if b.state.Terminal() {
		b.retired = true
		return
	}
	b.transition(StateTerminated)
	b.retired = true
	b.events.SessionTerminated(ctx, b.id, message.TerminationCode(mustCode(msg.Envelope().MessageCode)))
}

// TransferReply answers the transfer request with the application decision.
// On allow the destination address is recorded, on forbid the decline code.
// Valid only while the session is in TransferRequested.
func (b *Beneficiary) TransferReply(ctx context.Context, code message.TransferReplyCode, destinationAddress string) error {
	b.mux.Lock()
	defer b.mux.Unlock()

	if b.state != StateTransferRequested {
		b.anomaly("TransferReply", "session is not awaiting a transfer decision")
		return ErrInvalidState
	}

	reply := message.TransferReplyDetails{
		DestinationAddress: destinationAddress,
		VirtualAsset:       b.transfer.VirtualAsset,
		TransferType:       b.transfer.TransferType,
		Amount:             b.transfer.Amount,
	}
	if code != message.TransferAccepted {
		reply.DestinationAddress = ""
	}

	m := message.NewTransferReply(b.id, code, b.originator, b.beneficiary, reply, b.local)
	if err := b.send(ctx, m); err != nil {
		return err
	}

	b.pending.Resolve()
	if code == message.TransferAccepted {
		b.destination = destinationAddress
		b.transition(StateTransferAllowed)
	} else {
		b.transition(StateTransferForbidden)
		b.retired = true
	}
	b.events.TransferReplySent(ctx, b.id, code, reply.DestinationAddress)
	return nil
}

// Terminate closes the session towards the counterparty with the given code.
func (b *Beneficiary) Terminate(ctx context.Context, code message.TerminationCode) error {
	b.mux.Lock()
	defer b.mux.Unlock()

	if b.retired {
		return ErrTerminated
	}
	b.sendTermination(ctx, code)
	return nil
}

// ConfirmTransfer acknowledges the dispatched transfer towards the
// originator VASP. Valid only while the session is in TransferDispatched.
func (b *Beneficiary) ConfirmTransfer(ctx context.Context, code message.TransferConfirmationCode) error {
	b.mux.Lock()
	defer b.mux.Unlock()

	if b.state != StateTransferDispatched {
		b.anomaly("TransferConfirmation", "no dispatched transfer to confirm")
		return ErrInvalidState
	}

	reply := message.TransferReplyDetails{
		DestinationAddress: b.destination,
		VirtualAsset:       b.transfer.VirtualAsset,
		TransferType:       b.transfer.TransferType,
		Amount:             b.transfer.Amount,
	}
	m := message.NewTransferConfirmation(b.id, code, b.originator, b.beneficiary, reply, b.transaction, b.local)
	if err := b.send(ctx, m); err != nil {
		return err
	}

	b.transition(StateTransferConfirmed)
	b.events.TransferConfirmationSent(ctx, b.id, code)
	return nil
}
