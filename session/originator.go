package session

import (
	"context"
	"fmt"
	"time"

	"github.com/openvasp/openvasp-host/message"
)

// Originator runs the sending side of a transfer session. It is created by
// the registry right before the SessionRequest is sent and drives the
// handshake, the transfer request and the final dispatch.
type Originator struct {
	core
	originator  message.Originator
	beneficiary message.Beneficiary
	transfer    message.TransferDetails
	reply       message.TransferReplyDetails
}

// NewOriginator constructs the originator role machine for one outgoing
// transfer. The transfer details are kept so the TransferRequest can be sent
// without asking the application again once the session is accepted.
func NewOriginator(
	id string,
	originator message.Originator,
	beneficiary message.Beneficiary,
	transfer message.TransferDetails,
	local, peer message.VaspInformation,
	gw sender, ev Events, rep anomalyReporter,
) *Originator {
	c := newCore(id, RoleOriginator, local, peer.VaspCode(), gw, ev, rep)
	c.peer = peer
	return &Originator{
		core:        c,
		originator:  originator,
		beneficiary: beneficiary,
		transfer:    transfer,
	}
}

// Start sends the SessionRequest opening the session. On a failed send the
// session stays in Created and Start can be retried.
func (o *Originator) Start(ctx context.Context) error {
	o.mux.Lock()
	defer o.mux.Unlock()

	if o.state != StateCreated {
		o.anomaly("Start", "session already started")
		return ErrInvalidState
	}

	req := message.NewSessionRequest(o.id, message.HandshakeRequest{TopicA: newTopic(), ECDHPK: o.local.PK}, o.local)
	if err := o.send(ctx, req); err != nil {
		return err
	}

	o.transition(StateSessionRequested)
	o.events.SessionRequestSent(ctx, o.id)
	return nil
}

// Receive dispatches one inbound message into the machine. Messages arriving
// off the transition table are dropped with a recorded anomaly.
func (o *Originator) Receive(ctx context.Context, m message.Msg) {
	o.mux.Lock()
	defer o.mux.Unlock()

	switch msg := m.(type) {
	case message.SessionReply:
		o.onSessionReply(ctx, msg)
	case message.TransferReply:
		o.onTransferReply(ctx, msg)
	case message.TransferConfirmation:
		o.onTransferConfirmation(ctx, msg)
	case message.Termination:
		o.onTermination(ctx, msg)
	default:
		o.anomaly(m.Type().String(), "message kind not expected by the originator role")
	}
}

func (o *Originator) onSessionReply(ctx context.Context, msg message.SessionReply) {
	if o.state != StateSessionRequested {
		o.anomaly("SessionReply", "session is not awaiting a session reply")
		return
	}

	o.peer = msg.VASP
	code := message.SessionReplyCode(mustCode(msg.Envelope().MessageCode))
	if code != message.SessionAccepted {
		o.transition(StateSessionDeclined)
		o.events.SessionReplyReceived(ctx, o.id, code, msg.VASP)
		return
	}

	o.transition(StateSessionConfirmed)
	o.events.SessionReplyReceived(ctx, o.id, code, msg.VASP)

	// The accepted handshake immediately advances to the transfer phase.
	req := message.NewTransferRequest(o.id, o.originator, o.beneficiary, o.transfer, o.local)
	if err := o.send(ctx, req); err != nil {
		o.anomaly("TransferRequest", fmt.Sprintf("send failed: %s", err))
		return
	}
	o.transition(StateTransferRequested)
	o.events.TransferRequestSent(ctx, o.id)
}

func (o *Originator) onTransferReply(ctx context.Context, msg message.TransferReply) {
	if o.state != StateTransferRequested {
		o.anomaly("TransferReply", "session is not awaiting a transfer reply")
		return
	}

	code := message.TransferReplyCode(mustCode(msg.Envelope().MessageCode))
	if code != message.TransferAccepted {
		o.transition(StateTransferForbidden)
		o.events.TransferReplyReceived(ctx, o.id, code, "")
		return
	}

	o.reply = msg.Transfer
	o.transition(StateTransferAllowed)
	o.events.TransferReplyReceived(ctx, o.id, code, msg.Transfer.DestinationAddress)
}

func (o *Originator) onTransferConfirmation(ctx context.Context, msg message.TransferConfirmation) {
	if o.state != StateTransferDispatched {
		o.anomaly("TransferConfirmation", "session is not awaiting a transfer confirmation")
		return
	}

	code := message.TransferConfirmationCode(mustCode(msg.Envelope().MessageCode))
	o.transition(StateTransferConfirmed)
	o.events.TransferConfirmationReceived(ctx, o.id, code)

	o.sendTermination(ctx, message.SessionClosedTransferOccured)
}

func (o *Originator) onTermination(ctx context.Context, msg message.Termination) {
	if o.state.Terminal() {
		o.retired = true
		return
	}
	o.transition(StateTerminated)
	o.retired = true
	o.events.SessionTerminated(ctx, o.id, message.TerminationCode(mustCode(msg.Envelope().MessageCode)))
}

// Dispatch reports the executed blockchain transfer to the beneficiary VASP.
// Valid only while the session is in TransferAllowed.
func (o *Originator) Dispatch(ctx context.Context, sendingAddress, transactionHash string, at time.Time) error {
	o.mux.Lock()
	defer o.mux.Unlock()

	if o.state != StateTransferAllowed {
		o.anomaly("Dispatch", "transfer is not allowed in the current state")
		return ErrInvalidState
	}

	transaction := message.BlockchainTransaction{ID: transactionHash, DateTime: at, SendingAddress: sendingAddress}
	m := message.NewTransferDispatch(o.id, o.originator, o.beneficiary, o.reply, transaction, o.local)
	if err := o.send(ctx, m); err != nil {
		return err
	}

	o.transition(StateTransferDispatched)
	o.events.TransferDispatchSent(ctx, o.id, transaction)
	return nil
}

// Terminate closes the session towards the counterparty with the given code.
func (o *Originator) Terminate(ctx context.Context, code message.TerminationCode) error {
	o.mux.Lock()
	defer o.mux.Unlock()

	if o.retired {
		return ErrTerminated
	}
	o.sendTermination(ctx, code)
	return nil
}

func mustCode(wire string) int {
	code := 0
	for _, r := range wire {
		code = code*10 + int(r-'0')
	}
	return code
}
