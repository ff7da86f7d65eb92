// Package session implements the per-session protocol automatons of the
// OpenVASP handshake-then-transfer exchange, one specialised type per role.
// All transitions of a single session are serialized behind the session mutex;
// distinct sessions proceed fully in parallel.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openvasp/openvasp-host/message"
)

var (
	ErrInvalidState = errors.New("invalid session state for this operation")
	ErrTerminated   = errors.New("session is terminated")
)

// Anomaly describes a message or operation that arrived off the transition
// table. Anomalies are dropped without a state change but never silently.
type Anomaly struct {
	SessionID string
	Role      Role
	State     State
	Trigger   string
	Reason    string
}

// String formats the anomaly for log sinks.
func (a Anomaly) String() string {
	return fmt.Sprintf(
		"session [ %s ] role [ %s ] state [ %s ] trigger [ %s ]: %s",
		a.SessionID, a.Role, a.State, a.Trigger, a.Reason)
}

type anomalyReporter interface {
	Report(a Anomaly)
}

type sender interface {
	Send(ctx context.Context, sessionID, vaspCode, payload string) error
}

// Events receives a callback for every committed transition. Callbacks run
// inside the per-session critical section, so a session and its projection
// update atomically as a unit.
type Events interface {
	SessionRequestSent(ctx context.Context, sessionID string)
	SessionRequestReceived(ctx context.Context, sessionID string, vasp message.VaspInformation)
	SessionReplySent(ctx context.Context, sessionID string, code message.SessionReplyCode)
	SessionReplyReceived(ctx context.Context, sessionID string, code message.SessionReplyCode, vasp message.VaspInformation)
	TransferRequestSent(ctx context.Context, sessionID string)
	TransferRequestReceived(ctx context.Context, sessionID string, msg message.TransferRequest)
	TransferReplySent(ctx context.Context, sessionID string, code message.TransferReplyCode, destinationAddress string)
	TransferReplyReceived(ctx context.Context, sessionID string, code message.TransferReplyCode, destinationAddress string)
	TransferDispatchSent(ctx context.Context, sessionID string, transaction message.BlockchainTransaction)
	TransferDispatchReceived(ctx context.Context, sessionID string, transaction message.BlockchainTransaction)
	TransferConfirmationSent(ctx context.Context, sessionID string, code message.TransferConfirmationCode)
	TransferConfirmationReceived(ctx context.Context, sessionID string, code message.TransferConfirmationCode)
	SessionTerminated(ctx context.Context, sessionID string, code message.TerminationCode)
}

// core carries the state shared by both role machines.
type core struct {
	mux       sync.Mutex
	id        string
	role      Role
	state     State
	local     message.VaspInformation
	peer      message.VaspInformation
	peerCode  string
	gateway   sender
	events    Events
	reporter  anomalyReporter
	updatedAt time.Time
	retired   bool
}

func newCore(id string, role Role, local message.VaspInformation, peerCode string, gw sender, ev Events, rep anomalyReporter) core {
	return core{
		id:        id,
		role:      role,
		state:     StateCreated,
		local:     local,
		peerCode:  peerCode,
		gateway:   gw,
		events:    ev,
		reporter:  rep,
		updatedAt: time.Now(),
	}
}

// ID returns the session identifier shared by both parties.
func (c *core) ID() string { return c.id }

// Role returns the fixed role of this machine.
func (c *core) Role() Role { return c.role }

// State returns the current protocol state.
func (c *core) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.state
}

// Done reports whether the session reached a terminal state.
func (c *core) Done() bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.retired || c.state.Terminal()
}

// IdleSince returns the time of the last committed transition.
func (c *core) IdleSince() time.Time {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.updatedAt
}

// Peer returns the counterparty VASP information observed so far.
func (c *core) Peer() message.VaspInformation {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.peer
}

// transition commits a state change. Caller must hold the mutex.
func (c *core) transition(s State) {
	c.state = s
	c.updatedAt = time.Now()
}

// anomaly records an off-table trigger without changing state.
// Caller must hold the mutex.
func (c *core) anomaly(trigger, reason string) {
	c.reporter.Report(Anomaly{
		SessionID: c.id,
		Role:      c.role,
		State:     c.state,
		Trigger:   trigger,
		Reason:    reason,
	})
}

// send encodes and hands the message to the transport gateway. A failed send
// leaves the session in its pre-transition state so the triggering operation
// is safely retryable. Caller must hold the mutex.
func (c *core) send(ctx context.Context, m message.Msg) error {
	payload, err := message.Encode(m)
	if err != nil {
		return err
	}
	return c.gateway.Send(ctx, c.id, c.peerCode, payload)
}

// sendTermination closes the session towards the counterparty and retires the
// machine. The protocol state is kept, a terminated session stays readable.
// Caller must hold the mutex.
func (c *core) sendTermination(ctx context.Context, code message.TerminationCode) {
	if err := c.send(ctx, message.NewTermination(c.id, code, c.local)); err != nil {
		c.anomaly("Termination", fmt.Sprintf("send failed: %s", err))
		return
	}
	c.retired = true
	c.events.SessionTerminated(ctx, c.id, code)
}

func newTopic() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return "0x" + hex.EncodeToString(buf)
}
