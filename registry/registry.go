// Package registry correlates wire traffic and application calls with the
// running session machines. It owns the session maps of both roles and is the
// single entry point for inbound payloads.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openvasp/openvasp-host/logger"
	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/session"
	"github.com/openvasp/openvasp-host/transfers"
)

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrUnknownBeneficiaryVasp = errors.New("beneficiary vasp code cannot be resolved")
)

const anomalyBacklog = 256

type Config struct {
	DecisionTimeoutSeconds int `yaml:"decision_timeout_seconds"`
	IdleTimeoutSeconds     int `yaml:"idle_timeout_seconds"`
	SweepPeriodSeconds     int `yaml:"sweep_period_seconds"`
}

func (c *Config) verify() {
	if c.DecisionTimeoutSeconds == 0 {
		c.DecisionTimeoutSeconds = 120
	}
	if c.IdleTimeoutSeconds == 0 {
		c.IdleTimeoutSeconds = 3600
	}
	if c.SweepPeriodSeconds == 0 {
		c.SweepPeriodSeconds = 5
	}
}

type resolver interface {
	Resolve(ctx context.Context, vaspCode string) (message.VaspInformation, error)
	IsAutoConfirmed(vaspCode string) bool
}

type gateway interface {
	Send(ctx context.Context, sessionID, vaspCode, payload string) error
}

type ledger interface {
	session.Events
	Track(ctx context.Context, trx transfers.Transaction, sessionID string) error
}

// Auditor persists session rows and anomaly records for offline review.
// A nil Auditor keeps the registry fully in memory.
type Auditor interface {
	SaveSession(ctx context.Context, v View) error
	WriteAnomaly(ctx context.Context, a session.Anomaly) error
}

// View is the read only projection of one running session.
type View struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	State      string    `json:"state"`
	Done       bool      `json:"done"`
	PeerVaspID string    `json:"peer_vasp_id"`
	IdleSince  time.Time `json:"idle_since"`
}

// Registry correlates sessions of both roles by session id.
// It implements the anomaly sink of the session machines.
type Registry struct {
	mux             sync.RWMutex
	originators     map[string]*session.Originator
	beneficiaries   map[string]*session.Beneficiary
	local           message.VaspInformation
	res             resolver
	gw              gateway
	led             ledger
	aud             Auditor
	log             logger.Logger
	anomMux         sync.Mutex
	anomalies       []session.Anomaly
	unsaved         []session.Anomaly
	decisionTimeout time.Duration
	idleTimeout     time.Duration
	sweepPeriod     time.Duration
}

// New creates the Registry for the local VASP identity. A nil Auditor is
// allowed, session rows and anomalies then stay in memory only.
func New(cfg Config, local message.VaspInformation, res resolver, gw gateway, led ledger, aud Auditor, log logger.Logger) (*Registry, error) {
	cfg.verify()
	if local.ID == "" {
		return nil, errors.New("local vasp identity misses the id")
	}
	return &Registry{
		originators:     make(map[string]*session.Originator),
		beneficiaries:   make(map[string]*session.Beneficiary),
		local:           local,
		res:             res,
		gw:              gw,
		led:             led,
		aud:             aud,
		log:             log,
		decisionTimeout: time.Duration(cfg.DecisionTimeoutSeconds) * time.Second,
		idleTimeout:     time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		sweepPeriod:     time.Duration(cfg.SweepPeriodSeconds) * time.Second,
	}, nil
}

// StartTransfer validates the draft, opens a new session towards the
// beneficiary VASP and sends the SessionRequest. The session id is returned
// even when the first send fails, such a session stays in Created and the
// send is retried with Resume.
func (r *Registry) StartTransfer(ctx context.Context, d transfers.Draft) (string, error) {
	trx, err := transfers.NewOutgoing(d)
	if err != nil {
		return "", err
	}
	vaan, err := message.ParseVAAN(d.Beneficiary.VAAN)
	if err != nil {
		return "", err
	}
	peer, err := r.res.Resolve(ctx, vaan.VaspCode)
	if err != nil {
		return "", errors.Join(ErrUnknownBeneficiaryVasp, err)
	}

	sessionID := uuid.NewString()
	if err := r.led.Track(ctx, trx, sessionID); err != nil {
		return "", err
	}

	details := message.TransferDetails{VirtualAsset: d.Asset, TransferType: d.TransferType, Amount: trx.Amount.String()}
	o := session.NewOriginator(sessionID, d.Originator, d.Beneficiary, details, r.local, peer, r.gw, r.led, r)
	r.mux.Lock()
	r.originators[sessionID] = o
	r.mux.Unlock()

	r.log.Info(fmt.Sprintf("transaction [ %s ] opens session [ %s ] towards vasp [ %s ]", trx.ID, sessionID, peer.ID))
	return sessionID, o.Start(ctx)
}

// Resume retries the opening SessionRequest of a session stuck in Created.
func (r *Registry) Resume(ctx context.Context, sessionID string) error {
	o, err := r.originator(sessionID)
	if err != nil {
		return err
	}
	return o.Start(ctx)
}

// OnReceive decodes one inbound payload and routes it to the session machine
// it belongs to. A first contact SessionRequest creates the beneficiary
// machine, any other message for an unknown session is dropped as an anomaly.
func (r *Registry) OnReceive(ctx context.Context, payload string) error {
	m, err := message.Decode(payload)
	if err != nil {
		r.log.Warn(fmt.Sprintf("dropping undecodable payload: %s", err))
		return err
	}

	if req, ok := m.(message.SessionRequest); ok {
		return r.onSessionRequest(ctx, req)
	}

	sessionID := m.Envelope().SessionID
	r.mux.RLock()
	o, isOriginator := r.originators[sessionID]
	b, isBeneficiary := r.beneficiaries[sessionID]
	r.mux.RUnlock()

	switch {
	case isOriginator:
		o.Receive(ctx, m)
	case isBeneficiary:
		b.Receive(ctx, m)
	default:
		r.Report(session.Anomaly{
			SessionID: sessionID,
			Trigger:   m.Type().String(),
			Reason:    "message addresses an unknown session",
		})
	}
	return nil
}

func (r *Registry) onSessionRequest(ctx context.Context, req message.SessionRequest) error {
	sessionID := req.Envelope().SessionID
	r.mux.Lock()
	if _, ok := r.beneficiaries[sessionID]; ok {
		r.mux.Unlock()
		r.Report(session.Anomaly{
			SessionID: sessionID,
			Trigger:   message.TypeSessionRequest.String(),
			Reason:    "session request repeats an already opened session",
		})
		return nil
	}
	b := session.NewBeneficiary(ctx, req, r.local, r.gw, r.led, r, r.decisionTimeout)
	r.beneficiaries[sessionID] = b
	r.mux.Unlock()

	go r.watch(b)

	peerCode := req.VASP.VaspCode()
	if _, err := r.res.Resolve(ctx, peerCode); err != nil {
		r.log.Warn(fmt.Sprintf("session [ %s ] opened by unknown vasp code [ %s ], declining", sessionID, peerCode))
		return b.SessionReply(ctx, message.SessionDeclinedOriginatorVaspCouldNotBeAuthenticated)
	}
	if r.res.IsAutoConfirmed(peerCode) {
		return b.SessionReply(ctx, message.SessionAccepted)
	}
	return nil
}

// SessionReply answers the pending session handshake of an inbound session.
func (r *Registry) SessionReply(ctx context.Context, sessionID string, code message.SessionReplyCode) error {
	b, err := r.beneficiary(sessionID)
	if err != nil {
		return err
	}
	return b.SessionReply(ctx, code)
}

// TransferReply answers the pending transfer request of an inbound session.
func (r *Registry) TransferReply(ctx context.Context, sessionID string, code message.TransferReplyCode, destinationAddress string) error {
	b, err := r.beneficiary(sessionID)
	if err != nil {
		return err
	}
	return b.TransferReply(ctx, code, destinationAddress)
}

// ConfirmTransfer acknowledges the dispatched transfer of an inbound session.
func (r *Registry) ConfirmTransfer(ctx context.Context, sessionID string, code message.TransferConfirmationCode) error {
	b, err := r.beneficiary(sessionID)
	if err != nil {
		return err
	}
	return b.ConfirmTransfer(ctx, code)
}

// Dispatch reports the executed blockchain transfer on an outbound session.
func (r *Registry) Dispatch(ctx context.Context, sessionID, sendingAddress, transactionHash string, at time.Time) error {
	o, err := r.originator(sessionID)
	if err != nil {
		return err
	}
	return o.Dispatch(ctx, sendingAddress, transactionHash, at)
}

// Terminate closes the session of either role with the given code.
func (r *Registry) Terminate(ctx context.Context, sessionID string, code message.TerminationCode) error {
	if o, err := r.originator(sessionID); err == nil {
		return o.Terminate(ctx, code)
	}
	if b, err := r.beneficiary(sessionID); err == nil {
		return b.Terminate(ctx, code)
	}
	return fmt.Errorf("%w, id [ %s ]", ErrSessionNotFound, sessionID)
}

// Session returns the view of one running session.
func (r *Registry) Session(sessionID string) (View, error) {
	if o, err := r.originator(sessionID); err == nil {
		return view(o), nil
	}
	if b, err := r.beneficiary(sessionID); err == nil {
		return view(b), nil
	}
	return View{}, fmt.Errorf("%w, id [ %s ]", ErrSessionNotFound, sessionID)
}

// Sessions returns the views of all running sessions of both roles.
// The machines are snapshotted first, session mutexes are never taken while
// the registry lock is held.
func (r *Registry) Sessions() []View {
	r.mux.RLock()
	machines := make([]machine, 0, len(r.originators)+len(r.beneficiaries))
	for _, o := range r.originators {
		machines = append(machines, o)
	}
	for _, b := range r.beneficiaries {
		machines = append(machines, b)
	}
	r.mux.RUnlock()

	views := make([]View, 0, len(machines))
	for _, m := range machines {
		views = append(views, view(m))
	}
	return views
}

// Report logs the anomaly and keeps it in the bounded backlog for
// the diagnostics endpoint. Guarded by its own lock, Report is called from
// inside session critical sections, so the audit row is queued here and
// written by the sweeper instead of blocking the session on the database.
func (r *Registry) Report(a session.Anomaly) {
	r.log.Warn(a.String())
	r.anomMux.Lock()
	defer r.anomMux.Unlock()
	if len(r.anomalies) == anomalyBacklog {
		r.anomalies = r.anomalies[1:]
	}
	r.anomalies = append(r.anomalies, a)
	if r.aud != nil {
		r.unsaved = append(r.unsaved, a)
	}
}

// Anomalies returns the recorded anomaly backlog, most recent last.
func (r *Registry) Anomalies() []session.Anomaly {
	r.anomMux.Lock()
	defer r.anomMux.Unlock()
	out := make([]session.Anomaly, len(r.anomalies))
	copy(out, r.anomalies)
	return out
}

type machine interface {
	ID() string
	Role() session.Role
	State() session.State
	Done() bool
	IdleSince() time.Time
	Peer() message.VaspInformation
}

func view(m machine) View {
	return View{
		ID:         m.ID(),
		Role:       m.Role().String(),
		State:      m.State().String(),
		Done:       m.Done(),
		PeerVaspID: m.Peer().ID,
		IdleSince:  m.IdleSince(),
	}
}

func (r *Registry) originator(sessionID string) (*session.Originator, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	o, ok := r.originators[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w, id [ %s ]", ErrSessionNotFound, sessionID)
	}
	return o, nil
}

func (r *Registry) beneficiary(sessionID string) (*session.Beneficiary, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	b, ok := r.beneficiaries[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w, id [ %s ]", ErrSessionNotFound, sessionID)
	}
	return b, nil
}
