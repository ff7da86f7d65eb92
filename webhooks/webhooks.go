package webhooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openvasp/openvasp-host/httpclient"
	"github.com/openvasp/openvasp-host/logger"
	"github.com/openvasp/openvasp-host/reactive"
	"github.com/openvasp/openvasp-host/transfers"
)

const (
	// TriggerTransactionUpdated fires on every status change of a tracked transaction.
	TriggerTransactionUpdated byte = iota
	// TriggerDecisionRequired fires when an inbound session waits for an application decision.
	TriggerDecisionRequired
)

var ErrHookNotImplemented = errors.New("hook not implemented")

const postTimeout = time.Second * 5

// TransactionUpdatedMessage is the message sent to the webhook url about a
// transaction status change.
type TransactionUpdatedMessage struct {
	Token       string                `json:"token"` // Token given to the webhook by the webhooks creator to validate the message source.
	Time        time.Time             `json:"time"`
	Transaction transfers.Transaction `json:"transaction"`
}

// DecisionRequiredMessage is the message sent to the webhook url when a
// session waits on the owning application.
type DecisionRequiredMessage struct {
	Token     string    `json:"token"`
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
}

// Hook is the hook that is used to trigger the webhook.
type Hook struct {
	URL   string `json:"address"` // URL is a url of the webhook.
	Token string `json:"token"`   // Token is the token added to the webhook to verify that the message comes from the valid source.
}

type hooks map[string]Hook

// Service provides webhook service that is used to create, remove and update webhooks.
type Service struct {
	mux    sync.RWMutex
	buffer map[byte]hooks
	log    logger.Logger
}

// New creates new instance of the webhook service.
func New(l logger.Logger) *Service {
	return &Service{
		buffer: make(map[byte]hooks),
		log:    l,
	}
}

// CreateWebhook creates new webhook or updates existing one for given trigger.
func (s *Service) CreateWebhook(trigger byte, clientID string, h Hook) error {
	switch trigger {
	case TriggerTransactionUpdated, TriggerDecisionRequired:
		s.insertHook(trigger, clientID, h)
	default:
		return ErrHookNotImplemented
	}
	return nil
}

// RemoveWebhook removes webhook for given trigger and client id.
func (s *Service) RemoveWebhook(trigger byte, clientID string) error {
	switch trigger {
	case TriggerTransactionUpdated, TriggerDecisionRequired:
		s.removeHook(trigger, clientID)
	default:
		return ErrHookNotImplemented
	}
	return nil
}

// PostTransactionUpdated posts the transaction to all webhooks subscribed to
// the transaction updated trigger.
func (s *Service) PostTransactionUpdated(trx *transfers.Transaction) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	hs, ok := s.buffer[TriggerTransactionUpdated]
	if !ok {
		return
	}

	for _, h := range hs {
		msg := TransactionUpdatedMessage{
			Token:       h.Token,
			Time:        time.Now(),
			Transaction: *trx,
		}
		if err := httpclient.MakePost(postTimeout, h.URL, msg, nil); err != nil {
			s.log.Error(fmt.Sprintf("webhook service error posting transaction to webhook url: %s, %s", h.URL, err.Error()))
		}
	}
}

// PostDecisionRequired notifies all subscribed webhooks that the session
// waits on an application decision.
func (s *Service) PostDecisionRequired(sessionID, state string) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	hs, ok := s.buffer[TriggerDecisionRequired]
	if !ok {
		return
	}

	for _, h := range hs {
		msg := DecisionRequiredMessage{
			Token:     h.Token,
			Time:      time.Now(),
			SessionID: sessionID,
			State:     state,
		}
		if err := httpclient.MakePost(postTimeout, h.URL, msg, nil); err != nil {
			s.log.Error(fmt.Sprintf("webhook service error posting decision request to webhook url: %s, %s", h.URL, err.Error()))
		}
	}
}

// Run feeds the transaction updated trigger from the projection observable.
// Blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context, obs *reactive.Observable[transfers.Transaction]) {
	sub := obs.Subscribe()
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case trx := <-sub.Channel():
			s.PostTransactionUpdated(&trx)
		}
	}
}

func (s *Service) insertHook(trigger byte, clientID string, h Hook) {
	s.mux.Lock()
	defer s.mux.Unlock()
	hs, ok := s.buffer[trigger]
	if !ok {
		hs = make(hooks)
		s.buffer[trigger] = hs
	}
	hs[clientID] = h
}

func (s *Service) removeHook(trigger byte, clientID string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	hs, ok := s.buffer[trigger]
	if !ok {
		return
	}
	delete(hs, clientID)
}
