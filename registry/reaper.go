package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/session"
)

// watch expires the beneficiary session when the application sits on a
// pending decision past the decision timeout. The loop lives for as long as
// the session does, each armed decision gate is awaited in turn.
func (r *Registry) watch(b *session.Beneficiary) {
	for {
		if b.Done() {
			return
		}
		if err := b.AwaitDecision(context.Background()); err != nil {
			return
		}
		time.Sleep(r.sweepPeriod)
	}
}

// Run sweeps terminal sessions out of the maps and terminates sessions idle
// past the idle timeout. Blocks until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Registry) sweep(ctx context.Context) {
	r.mux.RLock()
	machines := make([]machine, 0, len(r.originators)+len(r.beneficiaries))
	for _, o := range r.originators {
		machines = append(machines, o)
	}
	for _, b := range r.beneficiaries {
		machines = append(machines, b)
	}
	r.mux.RUnlock()

	done := make([]string, 0)
	stale := make([]machine, 0)
	for _, m := range machines {
		switch {
		case m.Done():
			done = append(done, m.ID())
		case time.Since(m.IdleSince()) > r.idleTimeout:
			stale = append(stale, m)
		}
	}

	r.mux.Lock()
	for _, id := range done {
		delete(r.originators, id)
		delete(r.beneficiaries, id)
	}
	r.mux.Unlock()

	for _, m := range stale {
		r.log.Info(fmt.Sprintf("terminating session [ %s ] idle since [ %s ]", m.ID(), m.IdleSince()))
		r.terminateStale(ctx, m)
	}

	r.audit(ctx, machines)
}

// audit upserts the session rows of the sweep snapshot and flushes queued
// anomaly records. Done sessions get their final row here before the maps
// forget them.
func (r *Registry) audit(ctx context.Context, machines []machine) {
	if r.aud == nil {
		return
	}
	for _, m := range machines {
		if err := r.aud.SaveSession(ctx, view(m)); err != nil {
			r.log.Error(fmt.Sprintf("saving session row [ %s ]: %s", m.ID(), err))
		}
	}

	r.anomMux.Lock()
	queued := r.unsaved
	r.unsaved = nil
	r.anomMux.Unlock()
	for _, a := range queued {
		if err := r.aud.WriteAnomaly(ctx, a); err != nil {
			r.log.Error(fmt.Sprintf("writing anomaly record [ %s ]: %s", a.SessionID, err))
		}
	}
}

func (r *Registry) terminateStale(ctx context.Context, m machine) {
	switch s := m.(type) {
	case *session.Originator:
		if err := s.Terminate(ctx, message.SessionClosedTransferCancelledByOriginator); err != nil {
			r.log.Warn(fmt.Sprintf("terminating idle session [ %s ]: %s", m.ID(), err))
		}
	case *session.Beneficiary:
		if err := s.Terminate(ctx, message.SessionClosedTransferCancelledByOriginator); err != nil {
			r.log.Warn(fmt.Sprintf("terminating idle session [ %s ]: %s", m.ID(), err))
		}
	}
}
