package session

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
)

// Session factura en curso de un empleado. mu protege estado y log; scanSem
// serializa los escaneos (incluida la consulta a resolvedores) de esta sesión.
type Session struct {
	mu        sync.Mutex
	scanSem   chan struct{}
	state     State
	events    []Event
	closed    bool
	touchedAt time.Time
}

func newSession(st State, now time.Time) *Session {
	return &Session{
		scanSem:   make(chan struct{}, 1),
		state:     st,
		touchedAt: now,
	}
}

// ID de la sesión.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ID
}

// State copia del estado actual.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events copia del log de eventos aplicados.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// apply numera ev, lo reduce contra el estado vigente y solo si tiene éxito lo agrega al log.
func (s *Session) apply(ev Event) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, domain.ErrSessionNotFound
	}
	ev.Seq = len(s.events) + 1
	next, err := Reduce(s.state, ev)
	if err != nil {
		return s.state, err
	}
	s.state = next
	s.events = append(s.events, ev)
	if ev.At.After(s.touchedAt) {
		s.touchedAt = ev.At
	}
	return next, nil
}

func (s *Session) touch(at time.Time) {
	s.mu.Lock()
	if at.After(s.touchedAt) {
		s.touchedAt = at
	}
	s.mu.Unlock()
}

func (s *Session) acquireScan(ctx context.Context) error {
	select {
	case s.scanSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) releaseScan() { <-s.scanSem }

// close marca la sesión como guardándose: no acepta más eventos.
func (s *Session) close() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, domain.ErrSessionNotFound
	}
	s.closed = true
	return s.state, nil
}

func (s *Session) reopen() {
	s.mu.Lock()
	s.closed = false
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}
