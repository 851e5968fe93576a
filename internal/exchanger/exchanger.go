// Package exchanger correlates reflected waves back to the directed waves
// that requested them. It is the one place in the mesh that knows how long
// a sender is willing to wait for a Pong or an EchoSet, and it is the only
// place that silently discards a reflection rather than erroring — a wave
// reflecting to an id nobody is listening for is an ordinary race, not a
// protocol violation (spec.md §4.3).
//
// Grounded on the teacher's (re-cinq-wave) internal/pipeline.DefaultPipelineExecutor:
// an in-progress map guarded by a mutex, released under functional options,
// the same shape used here for in-flight waiters.
package exchanger

import (
	"context"
	"sync"
	"time"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

// defaultTierTimeouts is used when no WithTierTimeout option overrides a
// tier.
var defaultTierTimeouts = map[wave.WaitTier]time.Duration{
	wave.WaitLow:  2 * time.Second,
	wave.WaitMed:  15 * time.Second,
	wave.WaitHigh: 60 * time.Second,
}

type waiterKind int

const (
	waitPong waiterKind = iota
	waitEchoSet
)

type waiter struct {
	kind   waiterKind
	pong   chan wave.Reflected
	notify chan struct{}

	mu     sync.Mutex
	echoes []wave.Reflected
	want   int // -1 means unbounded (BounceAll)
}

// Exchanger tracks one waiter per outstanding directed wave and resolves it
// when a matching Reflected wave arrives, or releases it on timeout.
type Exchanger struct {
	mu           sync.Mutex
	waiters      map[identity.WaveId]*waiter
	tierTimeouts map[wave.WaitTier]time.Duration
	logger       Logger
	closed       bool
	closeCh      chan struct{}
}

// Logger is the minimal logging seam the Exchanger needs; internal/auditlog
// satisfies it.
type Logger interface {
	Event(kind string, fields map[string]any)
}

// Option configures an Exchanger at construction time.
type Option func(*Exchanger)

// WithTierTimeout overrides the configured wait duration for a tier.
func WithTierTimeout(tier wave.WaitTier, d time.Duration) Option {
	return func(e *Exchanger) { e.tierTimeouts[tier] = d }
}

// WithLogger attaches a structured logger for exchange lifecycle events.
func WithLogger(l Logger) Option {
	return func(e *Exchanger) { e.logger = l }
}

// New builds an Exchanger with the default wait-tier timeout table, adjusted
// by any options given.
func New(opts ...Option) *Exchanger {
	e := &Exchanger{
		waiters:      make(map[identity.WaveId]*waiter),
		tierTimeouts: make(map[wave.WaitTier]time.Duration, len(defaultTierTimeouts)),
		closeCh:      make(chan struct{}),
	}
	for tier, d := range defaultTierTimeouts {
		e.tierTimeouts[tier] = d
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exchanger) timeoutFor(tier wave.WaitTier) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d, ok := e.tierTimeouts[tier]; ok {
		return d
	}
	return defaultTierTimeouts[wave.WaitMed]
}

func (e *Exchanger) log(kind string, fields map[string]any) {
	if e.logger != nil {
		e.logger.Event(kind, fields)
	}
}

// Exchange sends a Ping/Signal-shaped directed wave into the mesh via send
// and blocks until its single Pong arrives, the wait tier expires, or ctx is
// cancelled. d must carry a Single bounce-backs policy (use ExchangeSet for
// Ripple/Count/All/Timer policies); a None policy returns ErrNoReflection
// immediately without calling send.
func (e *Exchanger) Exchange(ctx context.Context, d wave.Directed, send func(wave.Directed) error) (wave.Reflected, error) {
	if d.BounceBacks.Kind == wave.BounceNone {
		return wave.Reflected{}, ErrNoReflection
	}
	if d.BounceBacks.Multiple() {
		return wave.Reflected{}, &ProtocolError{WaveId: d.Id.String(), Msg: "Exchange called with a multi-reflection bounce-backs policy; use ExchangeSet"}
	}

	w := &waiter{kind: waitPong, pong: make(chan wave.Reflected, 1)}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return wave.Reflected{}, ErrClosed
	}
	e.waiters[d.Id] = w
	e.mu.Unlock()
	defer e.forget(d.Id)

	if err := send(d); err != nil {
		return wave.Reflected{}, err
	}

	timeout := e.timeoutFor(d.Handling.WaitTier)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	e.log("exchange.wait", map[string]any{"wave_id": d.Id.String(), "timeout": timeout.String()})

	select {
	case r := <-w.pong:
		return r, nil
	case <-timer.C:
		return wave.Reflected{}, &TimeoutError{WaveId: d.Id.String(), WaitTier: d.Handling.WaitTier}
	case <-ctx.Done():
		return wave.Reflected{}, ctx.Err()
	case <-e.closeCh:
		return wave.Reflected{}, ErrClosed
	}
}

// ExchangeSet sends a Ripple-shaped directed wave via send and accumulates
// Echoes until d's BounceBacks policy is satisfied: BounceCount returns as
// soon as Count echoes arrive, BounceAll/BounceTimer accumulate until ctx is
// cancelled or the timeout expires — the policy's own Timer for BounceTimer
// (when non-zero, in place of the wait tier), the wave's wait tier
// otherwise — returning whatever was collected by then (a partial EchoSet is a normal outcome for BounceAll, not an error).
func (e *Exchanger) ExchangeSet(ctx context.Context, d wave.Directed, send func(wave.Directed) error) ([]wave.Reflected, error) {
	if !d.BounceBacks.Multiple() {
		return nil, &ProtocolError{WaveId: d.Id.String(), Msg: "ExchangeSet called with a single-reflection bounce-backs policy; use Exchange"}
	}

	want := -1
	if d.BounceBacks.Kind == wave.BounceCount {
		want = d.BounceBacks.Count
	}
	w := &waiter{kind: waitEchoSet, notify: make(chan struct{}, 1), want: want}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.waiters[d.Id] = w
	e.mu.Unlock()
	defer e.forget(d.Id)

	if err := send(d); err != nil {
		return nil, err
	}

	timeout := e.timeoutFor(d.Handling.WaitTier)
	if d.BounceBacks.Kind == wave.BounceTimer && d.BounceBacks.Timer > 0 {
		timeout = d.BounceBacks.Timer
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-w.notify:
			w.mu.Lock()
			done := want >= 0 && len(w.echoes) >= want
			w.mu.Unlock()
			if done {
				return w.snapshot(), nil
			}
		case <-timer.C:
			return w.snapshot(), nil
		case <-ctx.Done():
			return w.snapshot(), ctx.Err()
		case <-e.closeCh:
			return w.snapshot(), ErrClosed
		}
	}
}

func (w *waiter) snapshot() []wave.Reflected {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]wave.Reflected, len(w.echoes))
	copy(out, w.echoes)
	return out
}

// Reflect delivers a Reflected wave to its correlated waiter. Unknown or
// late reflections (no registered waiter for ReflectOf) are silently
// dropped, since the waiter may have already timed out or been cancelled —
// an ordinary race, not a protocol fault (spec.md §4.3). A reflection whose
// Kind doesn't match its waiter's shape (Echo delivered to a Pong waiter or
// vice versa) is a ProtocolError: that can only happen if a sender lied
// about its own BounceBacks policy.
func (e *Exchanger) Reflect(r wave.Reflected) error {
	e.mu.Lock()
	w, ok := e.waiters[r.ReflectOf]
	e.mu.Unlock()
	if !ok {
		e.log("exchange.dropped", map[string]any{"reflect_of": r.ReflectOf.String()})
		return nil
	}

	switch w.kind {
	case waitPong:
		if r.Kind != wave.ReflectPong {
			return &ProtocolError{WaveId: r.ReflectOf.String(), Msg: "expected Pong, got " + r.Kind.String()}
		}
		select {
		case w.pong <- r:
		default:
		}
	case waitEchoSet:
		if r.Kind != wave.ReflectEcho {
			return &ProtocolError{WaveId: r.ReflectOf.String(), Msg: "expected Echo, got " + r.Kind.String()}
		}
		w.mu.Lock()
		w.echoes = append(w.echoes, r)
		w.mu.Unlock()
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
	return nil
}

// Cancel releases a waiter before it would naturally resolve, e.g. when a
// caller gives up on an open-ended BounceAll exchange early.
func (e *Exchanger) Cancel(id identity.WaveId) {
	e.forget(id)
}

func (e *Exchanger) forget(id identity.WaveId) {
	e.mu.Lock()
	delete(e.waiters, id)
	e.mu.Unlock()
}

// Close releases all outstanding waiters and rejects any future Exchange or
// ExchangeSet call with ErrClosed.
func (e *Exchanger) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.waiters = make(map[identity.WaveId]*waiter)
	e.mu.Unlock()
	close(e.closeCh)
}

// Pending reports the number of outstanding waiters.
func (e *Exchanger) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.waiters)
}
