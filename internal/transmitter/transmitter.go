// Package transmitter is the sender-side entry point into the mesh: it
// stamps a caller's wave with the fields the caller left unset (from,
// handling) according to an OverrideStrategy, hands the wave to a Router for
// delivery, and — for shapes that expect one — awaits its reflection via the
// Exchanger.
//
// Grounded on the teacher's (re-cinq-wave) internal/pipeline.ExecutorOption
// functional-options idiom (ExecutorOption/WithEmitter/WithStateStore), used
// here for Transmitter's own construction-time defaults.
package transmitter

import (
	"context"
	"errors"

	"github.com/starlane-io/starlane/internal/exchanger"
	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

// ErrNoFromSurface is returned when a wave has no From surface and the
// Transmitter was not configured with a default agent surface to fill it
// with.
var ErrNoFromSurface = errors.New("transmitter: directed wave has no from surface and none configured")

// Router is the delivery seam a Transmitter hands stamped waves to. The
// router fabric (internal/router) implements this by injecting the wave
// into the addressed particle's traversal plan.
type Router interface {
	Route(ctx context.Context, d wave.Directed) error
}

// Transmitter stamps and dispatches directed waves, optionally waiting for
// their reflection.
type Transmitter struct {
	router     Router
	exchange   *exchanger.Exchanger
	from       identity.Surface
	hasFrom    bool
	defaultOvr wave.OverrideStrategy
}

// Option configures a Transmitter at construction time.
type Option func(*Transmitter)

// WithDefaultFrom sets the surface used to fill a wave's From field when the
// caller leaves it unset.
func WithDefaultFrom(s identity.Surface) Option {
	return func(t *Transmitter) { t.from = s; t.hasFrom = true }
}

// WithDefaultOverrideStrategy sets the strategy used when neither the
// caller's direct() call nor the wave itself specifies one. Defaults to
// Fill.
func WithDefaultOverrideStrategy(s wave.OverrideStrategy) Option {
	return func(t *Transmitter) { t.defaultOvr = s }
}

// New builds a Transmitter over the given router and exchanger.
func New(router Router, exchange *exchanger.Exchanger, opts ...Option) *Transmitter {
	t := &Transmitter{router: router, exchange: exchange, defaultOvr: wave.Fill}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// stamp fills in a directed wave's From surface and Handling according to
// the Transmitter's configured strategy: under Fill, a field already set on
// d wins; under Override, the Transmitter's configured default always wins.
func (t *Transmitter) stamp(d wave.Directed, strategy wave.OverrideStrategy) (wave.Directed, error) {
	if strategy == wave.Override && t.hasFrom {
		d.From = t.from
	} else if d.From.Zero() {
		if !t.hasFrom {
			return d, ErrNoFromSurface
		}
		d.From = t.from
	}
	if d.Handling == (wave.Handling{}) {
		d.Handling = wave.DefaultHandling
	}
	return d, nil
}

// Direct sends d with the Transmitter's default override strategy and, if
// d's BounceBacks policy expects exactly one reflection, blocks until it
// arrives. Ripple/Count/All/Timer policies are not valid here; use Ping for
// a single correlated response or Signal for fire-and-forget.
func (t *Transmitter) Direct(ctx context.Context, d wave.Directed) (wave.Reflected, error) {
	return t.DirectWithStrategy(ctx, d, t.defaultOvr)
}

// DirectWithStrategy is Direct with an explicit OverrideStrategy.
func (t *Transmitter) DirectWithStrategy(ctx context.Context, d wave.Directed, strategy wave.OverrideStrategy) (wave.Reflected, error) {
	d, err := t.stamp(d, strategy)
	if err != nil {
		return wave.Reflected{}, err
	}

	if d.BounceBacks.Kind == wave.BounceNone {
		if err := t.router.Route(ctx, d); err != nil {
			return wave.Reflected{}, err
		}
		return wave.Reflected{}, nil
	}
	return t.exchange.Exchange(ctx, d, func(sent wave.Directed) error {
		return t.router.Route(ctx, sent)
	})
}

// Ripple sends a multi-recipient directed wave and accumulates its EchoSet
// via the Exchanger, following d's BounceBacks policy.
func (t *Transmitter) Ripple(ctx context.Context, d wave.Directed) ([]wave.Reflected, error) {
	d, err := t.stamp(d, t.defaultOvr)
	if err != nil {
		return nil, err
	}
	return t.exchange.ExchangeSet(ctx, d, func(sent wave.Directed) error {
		return t.router.Route(ctx, sent)
	})
}

// Signal sends a one-way directed wave and returns as soon as it has been
// handed to the router, without waiting for any reflection.
func (t *Transmitter) Signal(ctx context.Context, d wave.Directed) error {
	d, err := t.stamp(d, t.defaultOvr)
	if err != nil {
		return err
	}
	d.BounceBacks = wave.NoBounce
	return t.router.Route(ctx, d)
}
