package field

import (
	"context"
	"fmt"
	"sync"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

// Transmitter is the subset of transmitter.Transmitter Field needs to
// deliver an outward-dispatched wave and wait for its reflection.
type Transmitter interface {
	Direct(ctx context.Context, d wave.Directed) (wave.Reflected, error)
}

// BindConfigLoader resolves the bind config bound to a particle point:
// either the particle's own declared bind property, or — when unset — its
// owning driver's default (spec.md §4.6 step 1).
type BindConfigLoader func(ctx context.Context, point identity.Point) (*BindConfig, error)

// Field implements the Field layer (spec.md §4.6): for a directed wave
// arriving core-bound at a particle, it resolves that particle's bind
// config, selects a route for the wave's Core, and drives the route's
// Pipeline through a PipeEx — dispatching any outward Core/Point/Call stop
// through tx and absorbing its reflection — until the pipeline settles on
// a Reflect or Err.
//
// Grounded on the teacher's internal/pipeline.DefaultPipelineExecutor: a
// compiled-route cache plus an in-progress map guarded by its own mutex,
// the same shape as the teacher's in-progress execution tracking, keyed
// here by WaveId instead of execution ID.
type Field struct {
	loader BindConfigLoader
	tx     Transmitter

	bindMu sync.Mutex
	binds  map[string]*BindConfig

	inflightMu sync.Mutex
	inflight   map[identity.WaveId]*PipeEx
}

// NewField builds a Field that resolves bind configs via loader and
// dispatches outward stops through tx.
func NewField(loader BindConfigLoader, tx Transmitter) *Field {
	return &Field{
		loader:   loader,
		tx:       tx,
		binds:    make(map[string]*BindConfig),
		inflight: make(map[identity.WaveId]*PipeEx),
	}
}

// Admit runs d's Core through dest's bind config and returns the Reflected
// wave the pipeline settles on. dest is the single recipient surface this
// Field instance is admitting d for — a Ripple addressed to several
// recipients is admitted once per destination, each against its own
// particle's bind config and its own PipeEx (spec.md §4.6: "For Ripples,
// any outward Core/Point/Call stop forces bounce_backs = Count(1) because
// traversal targets a single destination at this layer").
func (f *Field) Admit(ctx context.Context, dest identity.Surface, d wave.Directed, topic string) (wave.Reflected, error) {
	bind, err := f.bindFor(ctx, dest.Point)
	if err != nil {
		return f.reflect(d, wave.NewReflectedCore(502, wave.TextOf(err.Error())))
	}

	pipeline, ok := bind.Select(d.Core, topic)
	if !ok {
		msg := fmt.Sprintf("field: no route matches %s %s for %s from=%s", d.Core.Method, d.Core.Uri, dest.Point, d.From)
		return f.reflect(d, wave.NewReflectedCore(404, wave.TextOf(msg)))
	}

	pipe := NewPipeEx(pipeline)
	f.track(d.Id, pipe)
	defer f.untrack(d.Id)

	result := pipe.Run(ctx, d.Core, f.dispatcherFor(dest))
	return f.reflect(d, result.Core)
}

// reflect builds the Reflected wave answering d, unless d is a Signal — a
// Signal's pipeline still runs for its side effects, but it never produces
// a reflection to send back (spec.md §3 invariant: "a Signal wave never
// produces a Reflected wave").
func (f *Field) reflect(d wave.Directed, core wave.Core) (wave.Reflected, error) {
	if d.Kind == wave.Signal {
		return wave.Reflected{}, nil
	}
	tmpl, err := d.Reflection()
	if err != nil {
		return wave.Reflected{}, err
	}
	return tmpl.Build(core), nil
}

// bindFor returns the cached BindConfig for point, loading and caching it
// via f.loader on first use.
func (f *Field) bindFor(ctx context.Context, point identity.Point) (*BindConfig, error) {
	key := point.String()

	f.bindMu.Lock()
	if b, ok := f.binds[key]; ok {
		f.bindMu.Unlock()
		return b, nil
	}
	f.bindMu.Unlock()

	b, err := f.loader(ctx, point)
	if err != nil {
		return nil, err
	}
	b.Compile()

	f.bindMu.Lock()
	f.binds[key] = b
	f.bindMu.Unlock()
	return b, nil
}

// InvalidateBind drops a cached BindConfig, forcing the next Admit for that
// point to reload it via the loader. Used when a particle's bind property
// or its driver's default bind config changes.
func (f *Field) InvalidateBind(point identity.Point) {
	f.bindMu.Lock()
	delete(f.binds, point.String())
	f.bindMu.Unlock()
}

// Inflight reports the number of PipeEx runs this Field is currently
// driving — exposed for the observability dashboard (spec.md §4.9).
func (f *Field) Inflight() int {
	f.inflightMu.Lock()
	defer f.inflightMu.Unlock()
	return len(f.inflight)
}

func (f *Field) track(id identity.WaveId, pipe *PipeEx) {
	f.inflightMu.Lock()
	f.inflight[id] = pipe
	f.inflightMu.Unlock()
}

func (f *Field) untrack(id identity.WaveId) {
	f.inflightMu.Lock()
	delete(f.inflight, id)
	f.inflightMu.Unlock()
}

// dispatcherFor builds the Dispatcher a PipeEx uses to resolve Core/Point/
// Call stops against the particle at dest (spec.md §4.6 execute_stop):
// StopCore addresses dest's own Core layer; StopPoint redirects to a
// different point's Core layer; StopCall addresses the stop's literal call
// target surface.
func (f *Field) dispatcherFor(dest identity.Surface) Dispatcher {
	return func(ctx context.Context, stop Stop, core wave.Core) (wave.Core, error) {
		var target identity.Surface
		switch stop.Kind {
		case StopCore:
			target = identity.NewSurface(dest.Point, identity.Core)
		case StopPoint:
			target = identity.NewSurface(stop.Point, identity.Core)
		case StopCall:
			target = stop.Call
		default:
			return wave.Core{}, fmt.Errorf("field: dispatcherFor called with non-outward stop kind %s", stop.Kind)
		}

		out := wave.NewPing(dest, target, core)
		refl, err := f.tx.Direct(ctx, out)
		if err != nil {
			return wave.Core{}, err
		}
		return refl.Core, nil
	}
}
