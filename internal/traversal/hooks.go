package traversal

import (
	"context"

	"github.com/starlane-io/starlane/internal/identity"
)

// Hooks is the capability a particle layer implements to participate in a
// traversal. Every method defaults to a pass-through no-op via NoopHooks so
// a layer only needs to override the hooks it actually cares about —
// mirroring the teacher's functional-options idiom, but as an embeddable
// struct instead of constructor options, since hooks are invoked by the
// engine rather than configured once at construction.
type Hooks[W any] interface {
	// OnEnter runs once, before the traversal takes its first step, while
	// Phase is still PhaseEnter.
	OnEnter(ctx context.Context, t *Traversal[W]) error
	// OnStep runs before each layer-to-layer step, while Phase is
	// PhaseAdvancingCore or PhaseAdvancingFabric. from is the layer being
	// left, to is the layer about to be entered.
	OnStep(ctx context.Context, t *Traversal[W], from, to identity.Layer) error
	// OnArrive runs once the traversal reaches its direction's terminal
	// layer (PhaseAtDest).
	OnArrive(ctx context.Context, t *Traversal[W]) error
	// OnExit runs once the traversal is fully done (PhaseDone), whether it
	// arrived normally or was stopped early by an error.
	OnExit(ctx context.Context, t *Traversal[W]) error
}

// NoopHooks is a zero-value Hooks implementation; embed it in a layer's
// hook type to inherit pass-through behavior for any method not overridden.
type NoopHooks[W any] struct{}

func (NoopHooks[W]) OnEnter(context.Context, *Traversal[W]) error                { return nil }
func (NoopHooks[W]) OnStep(context.Context, *Traversal[W], identity.Layer, identity.Layer) error {
	return nil
}
func (NoopHooks[W]) OnArrive(context.Context, *Traversal[W]) error { return nil }
func (NoopHooks[W]) OnExit(context.Context, *Traversal[W]) error  { return nil }
