package traversal

import (
	"context"

	"github.com/starlane-io/starlane/internal/identity"
)

// Engine drives a single Traversal through its full state machine,
// invoking Hooks at each phase transition.
type Engine[W any] struct {
	hooks Hooks[W]
}

// NewEngine builds an Engine bound to the given hook set.
func NewEngine[W any](hooks Hooks[W]) *Engine[W] {
	return &Engine[W]{hooks: hooks}
}

// Run drives t from PhaseEnter through to PhaseDone, stopping early and
// returning the first error any hook or step produces. The final phase is
// always PhaseDone, even on error, so callers can inspect t.Hops() for
// diagnostics after a failed run.
func (e *Engine[W]) Run(ctx context.Context, t *Traversal[W]) error {
	return e.drive(ctx, t, true)
}

// Inject starts t's traversal mid-stack, skipping OnEnter, for the router
// fabric's case of handing a wave directly into a particle's layer stack
// without it having freshly arrived (e.g. re-entering after a Call stop
// redirected it to a different particle). Only OnStep/OnArrive/OnExit fire.
func (e *Engine[W]) Inject(ctx context.Context, t *Traversal[W]) error {
	return e.drive(ctx, t, false)
}

func (e *Engine[W]) drive(ctx context.Context, t *Traversal[W], callOnEnter bool) error {
	if err := e.runSteps(ctx, t, callOnEnter); err != nil {
		t.Phase = PhaseDone
		_ = e.hooks.OnExit(ctx, t)
		return err
	}
	t.Phase = PhaseDone
	return e.hooks.OnExit(ctx, t)
}

func (e *Engine[W]) runSteps(ctx context.Context, t *Traversal[W], callOnEnter bool) error {
	if callOnEnter {
		if err := e.hooks.OnEnter(ctx, t); err != nil {
			return err
		}
	}

	if t.Dir == identity.DirCore {
		t.Phase = PhaseAdvancingCore
	} else {
		t.Phase = PhaseAdvancingFabric
	}

	for !t.AtBoundary() {
		if err := ctx.Err(); err != nil {
			return err
		}
		from := t.Layer
		to, err := t.peekNext()
		if err != nil {
			return err
		}
		if err := e.hooks.OnStep(ctx, t, from, to); err != nil {
			return err
		}
		if err := t.Step(); err != nil {
			return err
		}
	}

	t.Phase = PhaseAtDest
	return e.hooks.OnArrive(ctx, t)
}
