// Package traversal drives a wave through a particle's occupied layer
// stack, one layer at a time, invoking the layer-specific hooks a particle
// kind registers along the way. It is deliberately generic over the wave
// shape it carries (wave.Directed or wave.Reflected) so the same engine
// walks both directions of travel.
//
// Grounded on the teacher's (re-cinq-wave) internal/pipeline.DAGValidator
// state-walking idiom (visited/recStack bookkeeping driving a single-pass
// traversal) and internal/pipeline.Router's priority-ordered matching,
// adapted here to a fixed, pre-validated layer order instead of a DAG.
package traversal

import "github.com/starlane-io/starlane/internal/identity"

// Phase enumerates the traversal state machine's states.
type Phase int

const (
	// PhaseEnter is the traversal's initial state, before any layer hook has
	// run.
	PhaseEnter Phase = iota
	// PhaseAdvancingCore means the wave is stepping towards Core.
	PhaseAdvancingCore
	// PhaseAdvancingFabric means the wave is stepping towards Gravity.
	PhaseAdvancingFabric
	// PhaseAtDest means the wave has reached the last layer its direction
	// of travel visits (Core for an inbound wave, the particle's
	// fabric-most occupied layer for an outbound one).
	PhaseAtDest
	// PhaseDone means the traversal has finished and produced no further hooks.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseEnter:
		return "Enter"
	case PhaseAdvancingCore:
		return "AdvancingCore"
	case PhaseAdvancingFabric:
		return "AdvancingFabric"
	case PhaseAtDest:
		return "AtDest"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Traversal is the mutable state of one wave's walk through a single
// particle's occupied layer stack. W is wave.Directed or wave.Reflected.
type Traversal[W any] struct {
	Wave    W
	Dest    identity.Point
	Plan    *identity.TraversalPlan
	Layer   identity.Layer
	Dir     identity.Direction
	Phase   Phase
	hops    int
	maxHops int
}

// New starts a traversal for dest's particle, occupying plan, entering at
// the boundary layer implied by dir: DirCore waves enter at the plan's
// fabric-most occupied layer (the one nearest Gravity) and step inward;
// DirFabric waves enter at the plan's core-most occupied layer and step
// outward. maxHops bounds the walk (spec.md §5 resource bound); zero or
// negative disables the bound.
func New[W any](w W, dest identity.Point, plan *identity.TraversalPlan, dir identity.Direction, maxHops int) *Traversal[W] {
	layers := plan.Layers()
	entry := layers[0]
	if dir == identity.DirFabric {
		entry = layers[len(layers)-1]
	}
	return &Traversal[W]{
		Wave:    w,
		Dest:    dest,
		Plan:    plan,
		Layer:   entry,
		Dir:     dir,
		Phase:   PhaseEnter,
		maxHops: maxHops,
	}
}

// Hops reports how many layer-to-layer steps this traversal has taken.
func (t *Traversal[W]) Hops() int { return t.hops }

// AtBoundary reports whether Layer is the last layer the plan visits in
// this traversal's direction (Core for DirCore, the fabric-most occupied
// layer for DirFabric).
func (t *Traversal[W]) AtBoundary() bool {
	if t.Dir == identity.DirCore {
		_, ok := t.Plan.TowardsCore(t.Layer)
		return !ok
	}
	_, ok := t.Plan.TowardsFabric(t.Layer)
	return !ok
}

// peekNext returns the layer Step would move to, without moving.
func (t *Traversal[W]) peekNext() (identity.Layer, error) {
	var next identity.Layer
	var ok bool
	if t.Dir == identity.DirCore {
		next, ok = t.Plan.TowardsCore(t.Layer)
	} else {
		next, ok = t.Plan.TowardsFabric(t.Layer)
	}
	if !ok {
		return 0, ErrAtBoundary
	}
	return next, nil
}

// Step advances Layer one position in Dir and increments the hop counter.
// It returns ErrHopLimitExceeded if maxHops is positive and already
// reached, and ErrAtBoundary if the traversal is already at its
// direction's terminal layer.
func (t *Traversal[W]) Step() error {
	if t.maxHops > 0 && t.hops >= t.maxHops {
		return ErrHopLimitExceeded
	}
	var next identity.Layer
	var ok bool
	if t.Dir == identity.DirCore {
		next, ok = t.Plan.TowardsCore(t.Layer)
	} else {
		next, ok = t.Plan.TowardsFabric(t.Layer)
	}
	if !ok {
		return ErrAtBoundary
	}
	t.Layer = next
	t.hops++
	return nil
}
