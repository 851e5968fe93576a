// Package driver defines the capability trait the Core layer invokes to
// actually implement a particle kind (spec.md §6), plus the reference
// echo driver used by tests and the star CLI command.
//
// Grounded on the teacher's internal/adapter.AdapterRunner: a narrow
// interface (Run) wrapping whatever heavyweight execution a concrete
// adapter does, with auxiliary result/config structs carrying the rest.
package driver

import (
	"context"

	"github.com/starlane-io/starlane/internal/field"
	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

// Handler handles directed waves reaching Core via a method-routed
// dispatch. A particle's ItemSphere is a Handler when the particle itself
// answers requests rather than forwarding them onward.
type Handler interface {
	Handle(ctx context.Context, core wave.Core) (wave.Core, error)
}

// Router receives a wave that has reached Core and emits further waves of
// its own rather than answering directly — a particle that fans requests
// out to children, for instance.
type Router interface {
	Route(ctx context.Context, dest identity.Point, core wave.Core) (wave.Core, error)
}

// ItemSphere is the tagged union a Driver's Item method returns: either a
// Handler or a Router for the given point. Exactly one of Handler/Router
// is non-nil.
type ItemSphere struct {
	Handler Handler
	Router  Router
}

func HandlerSphere(h Handler) ItemSphere { return ItemSphere{Handler: h} }
func RouterSphere(r Router) ItemSphere   { return ItemSphere{Router: r} }

// DriverHandler answers hyper-messages (Assign, Provision, Host, Transport,
// Knock, Search) addressed to a particle kind. The core forwards
// HyperSubstance bodies to it without interpreting them.
type DriverHandler interface {
	Handle(ctx context.Context, hyper wave.HyperSubstance) (wave.Core, error)

	// AcceptsEmptyHyper reports whether this handler tolerates a
	// wave.HyperEmpty body. Dispatch rejects HyperEmpty at the
	// transport/driver boundary with ErrEmptyHyperSubstance unless the
	// handler opts in here.
	AcceptsEmptyHyper() bool
}

// Driver is constructed per particle kind and is invoked only from the
// Core layer — the rest of the core is driver-agnostic.
type Driver interface {
	// Item resolves the ItemSphere for one particle of this kind.
	Item(ctx context.Context, point identity.Point) (ItemSphere, error)

	// Bind supplies the default BindConfig for a particle of this kind
	// that has no bind property of its own set (spec.md §4.6 step 1).
	Bind() field.BindConfig

	// Handler returns the DriverHandler answering hyper-messages for this
	// driver's particle kind.
	Handler() DriverHandler
}
