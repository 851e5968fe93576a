// Package router implements the Router Fabric (spec.md §4.7): the
// LayerInjectionRouter drives a directed wave through its destination
// particle's Traversal stack within this process; the GravityRouter
// (gravity.go) hands waves bound for another star to the transport.
//
// Grounded on the teacher's (re-cinq-wave) internal/pipeline.Router for the
// bounded, cooperative dispatch idiom and internal/pipeline.concurrency's
// errgroup-based worker cap, adapted here to drive the traversal engine
// instead of picking a named pipeline.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/starlane-io/starlane/internal/auditlog"
	"github.com/starlane-io/starlane/internal/driver"
	"github.com/starlane-io/starlane/internal/field"
	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/wave"
)

// Reflector is the capability the router uses to release a Transmitter's
// waiting caller once a reflection is in hand. exchanger.Exchanger
// satisfies this.
type Reflector interface {
	Reflect(r wave.Reflected) error
}

// FieldAdmitter is the Field layer capability invoked once a wave's
// traversal reaches the Field layer (field.Field satisfies this).
type FieldAdmitter interface {
	Admit(ctx context.Context, dest identity.Surface, d wave.Directed, topic string) (wave.Reflected, error)
}

// PlanResolver resolves the occupied-layer plan for a particle kind, given
// its point. In practice this is backed by whatever owns the particle's
// kind registration (a driver catalog keyed by point or kind prefix).
type PlanResolver func(ctx context.Context, point identity.Point) (*identity.TraversalPlan, error)

// DriverResolver resolves the Driver responsible for a point, used for
// waves addressed directly at a particle's Core surface (the shape Field's
// own outward Core/Point/Call stops produce).
type DriverResolver func(ctx context.Context, point identity.Point) (driver.Driver, error)

// ErrNoGravityEgress is returned when a wave is bound for a remote star but
// this router was built without a GravityRouter.
var ErrNoGravityEgress = errors.New("router: no gravity egress configured for remote delivery")

// LayerInjectionRouter implements transmitter.Router: given a stamped
// directed wave, it resolves whether the destination lives on this star or
// a remote one (via the Registry) and either injects it into a local
// traversal or hands it to the GravityRouter.
type LayerInjectionRouter struct {
	plans    PlanResolver
	drivers  DriverResolver
	field    FieldAdmitter
	reflect  Reflector
	registry registry.Registry
	gravity  *GravityRouter
	starKey  identity.StarKey
	maxHops  int
	log      auditlog.Emitter

	ingress chan struct{}
}

// Config carries LayerInjectionRouter's construction-time dependencies.
type Config struct {
	Plans       PlanResolver
	Drivers     DriverResolver
	Field       FieldAdmitter
	Reflect     Reflector
	Registry    registry.Registry
	Gravity     *GravityRouter
	StarKey     identity.StarKey
	MaxHops     int
	IngressCap  int
	AuditLogger auditlog.Emitter
}

// New builds a LayerInjectionRouter. IngressCap bounds how many waves may
// be in local injection concurrently; additional Route calls block until
// capacity frees (spec.md §5 backpressure).
func New(cfg Config) *LayerInjectionRouter {
	cap := cfg.IngressCap
	if cap <= 0 {
		cap = 256
	}
	log := cfg.AuditLogger
	if log == nil {
		log = auditlog.Noop{}
	}
	return &LayerInjectionRouter{
		plans:    cfg.Plans,
		drivers:  cfg.Drivers,
		field:    cfg.Field,
		reflect:  cfg.Reflect,
		registry: cfg.Registry,
		gravity:  cfg.Gravity,
		starKey:  cfg.StarKey,
		maxHops:  cfg.MaxHops,
		log:      log,
		ingress:  make(chan struct{}, cap),
	}
}

// Route implements transmitter.Router: it determines local vs. remote
// delivery and blocks the caller only long enough to hand the wave off —
// the Transmitter's own Exchanger wait happens independently of this call.
// A Ripple's multiple recipients are each routed independently, as a
// single-recipient clone of d, so every recipient's reflection carries its
// own From surface rather than a shared one (spec.md §4.6: "any outward
// Core/Point/Call stop forces bounce_backs = Count(1) because traversal
// targets a single destination at this layer"). Legs bound for a remote
// star fan out concurrently through the GravityRouter's own errgroup-backed
// RouteBatch; legs staying on this star inject into their particle's
// traversal directly, since that's in-process work rather than the
// network I/O RouteBatch's concurrency bound is meant for.
func (r *LayerInjectionRouter) Route(ctx context.Context, d wave.Directed) error {
	select {
	case r.ingress <- struct{}{}:
		defer func() { <-r.ingress }()
	case <-ctx.Done():
		return ctx.Err()
	}

	var remote []RouteJob
	for _, target := range d.To {
		leg := d
		leg.To = []identity.Surface{target}

		star, err := r.resolveStar(ctx, target.Point)
		if err != nil {
			return err
		}
		if star != "" && star != r.starKey {
			if r.gravity == nil {
				return fmt.Errorf("%w: %s", ErrNoGravityEgress, star)
			}
			remote = append(remote, RouteJob{Star: star, Wave: leg})
			continue
		}
		if err := r.injectLocal(ctx, leg, target); err != nil {
			return err
		}
	}

	if len(remote) > 0 {
		return r.gravity.RouteBatch(ctx, remote)
	}
	return nil
}

// resolveStar returns the remote star this point is assigned to, or "" if
// it should be handled locally (registry has no record, or the record
// names this star).
func (r *LayerInjectionRouter) resolveStar(ctx context.Context, point identity.Point) (identity.StarKey, error) {
	if r.registry == nil {
		return "", nil
	}
	rec, err := r.registry.Locate(ctx, point)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("router: locating %s: %w", point, err)
	}
	if rec.Location.Remote {
		return rec.Location.Star, nil
	}
	return "", nil
}

// injectLocal delivers d within this process, addressed at target: a wave
// addressed directly at a Core surface goes straight to the driver (the
// shape Field's own outward stops produce); anything else walks the
// particle's traversal plan, with the Field layer's arrival triggering
// bind resolution and pipeline execution (spec.md §4.6).
func (r *LayerInjectionRouter) injectLocal(ctx context.Context, d wave.Directed, target identity.Surface) error {
	if target.Layer == identity.Core {
		reflected, err := r.deliverToDriver(ctx, d)
		if err != nil {
			return err
		}
		return r.reflectUnlessSignal(d, reflected)
	}

	plan, err := r.plans(ctx, target.Point)
	if err != nil {
		return fmt.Errorf("router: resolving plan for %s: %w", target.Point, err)
	}

	hooks := &deliveryHooks{router: r, dest: target}
	t := traversal.New(d, target.Point, plan, identity.DirCore, r.maxHops)
	engine := traversal.NewEngine[wave.Directed](hooks)
	if err := engine.Run(ctx, t); err != nil {
		return err
	}
	if hooks.err != nil {
		return hooks.err
	}
	if hooks.reflected == nil {
		return nil
	}
	return r.reflectUnlessSignal(d, *hooks.reflected)
}

func (r *LayerInjectionRouter) reflectUnlessSignal(d wave.Directed, reflected wave.Reflected) error {
	if d.Kind == wave.Signal {
		return nil
	}
	return r.reflect.Reflect(reflected)
}

// deliverToDriver delivers d straight to its Core-layer driver. d must
// already carry exactly one recipient (Route clones Ripple's multiple
// recipients into single-target legs before either this or injectLocal
// sees them).
func (r *LayerInjectionRouter) deliverToDriver(ctx context.Context, d wave.Directed) (wave.Reflected, error) {
	point := d.To[0].Point

	drv, err := r.drivers(ctx, point)
	if err != nil {
		return wave.Reflected{}, fmt.Errorf("router: resolving driver for %s: %w", point, err)
	}
	sphere, err := drv.Item(ctx, point)
	if err != nil {
		return wave.Reflected{}, fmt.Errorf("router: resolving item for %s: %w", point, err)
	}

	var core wave.Core
	switch {
	case sphere.Handler != nil:
		core, err = sphere.Handler.Handle(ctx, d.Core)
	case sphere.Router != nil:
		core, err = sphere.Router.Route(ctx, point, d.Core)
	default:
		return wave.Reflected{}, fmt.Errorf("router: %s resolved to an empty ItemSphere", point)
	}
	if err != nil {
		return wave.Reflected{}, err
	}

	tmpl, err := d.Reflection()
	if err != nil {
		return wave.Reflected{}, err
	}
	return tmpl.Build(core), nil
}

// deliveryHooks implements traversal.Hooks[wave.Directed]: it is a
// no-op pass-through at every layer except Field, where it runs the full
// bind/pipeline flow and captures the result for injectLocal to reflect.
type deliveryHooks struct {
	traversal.NoopHooks[wave.Directed]
	router    *LayerInjectionRouter
	dest      identity.Surface
	reflected *wave.Reflected
	err       error
}

func (h *deliveryHooks) OnStep(ctx context.Context, t *traversal.Traversal[wave.Directed], from, to identity.Layer) error {
	h.router.log.Emit(auditlog.Event{
		Kind:   auditlog.KindLayerTraversed,
		WaveId: t.Wave.Id.String(),
		Point:  t.Dest.String(),
		Layer:  to.String(),
	})
	if (from != identity.Field && to != identity.Field) || h.reflected != nil {
		return nil
	}
	reflected, err := h.router.field.Admit(ctx, h.dest, t.Wave, string(h.dest.Topic))
	if err != nil {
		h.err = err
		return err
	}
	h.reflected = &reflected
	return nil
}

func (h *deliveryHooks) OnArrive(ctx context.Context, t *traversal.Traversal[wave.Directed]) error {
	if h.reflected != nil {
		return nil
	}
	if t.Layer != identity.Core {
		return nil
	}
	reflected, err := h.router.deliverToDriver(ctx, t.Wave)
	if err != nil {
		h.err = err
		return err
	}
	h.reflected = &reflected
	return nil
}
