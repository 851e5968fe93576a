package router

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

// Transport sends an enveloped wave's wire bytes to a named star and is
// implemented by whatever inter-star connection starlane has open — a
// single TCP-framed link per spec.md §6, in the reference cmd/starlane
// deployment.
type Transport interface {
	Send(ctx context.Context, star identity.StarKey, frame []byte) error
}

// GravityRouter is the star→star egress half of the Router Fabric: it
// envelopes a wave bound for a remote star as a Hyp<Transport> directed
// wave whose body carries the inner wave's wire bytes, and hands it to the
// Transport, bounding concurrent sends the way the teacher bounds its
// concurrent step workers (errgroup.SetLimit).
type GravityRouter struct {
	transport Transport
	self      identity.Surface
	maxInFlight int
}

// NewGravityRouter builds a GravityRouter. self addresses this star's own
// gravity surface, used as the From of the envelope wave. maxInFlight
// bounds concurrent outbound sends (spec.md §5 transport-outbound
// backpressure); zero or negative disables the bound.
func NewGravityRouter(transport Transport, self identity.Surface, maxInFlight int) *GravityRouter {
	return &GravityRouter{transport: transport, self: self, maxInFlight: maxInFlight}
}

// Route envelopes d as a Hyp<Transport> wave (spec.md §4.7: "wrapped in an
// outer directed wave of method Hyp<Transport> whose body is the inner
// wave") and sends the envelope's wire bytes to star. It blocks only long
// enough to hand the frame to the Transport; GravityRouter itself does not
// retry a failed send.
func (g *GravityRouter) Route(ctx context.Context, star identity.StarKey, d wave.Directed) error {
	if len(d.To) != 1 {
		return fmt.Errorf("router: gravity egress expects a single-recipient wave, got %d recipients", len(d.To))
	}
	destPoint := d.To[0].Point

	inner, err := EncodeDirected(d)
	if err != nil {
		return fmt.Errorf("router: encoding wave for %s: %w", star, err)
	}

	envelope := wave.NewSignal(
		g.self,
		identity.NewSurface(destPoint, identity.Gravity),
		wave.NewDirectedCore(wave.Hyp("Transport"), destPoint.String(), wave.HyperOf(wave.HyperSubstance{
			Kind:      wave.HyperTransport,
			Transport: inner,
		})),
	)

	frame, err := EncodeDirected(envelope)
	if err != nil {
		return fmt.Errorf("router: encoding envelope for %s: %w", star, err)
	}
	return g.transport.Send(ctx, star, frame)
}

// RouteBatch sends multiple waves to their respective stars concurrently,
// bounded by maxInFlight (golang.org/x/sync/errgroup.SetLimit, the same
// idiom the teacher uses to cap its concurrent pipeline workers). The
// first send error cancels the remaining sends and is returned.
func (g *GravityRouter) RouteBatch(ctx context.Context, jobs []RouteJob) error {
	grp, gctx := errgroup.WithContext(ctx)
	if g.maxInFlight > 0 {
		grp.SetLimit(g.maxInFlight)
	}
	for _, job := range jobs {
		job := job
		grp.Go(func() error {
			return g.Route(gctx, job.Star, job.Wave)
		})
	}
	return grp.Wait()
}

// RouteJob pairs a wave with the star RouteBatch should deliver it to.
type RouteJob struct {
	Star identity.StarKey
	Wave wave.Directed
}
