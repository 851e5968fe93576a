// Package echo implements starlane's reference Driver: a trivial
// method-routed Handler that answers every Ext/Cmd method with the body it
// was given, used to exercise Core-stop round trips from the star CLI
// command and from field/traversal tests without standing up a real
// driver (spec.md §6 treats concrete drivers as external collaborators).
//
// Grounded on the teacher's internal/adapter.AdapterRunner shape: a small
// struct implementing one narrow interface, with no state beyond what the
// call needs.
package echo

import (
	"context"

	"github.com/starlane-io/starlane/internal/driver"
	"github.com/starlane-io/starlane/internal/field"
	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

// Driver is the reference echo driver: every particle of this kind is a
// Handler that reflects its input Core back with status 200.
type Driver struct{}

func New() Driver { return Driver{} }

func (Driver) Item(_ context.Context, _ identity.Point) (driver.ItemSphere, error) {
	return driver.HandlerSphere(handler{}), nil
}

// Bind supplies the synthetic passthrough route for particles with no bind
// property of their own: deliver to Core, reflect whatever it returns.
func (Driver) Bind() field.BindConfig {
	return field.BindConfig{
		Routes: []field.RouteScope{
			{Method: "*", Path: "*", Pipeline: field.PassthroughPipeline},
		},
	}
}

func (Driver) Handler() driver.DriverHandler {
	return hyperHandler{}
}

type handler struct{}

// Handle answers with the same body and headers it received, status 200 —
// the identity transform a passthrough pipeline's Core stop expects.
func (handler) Handle(_ context.Context, core wave.Core) (wave.Core, error) {
	return wave.NewReflectedCore(200, core.Body), nil
}

type hyperHandler struct{}

// Handle answers every hyper-message with an empty 200, acknowledging
// receipt without interpreting the payload — the echo driver has no
// control-plane state of its own to mutate.
func (hyperHandler) Handle(_ context.Context, _ wave.HyperSubstance) (wave.Core, error) {
	return wave.NewReflectedCore(200, wave.Empty()), nil
}

// AcceptsEmptyHyper is false: the echo driver has nothing useful to do with
// an empty hyper-message and defers to the default rejection.
func (hyperHandler) AcceptsEmptyHyper() bool { return false }
