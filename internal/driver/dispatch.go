package driver

import (
	"context"
	"errors"

	"github.com/starlane-io/starlane/internal/wave"
)

// ErrEmptyHyperSubstance is the ProtocolError raised when a HyperEmpty body
// reaches a DriverHandler that has not opted into accepting it (spec.md §9
// open question on HyperSubstance::Empty; resolved per SPEC_FULL.md §3.1).
var ErrEmptyHyperSubstance = errors.New("driver: empty HyperSubstance rejected at driver boundary")

// DispatchHyper is the guarded entry point the core uses to hand a
// hyper-message to a DriverHandler: it rejects HyperEmpty unless h opts in,
// then delegates.
func DispatchHyper(ctx context.Context, h DriverHandler, hyper wave.HyperSubstance) (wave.Core, error) {
	if hyper.Kind == wave.HyperEmpty && !h.AcceptsEmptyHyper() {
		return wave.Core{}, ErrEmptyHyperSubstance
	}
	return h.Handle(ctx, hyper)
}
