package field

import (
	"context"
	"errors"

	"github.com/starlane-io/starlane/internal/exchanger"
	"github.com/starlane-io/starlane/internal/wave"
)

// ExecResult is PipeEx's final outcome: the terminal Stop kind (always
// StopReflect or StopErr — Core/Point/Call stops are absorbed internally by
// Run and never escape it) and the Core to reflect.
type ExecResult struct {
	Stop StopKind
	Core wave.Core
}

// Dispatcher sends a directed wave out of the current particle — to its own
// Core (StopCore), to a different point (StopPoint), or to a resolved call
// target (StopCall) — and returns the reflected core it receives back.
// Field supplies this from its transmitter for live traversal; tests supply
// a fake.
type Dispatcher func(ctx context.Context, stop Stop, core wave.Core) (wave.Core, error)

// PipeEx cooperatively executes one Pipeline's segments, in order, against
// a wave's Core: StopCore/StopPoint/StopCall dispatch outward and absorb
// the reflection before continuing to the next segment; StopReflect and
// StopErr end the run immediately. Running out of segments without hitting
// either synthesizes an automatic reflection from whatever status/body was
// last absorbed (spec.md §4.6 pipeline execution loop).
//
// Grounded on the teacher's internal/pipeline.DefaultPipelineExecutor: a
// small struct wrapping one in-flight execution's mutable state (here, Env
// instead of PipelineExecution's Results/ArtifactPaths maps).
type PipeEx struct {
	Pipeline Pipeline
	Env      *Env
}

// NewPipeEx builds a PipeEx for one wave's run through p.
func NewPipeEx(p Pipeline) *PipeEx {
	return &PipeEx{Pipeline: p, Env: NewEnv()}
}

// Run drives the pipeline's segments against core. dispatch is called once
// per Core/Point/Call stop encountered, blocking this call until the
// outward reflection arrives — PipeEx's single-threaded cooperative
// suspension is simply this goroutine blocking; other PipeEx runs proceed
// independently on their own goroutines.
func (p *PipeEx) Run(ctx context.Context, core wave.Core, dispatch Dispatcher) ExecResult {
	for i := range p.Pipeline.Segments {
		seg := &p.Pipeline.Segments[i]

		if err := p.validate(seg.Step.Blocks, core); err != nil {
			return ExecResult{
				Stop: StopErr,
				Core: wave.NewReflectedCore(400, wave.TextOf(err.Error())),
			}
		}

		switch seg.Stop.Kind {
		case StopReflect:
			return ExecResult{Stop: StopReflect, Core: wave.NewReflectedCore(statusOrDefault(seg.Stop.Status, 200), bodyOrDefault(seg.Stop.Msg, core.Body))}
		case StopErr:
			return ExecResult{Stop: StopErr, Core: wave.NewReflectedCore(statusOrDefault(seg.Stop.Status, 500), bodyOrDefault(seg.Stop.Msg, core.Body))}
		case StopCore, StopPoint, StopCall:
			reflected, err := dispatch(ctx, seg.Stop, core)
			if err != nil {
				var timeout *exchanger.TimeoutError
				status := uint16(502)
				if errors.As(err, &timeout) {
					status = 504
				}
				return ExecResult{Stop: StopErr, Core: wave.NewReflectedCore(status, wave.TextOf(err.Error()))}
			}
			core = core.MergeHeaders(reflected.Headers)
			core.Status = reflected.Status
			core.Body = reflected.Body
		}
	}
	return ExecResult{Stop: StopReflect, Core: wave.NewReflectedCore(statusOrDefault(core.Status, 200), core.Body)}
}

func (p *PipeEx) validate(blocks []PayloadBlock, core wave.Core) error {
	for _, b := range blocks {
		if err := b.Validate(core.Body); err != nil {
			return err
		}
	}
	return nil
}

func statusOrDefault(status, def uint16) uint16 {
	if status == 0 {
		return def
	}
	return status
}

// bodyOrDefault builds an Err{status,msg}-shaped text body when msg is set
// (spec.md §3/§4.6), falling back to the current Core's own body otherwise.
func bodyOrDefault(msg string, def wave.Substance) wave.Substance {
	if msg == "" {
		return def
	}
	return wave.TextOf(msg)
}
