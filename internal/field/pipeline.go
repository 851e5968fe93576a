package field

import "github.com/starlane-io/starlane/internal/identity"

// EntryExitKind tags which side of a PayloadBlock's pattern a Step checks:
// Direct validates the directed wave's Core on the way in; Rtn ("return")
// validates the reflected wave's Core on the way back out. PipeEx's single
// sequential walk runs every segment's blocks against whatever Core is
// current at that point; Entry/Exit are carried through from bind-config
// YAML as documentation of a block's intended side rather than used to
// filter which segments execute (spec.md §1 leaves the full bind-config
// grammar out of scope).
type EntryExitKind int

const (
	EntryExitDirect EntryExitKind = iota
	EntryExitRtn
)

func (k EntryExitKind) String() string {
	if k == EntryExitRtn {
		return "Rtn"
	}
	return "Direct"
}

// Step is one pipeline segment's validation stage: the payload blocks to
// check on entry and/or exit.
type Step struct {
	Entry  EntryExitKind  `yaml:"entry"`
	Exit   EntryExitKind  `yaml:"exit"`
	Blocks []PayloadBlock `yaml:"blocks"`
}

// StopKind discriminates the five kinds of Stop that close a
// PipelineSegment (spec.md §4.6).
type StopKind int

const (
	// StopCore delivers the wave onward to the particle's Core.
	StopCore StopKind = iota
	// StopPoint redirects the wave to a different particle point's Core layer.
	StopPoint
	// StopCall invokes another particle synchronously and splices its
	// reflection's Core into this pipeline's own flow before continuing.
	StopCall
	// StopReflect synthesizes a reflection from the current Core and ends
	// the run; no later segment executes.
	StopReflect
	// StopErr fails the wave with a fixed reflected status and ends the run.
	StopErr
)

func (k StopKind) String() string {
	switch k {
	case StopCore:
		return "Core"
	case StopPoint:
		return "Point"
	case StopCall:
		return "Call"
	case StopReflect:
		return "Reflect"
	case StopErr:
		return "Err"
	default:
		return "Unknown"
	}
}

// Stop is a pipeline segment's terminal action.
type Stop struct {
	Kind StopKind `yaml:"kind"`

	// Point is the redirect target for StopPoint.
	Point identity.Point `yaml:"point,omitempty"`

	// Call is the target surface for StopCall.
	Call identity.Surface `yaml:"call,omitempty"`

	// Status and Msg are used by StopReflect and StopErr to build the
	// synthesized reflection's Core: Status sets the reflected Core's
	// status, Msg (when set) becomes its text body instead of the Core
	// being reflected verbatim.
	Status uint16 `yaml:"status,omitempty"`
	Msg    string `yaml:"msg,omitempty"`
}

// PipelineSegment pairs a validation Step with the Stop that follows it.
// PipeEx walks a Pipeline's segments in order. StopCore, StopPoint and
// StopCall each dispatch the wave outward, absorb the reflection they get
// back, and continue to the next segment; StopReflect and StopErr end the
// walk immediately with a synthesized reflection.
type PipelineSegment struct {
	Step Step `yaml:"step"`
	Stop Stop `yaml:"stop"`
}

// Pipeline is the ordered validation+routing program a BindConfig route
// binds to a directed wave.
type Pipeline struct {
	Segments []PipelineSegment `yaml:"pipeline"`
}
