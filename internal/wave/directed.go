package wave

import (
	"errors"

	"github.com/starlane-io/starlane/internal/identity"
)

// ErrSignalNoReflection is returned by Directed.Reflection when called on a
// Signal wave: signals are one-way by definition and carry no reflection
// template (spec.md §3 invariant: "a Signal wave never produces a
// Reflected wave").
var ErrSignalNoReflection = errors.New("wave: Signal carries no reflection")

// DirectedKind discriminates the three directed wave shapes.
type DirectedKind int

const (
	// Ping addresses exactly one recipient and expects at most one Pong.
	Ping DirectedKind = iota
	// Ripple addresses a set of recipients (a scatter/fan-out addressed via
	// a selector) and expects an EchoSet of zero or more Echoes.
	Ripple
	// Signal addresses exactly one recipient and expects no reflection at
	// all; it is the one-way fire-and-forget shape.
	Signal
)

func (k DirectedKind) String() string {
	switch k {
	case Ping:
		return "Ping"
	case Ripple:
		return "Ripple"
	case Signal:
		return "Signal"
	default:
		return "Unknown"
	}
}

// Directed is a wave travelling from a sender towards one or more
// recipients. Its shape (Ping/Ripple/Signal) governs how many reflections,
// if any, its sender should expect back.
type Directed struct {
	Id          identity.WaveId
	Kind        DirectedKind
	From        identity.Surface
	To          []identity.Surface
	Agent       string
	Handling    Handling
	BounceBacks BounceBacks
	Core        Core

	hopCount int
	tracked  bool
}

// NewPing builds a Ping directed wave to a single recipient, defaulting to a
// single-bounce expectation.
func NewPing(from, to identity.Surface, core Core) Directed {
	return Directed{
		Id:          identity.NewWaveId(identity.KindPing),
		Kind:        Ping,
		From:        from,
		To:          []identity.Surface{to},
		Handling:    DefaultHandling,
		BounceBacks: SingleBounce,
		Core:        core,
	}
}

// NewRipple builds a Ripple directed wave addressed to every surface in to,
// expecting len(to) echoes by default.
func NewRipple(from identity.Surface, to []identity.Surface, core Core) Directed {
	return Directed{
		Id:          identity.NewWaveId(identity.KindRipple),
		Kind:        Ripple,
		From:        from,
		To:          append([]identity.Surface(nil), to...),
		Handling:    DefaultHandling,
		BounceBacks: CountBounce(len(to)),
		Core:        core,
	}
}

// NewSignal builds a one-way Signal directed wave expecting no reflection.
func NewSignal(from, to identity.Surface, core Core) Directed {
	return Directed{
		Id:          identity.NewWaveId(identity.KindSignal),
		Kind:        Signal,
		From:        from,
		To:          []identity.Surface{to},
		Handling:    DefaultHandling,
		BounceBacks: NoBounce,
		Core:        core,
	}
}

// Hops increments and returns this wave's own hop count. The traversal
// engine keeps a separate per-Traversal counter for its hop limit and does
// not call this.
func (d *Directed) Hops() int {
	d.hopCount++
	return d.hopCount
}

// HopCount returns the current hop count without incrementing it.
func (d *Directed) HopCount() int { return d.hopCount }

// Track marks this wave as tracked. It only sets the flag Tracked reports;
// routing and auditlog emission do not consult it.
func (d *Directed) Track() { d.tracked = true }

// Tracked reports whether Track has been called on this wave.
func (d Directed) Tracked() bool { return d.tracked }

// ReflectionTemplate is a partially-built Reflected wave: everything the
// original Directed wave determines (ids, addressing, kind) is fixed, and
// only the responder's Core remains to be supplied via Build.
type ReflectionTemplate struct {
	reflectOf identity.WaveId
	kind      ReflectedKind
	from      identity.Surface
	to        identity.Surface
}

// Build finalizes the reflection template into a Reflected wave carrying
// the given response Core.
func (t ReflectionTemplate) Build(core Core) Reflected {
	return Reflected{
		Id:        identity.NewWaveId(reflectedWaveKind(t.kind)),
		Kind:      t.kind,
		ReflectOf: t.reflectOf,
		From:      t.from,
		To:        t.to,
		Core:      core,
	}
}

// Reflection builds the ReflectionTemplate a recipient uses to answer this
// directed wave. Ping reflects a Pong; Ripple reflects an Echo (one member
// of the sender's EchoSet). Signal waves have no reflection and return
// ErrSignalNoReflection.
func (d Directed) Reflection() (ReflectionTemplate, error) {
	if d.Kind == Signal {
		return ReflectionTemplate{}, ErrSignalNoReflection
	}
	if len(d.To) == 0 {
		return ReflectionTemplate{}, errors.New("wave: directed wave has no recipient to reflect from")
	}
	kind := ReflectPong
	if d.Kind == Ripple {
		kind = ReflectEcho
	}
	return ReflectionTemplate{
		reflectOf: d.Id,
		kind:      kind,
		from:      d.To[0],
		to:        d.From,
	}, nil
}

func reflectedWaveKind(k ReflectedKind) identity.WaveKind {
	if k == ReflectEcho {
		return identity.KindEcho
	}
	return identity.KindPong
}
