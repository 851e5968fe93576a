package wave

import "github.com/starlane-io/starlane/internal/identity"

// ReflectedKind discriminates the two reflected wave shapes.
type ReflectedKind int

const (
	// ReflectPong answers a Ping: exactly one, correlated by ReflectOf.
	ReflectPong ReflectedKind = iota
	// ReflectEcho answers one member of a Ripple: the Exchanger accumulates
	// these into an EchoSet keyed by the Ripple's WaveId.
	ReflectEcho
)

func (k ReflectedKind) String() string {
	switch k {
	case ReflectPong:
		return "Pong"
	case ReflectEcho:
		return "Echo"
	default:
		return "Unknown"
	}
}

// Reflected is a wave travelling back towards the sender of some earlier
// Directed wave, correlated to it by ReflectOf.
type Reflected struct {
	Id        identity.WaveId
	Kind      ReflectedKind
	ReflectOf identity.WaveId
	From      identity.Surface
	To        identity.Surface
	Core      Core

	hopCount int
}

// Hops increments and returns this wave's traversal hop count.
func (r *Reflected) Hops() int {
	r.hopCount++
	return r.hopCount
}

// HopCount returns the current hop count without incrementing it.
func (r Reflected) HopCount() int { return r.hopCount }

// Ok reports whether this reflection carries a success Core.
func (r Reflected) Ok() bool { return r.Core.IsSuccess() }
