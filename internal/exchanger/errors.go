package exchanger

import (
	"errors"
	"fmt"

	"github.com/starlane-io/starlane/internal/wave"
)

// ErrNoReflection is returned by Exchange when called with a directed wave
// whose BounceBacks policy is None — there is nothing to wait for.
var ErrNoReflection = errors.New("exchanger: wave expects no reflection")

// ErrClosed is returned by any call made after the Exchanger has been
// closed; in-flight waiters are released with this error too.
var ErrClosed = errors.New("exchanger: closed")

// ProtocolError reports a reflection that arrived with a kind that does not
// match the waiter it correlates to — e.g. an Echo landing on a Pong
// waiter. This always indicates a misbehaving sender, never a timing
// race, so it is never retried.
type ProtocolError struct {
	WaveId string
	Msg    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("exchanger: protocol error for %s: %s", e.WaveId, e.Msg)
}

// TimeoutError is returned by Exchange when a waiter's wait-tier timer
// elapses before a Pong arrives (spec.md §4.3). It carries the tier that
// expired so callers can distinguish a timeout from any other failure and
// map it to its own status (spec.md §7/P4: a Ping timeout surfaces as 504,
// never the 502 a transport-level failure maps to).
type TimeoutError struct {
	WaveId   string
	WaitTier wave.WaitTier
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("exchanger: wait tier %s expired for %s", e.WaitTier, e.WaveId)
}
