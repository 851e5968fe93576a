// Package auditlog implements starlane's structured event emitter: one
// NDJSON object per significant occurrence in the messaging core (a wave
// sent, a traversal stepping a layer, a Field pipeline segment executed, an
// Exchanger registration/resolution/timeout).
//
// Grounded on the teacher's internal/event.NDJSONEmitter: a json.Encoder
// wrapped in a mutex, with an optional colorized human-readable renderer
// alongside the machine-readable stream.
package auditlog

import "time"

// EventKind discriminates the occurrences the core logs.
type EventKind string

const (
	KindWaveSent        EventKind = "wave_sent"
	KindLayerTraversed  EventKind = "layer_traversed"
	KindPipelineSegment EventKind = "pipeline_segment"
	KindExchangeOpened  EventKind = "exchange_opened"
	KindExchangeClosed  EventKind = "exchange_closed"
	KindExchangeTimeout EventKind = "exchange_timeout"
	KindFieldAdmitted   EventKind = "field_admitted"
	KindError           EventKind = "error"
)

// Event is one structured occurrence, scoped to the wave and particle it
// concerns (per spec.md §3's "every traversal carries a logger scoped with
// the wave id and particle point").
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	WaveId    string    `json:"wave_id,omitempty"`
	Point     string    `json:"point,omitempty"`
	Layer     string    `json:"layer,omitempty"`
	Message   string    `json:"message,omitempty"`
	Status    uint16    `json:"status,omitempty"`
	DurationMs int64    `json:"duration_ms,omitempty"`
}
