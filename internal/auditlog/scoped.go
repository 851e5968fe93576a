package auditlog

import "time"

// Logger is an Emitter pre-scoped to one wave and particle point — the
// logger every Traversal carries per spec.md §3 ("Traversal<W> ... a
// mutable state enriched with ... logger").
type Logger struct {
	emitter Emitter
	waveId  string
	point   string
}

// Scope builds a Logger bound to waveId and point, emitting through e.
func Scope(e Emitter, waveId, point string) Logger {
	if e == nil {
		e = Noop{}
	}
	return Logger{emitter: e, waveId: waveId, point: point}
}

// Layer records a layer-traversal event.
func (l Logger) Layer(layer, message string) {
	l.emitter.Emit(Event{Timestamp: now(), Kind: KindLayerTraversed, WaveId: l.waveId, Point: l.point, Layer: layer, Message: message})
}

// Segment records a Field pipeline segment execution.
func (l Logger) Segment(message string, status uint16) {
	l.emitter.Emit(Event{Timestamp: now(), Kind: KindPipelineSegment, WaveId: l.waveId, Point: l.point, Status: status, Message: message})
}

// Admitted records a Field.Admit outcome.
func (l Logger) Admitted(status uint16) {
	l.emitter.Emit(Event{Timestamp: now(), Kind: KindFieldAdmitted, WaveId: l.waveId, Point: l.point, Status: status})
}

// Error records a failure scoped to this wave/point.
func (l Logger) Error(message string) {
	l.emitter.Emit(Event{Timestamp: now(), Kind: KindError, WaveId: l.waveId, Point: l.point, Message: message})
}

var now = time.Now
