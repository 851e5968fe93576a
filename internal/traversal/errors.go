package traversal

import "errors"

// ErrHopLimitExceeded is returned by Step once a traversal has taken its
// configured maximum number of layer-to-layer steps — a guard against a
// misbehaving layer hook bouncing a wave back and forth forever
// (spec.md §5 resource bound).
var ErrHopLimitExceeded = errors.New("traversal: hop limit exceeded")

// ErrAtBoundary is returned by Step when the traversal is already at the
// terminal layer for its direction of travel.
var ErrAtBoundary = errors.New("traversal: already at direction boundary")
