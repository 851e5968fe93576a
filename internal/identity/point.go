package identity

import (
	"strings"
)

// Route describes where a Point's particle lives: in-process (Local) or
// on a specific named star (Remote). Route is resolved lazily via the
// Registry and is never stored on the Point itself — Points stay
// immutable once constructed.
type Route struct {
	Remote bool
	Star   StarKey
}

// LocalRoute is the zero-value Route, meaning "resolve within this star".
var LocalRoute = Route{}

// RemoteRoute addresses a specific star.
func RemoteRoute(star StarKey) Route {
	return Route{Remote: true, Star: star}
}

// Point is an immutable hierarchical particle address, e.g.
// "space:sub:app:foo". Points compare and hash by their full segment
// list and have a total lexical order.
type Point struct {
	base string
	subs []string
}

// ParsePoint parses a colon-delimited hierarchical address into a Point.
// The base segment and every sub-segment must be non-empty and must not
// contain ':' (already excluded by the split) or whitespace.
func ParsePoint(s string) (Point, error) {
	if strings.TrimSpace(s) == "" {
		return Point{}, &ParseError{Input: s, Msg: "empty point"}
	}
	parts := strings.Split(s, ":")
	for _, p := range parts {
		if p == "" {
			return Point{}, &ParseError{Input: s, Msg: "empty segment"}
		}
		if strings.ContainsAny(p, " \t\n\r") {
			return Point{}, &ParseError{Input: s, Msg: "segment contains whitespace"}
		}
	}
	base := parts[0]
	subs := append([]string(nil), parts[1:]...)
	return Point{base: base, subs: subs}, nil
}

// MustParsePoint parses s and panics on error. Reserved for constants and
// test fixtures where the input is known good.
func MustParsePoint(s string) Point {
	p, err := ParsePoint(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the Point back to its colon-delimited form.
func (p Point) String() string {
	segs := append([]string{p.base}, p.subs...)
	return strings.Join(segs, ":")
}

// Base returns the point's root segment.
func (p Point) Base() string {
	return p.base
}

// Segments returns the full ordered segment list (base first).
func (p Point) Segments() []string {
	out := make([]string, 0, len(p.subs)+1)
	out = append(out, p.base)
	out = append(out, p.subs...)
	return out
}

// Push appends a sub-segment, returning a new child Point. The receiver is
// left unmodified.
func (p Point) Push(segment string) (Point, error) {
	if segment == "" || strings.ContainsAny(segment, " \t\n\r:") {
		return Point{}, &ParseError{Input: segment, Msg: "invalid child segment"}
	}
	child := Point{base: p.base, subs: append(append([]string(nil), p.subs...), segment)}
	return child, nil
}

// Parent returns the point one level up and true, or the zero Point and
// false if p is already a root (no sub-segments).
func (p Point) Parent() (Point, bool) {
	if len(p.subs) == 0 {
		return Point{}, false
	}
	return Point{base: p.base, subs: p.subs[:len(p.subs)-1]}, true
}

// IsRoot reports whether p has no sub-segments.
func (p Point) IsRoot() bool {
	return len(p.subs) == 0
}

// Zero reports whether p is the unset Point. ParsePoint never produces an
// empty base segment, so this is distinguishable from any parsed point.
func (p Point) Zero() bool {
	return p.base == "" && len(p.subs) == 0
}

// Compare implements the point total order: lexical comparison of
// segments, shorter-prefix sorts first.
func (p Point) Compare(o Point) int {
	a, b := p.Segments(), o.Segments()
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Equal reports exact segment-list equality.
func (p Point) Equal(o Point) bool {
	return p.Compare(o) == 0
}

// Topic identifies a named sub-channel within a Surface, e.g. for pub/sub
// style ripple fan-out. The empty Topic means "no topic".
type Topic string

// HasTopic reports whether t is a non-empty topic.
func (t Topic) HasTopic() bool {
	return t != ""
}

// Surface is the triple (point, layer, topic?) identifying an addressable
// endpoint within a particle at a specific layer.
type Surface struct {
	Point Point
	Layer Layer
	Topic Topic
}

// NewSurface builds a Surface with no topic.
func NewSurface(p Point, l Layer) Surface {
	return Surface{Point: p, Layer: l}
}

// NewSurfaceWithTopic builds a Surface scoped to a topic.
func NewSurfaceWithTopic(p Point, l Layer, topic Topic) Surface {
	return Surface{Point: p, Layer: l, Topic: topic}
}

// String renders "point@layer" or "point@layer#topic".
func (s Surface) String() string {
	out := s.Point.String() + "@" + s.Layer.String()
	if s.Topic.HasTopic() {
		out += "#" + string(s.Topic)
	}
	return out
}

// Equal reports whether two surfaces address the same point, layer and topic.
func (s Surface) Equal(o Surface) bool {
	return s.Point.Equal(o.Point) && s.Layer == o.Layer && s.Topic == o.Topic
}

// WithLayer returns a copy of the surface at a different layer of the same point.
func (s Surface) WithLayer(l Layer) Surface {
	return Surface{Point: s.Point, Layer: l, Topic: s.Topic}
}

// Zero reports whether s is the unset Surface.
func (s Surface) Zero() bool {
	return s.Point.Zero() && s.Layer == Gravity && s.Topic == ""
}
