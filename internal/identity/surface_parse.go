package identity

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseSurface parses "point@layer" or "point@layer#topic" into a Surface.
func ParseSurface(s string) (Surface, error) {
	pointPart, rest, found := strings.Cut(s, "@")
	if !found {
		return Surface{}, &ParseError{Input: s, Msg: "surface missing '@layer'"}
	}
	p, err := ParsePoint(pointPart)
	if err != nil {
		return Surface{}, err
	}

	layerPart, topicPart, hasTopic := strings.Cut(rest, "#")
	layer, err := parseLayerName(layerPart)
	if err != nil {
		return Surface{}, &ParseError{Input: s, Msg: err.Error()}
	}
	if hasTopic {
		return NewSurfaceWithTopic(p, layer, Topic(topicPart)), nil
	}
	return NewSurface(p, layer), nil
}

// MustParseSurface parses s and panics on error. Reserved for constants and
// test fixtures where the input is known good.
func MustParseSurface(s string) Surface {
	sf, err := ParseSurface(s)
	if err != nil {
		panic(err)
	}
	return sf
}

func parseLayerName(name string) (Layer, error) {
	for l := Gravity; l <= Core; l++ {
		if l.String() == name {
			return l, nil
		}
	}
	return 0, &ParseError{Input: name, Msg: "unknown layer name"}
}

// UnmarshalYAML lets a Point appear as a plain colon-delimited string in
// YAML bind-config documents.
func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePoint(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML renders a Point back to its colon-delimited string form.
func (p Point) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML lets a Surface appear as a plain "point@layer[#topic]"
// string in YAML bind-config documents.
func (s *Surface) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	parsed, err := ParseSurface(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML renders a Surface back to its string form.
func (s Surface) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// GobEncode lets a Point cross the wire as its colon-delimited string form
// rather than gob silently dropping its unexported base/subs fields.
func (p Point) GobEncode() ([]byte, error) {
	return []byte(p.String()), nil
}

// GobDecode is GobEncode's inverse.
func (p *Point) GobDecode(data []byte) error {
	parsed, err := ParsePoint(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// GobEncode lets a Surface cross the wire as its string form.
func (s Surface) GobEncode() ([]byte, error) {
	return []byte(s.String()), nil
}

// GobDecode is GobEncode's inverse.
func (s *Surface) GobDecode(data []byte) error {
	parsed, err := ParseSurface(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
