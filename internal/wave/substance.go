// Package wave implements the Starlane wave model: directed and reflected
// message shapes, their typed substance payloads, and the handling hints
// that travel with them. Grounded on the teacher's (re-cinq-wave)
// internal/pipeline.Step/Pipeline value types: plain structs with a
// discriminating Kind field rather than deep interface hierarchies, per
// the "tagged unions at the boundary" design note.
package wave

import "fmt"

// SubstanceKind discriminates the Substance tagged union.
type SubstanceKind int

const (
	SubstanceEmpty SubstanceKind = iota
	SubstanceBin
	SubstanceText
	SubstanceMap
	SubstanceList
	SubstanceStub
	SubstanceHyper
	SubstanceLocation
	SubstanceKnock
)

func (k SubstanceKind) String() string {
	switch k {
	case SubstanceEmpty:
		return "Empty"
	case SubstanceBin:
		return "Bin"
	case SubstanceText:
		return "Text"
	case SubstanceMap:
		return "Map"
	case SubstanceList:
		return "List"
	case SubstanceStub:
		return "Stub"
	case SubstanceHyper:
		return "Hyper"
	case SubstanceLocation:
		return "Location"
	case SubstanceKnock:
		return "Knock"
	default:
		return "Unknown"
	}
}

// Stub is a minimal particle reference: point, kind, status.
type Stub struct {
	Point  string
	Kind   string
	Status string
}

// Location carries a resolved star/host pair for a particle.
type Location struct {
	Star string
	Host string
}

// Knock is a connection-establishment payload (used by the Hyp<Knock> hyper
// message to request a portal/session be opened for a particle).
type Knock struct {
	Point   string
	Auth    string
	Payload []byte
}

// Substance is the Wave body: a tagged union of the payload shapes the
// core understands. The zero value is SubstanceEmpty.
type Substance struct {
	Kind     SubstanceKind
	Bin      []byte
	Text     string
	Map      map[string]Substance
	List     []Substance
	Stub     *Stub
	Hyper    *HyperSubstance
	Location *Location
	Knock    *Knock
}

// Empty returns the Empty substance.
func Empty() Substance { return Substance{Kind: SubstanceEmpty} }

// BinOf wraps a byte slice.
func BinOf(b []byte) Substance { return Substance{Kind: SubstanceBin, Bin: b} }

// TextOf wraps a string.
func TextOf(s string) Substance { return Substance{Kind: SubstanceText, Text: s} }

// MapOf wraps a substance map.
func MapOf(m map[string]Substance) Substance { return Substance{Kind: SubstanceMap, Map: m} }

// ListOf wraps a substance list.
func ListOf(l []Substance) Substance { return Substance{Kind: SubstanceList, List: l} }

// StubOf wraps a particle stub reference.
func StubOf(s Stub) Substance { return Substance{Kind: SubstanceStub, Stub: &s} }

// HyperOf wraps a HyperSubstance control-plane payload.
func HyperOf(h HyperSubstance) Substance { return Substance{Kind: SubstanceHyper, Hyper: &h} }

// LocationOf wraps a resolved star/host location.
func LocationOf(l Location) Substance { return Substance{Kind: SubstanceLocation, Location: &l} }

// KnockOf wraps a connection-establishment payload.
func KnockOf(k Knock) Substance { return Substance{Kind: SubstanceKnock, Knock: &k} }

// IsEmpty reports whether the substance carries no payload.
func (s Substance) IsEmpty() bool { return s.Kind == SubstanceEmpty }

func (s Substance) String() string {
	switch s.Kind {
	case SubstanceEmpty:
		return "<empty>"
	case SubstanceText:
		return s.Text
	case SubstanceBin:
		return fmt.Sprintf("<bin:%d bytes>", len(s.Bin))
	default:
		return fmt.Sprintf("<%s>", s.Kind)
	}
}

// HyperSubstanceKind enumerates the control-plane message bodies the core
// forwards to drivers without interpreting (spec.md §6).
type HyperSubstanceKind int

const (
	HyperEmpty HyperSubstanceKind = iota
	HyperAssign
	HyperProvision
	HyperHost
	HyperTransport
	HyperKnock
	HyperSearch
)

func (k HyperSubstanceKind) String() string {
	switch k {
	case HyperEmpty:
		return "Empty"
	case HyperAssign:
		return "Assign"
	case HyperProvision:
		return "Provision"
	case HyperHost:
		return "Host"
	case HyperTransport:
		return "Transport"
	case HyperKnock:
		return "Knock"
	case HyperSearch:
		return "Search"
	default:
		return "Unknown"
	}
}

// HyperSubstance is the control-plane payload carried by Hyp<...> methods.
// Transport wraps an inner framed wave's raw bytes; the other variants
// carry opaque, driver-interpreted byte payloads.
type HyperSubstance struct {
	Kind      HyperSubstanceKind
	Transport []byte // set only when Kind == HyperTransport: the inner wave's wire bytes
	Payload   []byte // opaque for Assign/Provision/Host/Knock/Search
}
