package wave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstance_Constructors(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
	assert.False(t, TextOf("hi").IsEmpty())
	assert.Equal(t, SubstanceText, TextOf("hi").Kind)
	assert.Equal(t, SubstanceBin, BinOf([]byte("x")).Kind)
	assert.Equal(t, SubstanceMap, MapOf(map[string]Substance{"a": TextOf("b")}).Kind)
	assert.Equal(t, SubstanceList, ListOf([]Substance{TextOf("a")}).Kind)
}

func TestSubstance_StubAndHyper(t *testing.T) {
	s := StubOf(Stub{Point: "space:foo", Kind: "particle", Status: "Ready"})
	assert.Equal(t, SubstanceStub, s.Kind)
	assert.Equal(t, "space:foo", s.Stub.Point)

	h := HyperOf(HyperSubstance{Kind: HyperAssign, Payload: []byte("p")})
	assert.Equal(t, SubstanceHyper, h.Kind)
	assert.Equal(t, HyperAssign, h.Hyper.Kind)
}

func TestSubstance_String(t *testing.T) {
	assert.Equal(t, "<empty>", Empty().String())
	assert.Equal(t, "hello", TextOf("hello").String())
	assert.Contains(t, BinOf([]byte("abc")).String(), "3 bytes")
}
