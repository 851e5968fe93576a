package echo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

func TestDriver_ItemReturnsHandlerSphere(t *testing.T) {
	d := New()
	sphere, err := d.Item(context.Background(), identity.MustParsePoint("space:app"))
	require.NoError(t, err)
	assert.NotNil(t, sphere.Handler)
	assert.Nil(t, sphere.Router)
}

func TestHandler_EchoesBodyWithStatus200(t *testing.T) {
	d := New()
	sphere, err := d.Item(context.Background(), identity.MustParsePoint("space:app"))
	require.NoError(t, err)

	in := wave.NewDirectedCore(wave.Get, "/hello", wave.TextOf("hi"))
	out, err := sphere.Handler.Handle(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, uint16(200), out.Status)
	assert.Equal(t, "hi", out.Body.String())
}

func TestDriver_BindSuppliesWildcardPassthroughRoute(t *testing.T) {
	d := New()
	bind := d.Bind()
	bind.Compile()

	pipeline, ok := bind.Select(wave.NewDirectedCore(wave.Post, "/anything", wave.Empty()), "")
	require.True(t, ok)
	assert.NotEmpty(t, pipeline.Segments)
}

func TestHyperHandler_RejectsEmptyByDefault(t *testing.T) {
	d := New()
	h := d.Handler()
	assert.False(t, h.AcceptsEmptyHyper())

	core, err := h.Handle(context.Background(), wave.HyperSubstance{Kind: wave.HyperAssign})
	require.NoError(t, err)
	assert.Equal(t, uint16(200), core.Status)
}
