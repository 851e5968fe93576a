package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

func TestEncodeDecodeDirected_RoundTrips(t *testing.T) {
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Core)
	to := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Core)
	d := wave.NewPing(from, to, wave.NewDirectedCore(wave.Get, "/hello", wave.TextOf("hi")))

	frame, err := EncodeDirected(d)
	require.NoError(t, err)

	got, err := DecodeDirected(frame)
	require.NoError(t, err)

	assert.True(t, got.Id.Equal(d.Id))
	assert.Equal(t, d.From.String(), got.From.String())
	require.Len(t, got.To, 1)
	assert.Equal(t, d.To[0].String(), got.To[0].String())
	assert.Equal(t, "/hello", got.Core.Uri)
	assert.Equal(t, "hi", got.Core.Body.Text)
}

func TestUnwrapTransport_RecoversInnerWave(t *testing.T) {
	inner := wave.NewPing(
		identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Core),
		identity.NewSurface(identity.MustParsePoint("space:app"), identity.Core),
		wave.NewDirectedCore(wave.Get, "/inner", wave.TextOf("payload")),
	)
	innerBytes, err := EncodeDirected(inner)
	require.NoError(t, err)

	envelope := wave.NewSignal(
		identity.NewSurface(identity.MustParsePoint("space:star-a"), identity.Gravity),
		identity.NewSurface(identity.MustParsePoint("space:app"), identity.Gravity),
		wave.NewDirectedCore(wave.Hyp("Transport"), "space:app", wave.HyperOf(wave.HyperSubstance{
			Kind:      wave.HyperTransport,
			Transport: innerBytes,
		})),
	)

	got, err := UnwrapTransport(envelope)
	require.NoError(t, err)
	assert.Equal(t, "/inner", got.Core.Uri)
	assert.Equal(t, "payload", got.Core.Body.Text)
}

func TestUnwrapTransport_RejectsNonHyperBody(t *testing.T) {
	envelope := wave.NewSignal(
		identity.NewSurface(identity.MustParsePoint("space:star-a"), identity.Gravity),
		identity.NewSurface(identity.MustParsePoint("space:app"), identity.Gravity),
		wave.NewDirectedCore(wave.Get, "/x", wave.TextOf("not an envelope")),
	)

	_, err := UnwrapTransport(envelope)
	assert.Error(t, err)
}
