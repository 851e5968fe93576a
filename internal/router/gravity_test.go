package router

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	sentTo []identity.StarKey
	err    error
}

func (t *fakeTransport) Send(ctx context.Context, star identity.StarKey, frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, frame)
	t.sentTo = append(t.sentTo, star)
	return t.err
}

func gravitySelf() identity.Surface {
	return identity.NewSurface(identity.MustParsePoint("space:star-a"), identity.Gravity)
}

func TestGravityRouter_RouteEnvelopesAndSends(t *testing.T) {
	tr := &fakeTransport{}
	g := NewGravityRouter(tr, gravitySelf(), 0)

	dest := identity.NewSurface(identity.MustParsePoint("space:remote-app"), identity.Core)
	d := wave.NewPing(gravitySelf(), dest, wave.NewDirectedCore(wave.Get, "/hello", wave.TextOf("hi")))

	err := g.Route(context.Background(), identity.StarKey("star-b"), d)
	require.NoError(t, err)

	require.Len(t, tr.sent, 1)
	assert.Equal(t, identity.StarKey("star-b"), tr.sentTo[0])

	envelope, err := DecodeDirected(tr.sent[0])
	require.NoError(t, err)
	assert.Equal(t, wave.Hyp("Transport"), envelope.Core.Method)

	inner, err := UnwrapTransport(envelope)
	require.NoError(t, err)
	assert.Equal(t, "/hello", inner.Core.Uri)
	assert.Equal(t, "hi", inner.Core.Body.Text)
}

func TestGravityRouter_RouteRejectsMultiRecipientWave(t *testing.T) {
	tr := &fakeTransport{}
	g := NewGravityRouter(tr, gravitySelf(), 0)

	a := identity.NewSurface(identity.MustParsePoint("space:a"), identity.Core)
	b := identity.NewSurface(identity.MustParsePoint("space:b"), identity.Core)
	d := wave.NewRipple(gravitySelf(), []identity.Surface{a, b}, wave.NewDirectedCore(wave.Get, "/x", wave.Empty()))

	err := g.Route(context.Background(), identity.StarKey("star-b"), d)
	require.Error(t, err)
	assert.Empty(t, tr.sent)
}

func TestGravityRouter_RouteBatchSendsAllJobs(t *testing.T) {
	tr := &fakeTransport{}
	g := NewGravityRouter(tr, gravitySelf(), 2)

	jobs := make([]RouteJob, 0, 5)
	for i := 0; i < 5; i++ {
		dest := identity.NewSurface(identity.MustParsePoint("space:remote-app"), identity.Core)
		d := wave.NewPing(gravitySelf(), dest, wave.NewDirectedCore(wave.Get, "/x", wave.Empty()))
		jobs = append(jobs, RouteJob{Star: identity.StarKey("star-b"), Wave: d})
	}

	err := g.RouteBatch(context.Background(), jobs)
	require.NoError(t, err)
	assert.Len(t, tr.sent, 5)
}
