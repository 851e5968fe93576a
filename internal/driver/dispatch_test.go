package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/wave"
)

type stubHandler struct {
	accepts bool
	called  bool
}

func (h *stubHandler) Handle(_ context.Context, _ wave.HyperSubstance) (wave.Core, error) {
	h.called = true
	return wave.NewReflectedCore(200, wave.Empty()), nil
}

func (h *stubHandler) AcceptsEmptyHyper() bool { return h.accepts }

func TestDispatchHyper_RejectsEmptyByDefault(t *testing.T) {
	h := &stubHandler{accepts: false}
	_, err := DispatchHyper(context.Background(), h, wave.HyperSubstance{Kind: wave.HyperEmpty})
	require.ErrorIs(t, err, ErrEmptyHyperSubstance)
	assert.False(t, h.called)
}

func TestDispatchHyper_AllowsEmptyWhenHandlerOptsIn(t *testing.T) {
	h := &stubHandler{accepts: true}
	core, err := DispatchHyper(context.Background(), h, wave.HyperSubstance{Kind: wave.HyperEmpty})
	require.NoError(t, err)
	assert.True(t, h.called)
	assert.Equal(t, uint16(200), core.Status)
}

func TestDispatchHyper_PassesNonEmptyThrough(t *testing.T) {
	h := &stubHandler{accepts: false}
	_, err := DispatchHyper(context.Background(), h, wave.HyperSubstance{Kind: wave.HyperAssign})
	require.NoError(t, err)
	assert.True(t, h.called)
}
