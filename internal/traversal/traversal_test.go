package traversal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/identity"
)

type recordingHooks struct {
	NoopHooks[string]
	entered bool
	steps   []string
	arrived bool
	exited  bool
	failOn  identity.Layer
}

func (h *recordingHooks) OnEnter(ctx context.Context, t *Traversal[string]) error {
	h.entered = true
	return nil
}

func (h *recordingHooks) OnStep(ctx context.Context, t *Traversal[string], from, to identity.Layer) error {
	if to == h.failOn {
		return assert.AnError
	}
	h.steps = append(h.steps, from.String()+"->"+to.String())
	return nil
}

func (h *recordingHooks) OnArrive(ctx context.Context, t *Traversal[string]) error {
	h.arrived = true
	return nil
}

func (h *recordingHooks) OnExit(ctx context.Context, t *Traversal[string]) error {
	h.exited = true
	return nil
}

func TestEngine_Run_CoreDirection(t *testing.T) {
	plan, err := identity.NewTraversalPlan(identity.Field, identity.Shell, identity.Core)
	require.NoError(t, err)
	dest := identity.MustParsePoint("space:app")

	trav := New("wave-payload", dest, plan, identity.DirCore, 0)
	hooks := &recordingHooks{}
	eng := NewEngine[string](hooks)

	err = eng.Run(context.Background(), trav)
	require.NoError(t, err)

	assert.True(t, hooks.entered)
	assert.True(t, hooks.arrived)
	assert.True(t, hooks.exited)
	assert.Equal(t, []string{"Field->Shell", "Shell->Core"}, hooks.steps)
	assert.Equal(t, identity.Core, trav.Layer)
	assert.Equal(t, PhaseDone, trav.Phase)
	assert.Equal(t, 2, trav.Hops())
}

func TestEngine_Run_FabricDirection(t *testing.T) {
	plan, err := identity.NewTraversalPlan(identity.Field, identity.Shell, identity.Core)
	require.NoError(t, err)
	dest := identity.MustParsePoint("space:app")

	trav := New("wave-payload", dest, plan, identity.DirFabric, 0)
	hooks := &recordingHooks{}
	eng := NewEngine[string](hooks)

	err = eng.Run(context.Background(), trav)
	require.NoError(t, err)
	assert.Equal(t, []string{"Core->Shell", "Shell->Field"}, hooks.steps)
	assert.Equal(t, identity.Field, trav.Layer)
}

func TestEngine_Run_SingleLayerPlanArrivesImmediately(t *testing.T) {
	plan, err := identity.NewTraversalPlan(identity.Core)
	require.NoError(t, err)
	dest := identity.MustParsePoint("space:app")

	trav := New("p", dest, plan, identity.DirCore, 0)
	hooks := &recordingHooks{}
	eng := NewEngine[string](hooks)

	require.NoError(t, eng.Run(context.Background(), trav))
	assert.Empty(t, hooks.steps)
	assert.True(t, hooks.arrived)
}

func TestEngine_Run_HookErrorStopsAndExits(t *testing.T) {
	plan, err := identity.NewTraversalPlan(identity.Field, identity.Shell, identity.Core)
	require.NoError(t, err)
	dest := identity.MustParsePoint("space:app")

	trav := New("p", dest, plan, identity.DirCore, 0)
	hooks := &recordingHooks{failOn: identity.Core}
	eng := NewEngine[string](hooks)

	err = eng.Run(context.Background(), trav)
	assert.Error(t, err)
	assert.False(t, hooks.arrived)
	assert.True(t, hooks.exited, "OnExit must run even when a hook fails")
	assert.Equal(t, PhaseDone, trav.Phase)
}

func TestEngine_Run_HopLimitExceeded(t *testing.T) {
	plan, err := identity.NewTraversalPlan(identity.Gravity, identity.Field, identity.Shell, identity.Core)
	require.NoError(t, err)
	dest := identity.MustParsePoint("space:app")

	trav := New("p", dest, plan, identity.DirCore, 1)
	hooks := &recordingHooks{}
	eng := NewEngine[string](hooks)

	err = eng.Run(context.Background(), trav)
	assert.ErrorIs(t, err, ErrHopLimitExceeded)
}

func TestEngine_Inject_SkipsOnEnter(t *testing.T) {
	plan, err := identity.NewTraversalPlan(identity.Field, identity.Shell, identity.Core)
	require.NoError(t, err)
	dest := identity.MustParsePoint("space:app")

	trav := New("p", dest, plan, identity.DirCore, 0)
	trav.Layer = identity.Shell // simulate mid-stack injection
	hooks := &recordingHooks{}
	eng := NewEngine[string](hooks)

	require.NoError(t, eng.Inject(context.Background(), trav))
	assert.False(t, hooks.entered)
	assert.Equal(t, []string{"Shell->Core"}, hooks.steps)
}
