package field

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

type fakeTransmitter struct {
	reply func(d wave.Directed) (wave.Reflected, error)
	calls []wave.Directed
}

func (f *fakeTransmitter) Direct(ctx context.Context, d wave.Directed) (wave.Reflected, error) {
	f.calls = append(f.calls, d)
	return f.reply(d)
}

func staticLoader(bind *BindConfig) BindConfigLoader {
	return func(ctx context.Context, point identity.Point) (*BindConfig, error) {
		return bind, nil
	}
}

func TestField_AdmitDeliversThroughMatchedRoute(t *testing.T) {
	bind := &BindConfig{Routes: []RouteScope{
		{Method: "*", Path: "/hello", Pipeline: Pipeline{Segments: []PipelineSegment{
			{Stop: Stop{Kind: StopCore}},
			{Stop: Stop{Kind: StopReflect}},
		}}},
	}}

	tx := &fakeTransmitter{reply: func(d wave.Directed) (wave.Reflected, error) {
		return wave.Reflected{Core: wave.NewReflectedCore(200, wave.TextOf("hi"))}, nil
	}}

	f := NewField(staticLoader(bind), tx)
	dest := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Field)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Field)
	d := wave.NewPing(from, dest, wave.NewDirectedCore(wave.Get, "/hello", wave.Empty()))

	refl, err := f.Admit(context.Background(), dest, d, "")
	require.NoError(t, err)
	assert.Equal(t, uint16(200), refl.Core.Status)
	assert.Equal(t, "hi", refl.Core.Body.Text)
	assert.Equal(t, d.Id, refl.ReflectOf)
	require.Len(t, tx.calls, 1)
}

func TestField_AdmitNoRouteYields404(t *testing.T) {
	bind := &BindConfig{}
	tx := &fakeTransmitter{reply: func(d wave.Directed) (wave.Reflected, error) {
		t.Fatal("should not dispatch")
		return wave.Reflected{}, nil
	}}

	f := NewField(staticLoader(bind), tx)
	dest := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Field)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Field)
	d := wave.NewPing(from, dest, wave.NewDirectedCore(wave.Get, "/missing", wave.Empty()))

	refl, err := f.Admit(context.Background(), dest, d, "")
	require.NoError(t, err)
	assert.Equal(t, uint16(404), refl.Core.Status)
	assert.Contains(t, refl.Core.Body.Text, "no route matches")
	assert.Contains(t, refl.Core.Body.Text, "/missing")
	assert.Contains(t, refl.Core.Body.Text, dest.Point.String())
	assert.Contains(t, refl.Core.Body.Text, "from="+from.String())
}

func TestField_AdmitCmdFallsBackToPassthrough(t *testing.T) {
	bind := &BindConfig{}
	tx := &fakeTransmitter{reply: func(d wave.Directed) (wave.Reflected, error) {
		return wave.Reflected{Core: wave.NewReflectedCore(200, wave.TextOf("done"))}, nil
	}}

	f := NewField(staticLoader(bind), tx)
	dest := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Field)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Field)
	d := wave.NewPing(from, dest, wave.NewDirectedCore(wave.Cmd("Refresh"), "/x", wave.Empty()))

	refl, err := f.Admit(context.Background(), dest, d, "")
	require.NoError(t, err)
	assert.Equal(t, "done", refl.Core.Body.Text)
}

func TestField_AdmitSignalNeverReflects(t *testing.T) {
	bind := &BindConfig{Routes: []RouteScope{
		{Method: "*", Path: "*", Pipeline: Pipeline{Segments: []PipelineSegment{{Stop: Stop{Kind: StopReflect}}}}},
	}}
	tx := &fakeTransmitter{reply: func(d wave.Directed) (wave.Reflected, error) {
		t.Fatal("should not dispatch")
		return wave.Reflected{}, nil
	}}

	f := NewField(staticLoader(bind), tx)
	dest := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Field)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Field)
	d := wave.NewSignal(from, dest, wave.NewDirectedCore(wave.Post, "/fire", wave.Empty()))

	refl, err := f.Admit(context.Background(), dest, d, "")
	require.NoError(t, err)
	assert.Equal(t, wave.Reflected{}, refl)
}

func TestField_AdmitBindLoaderErrorYieldsBadGateway(t *testing.T) {
	tx := &fakeTransmitter{reply: func(d wave.Directed) (wave.Reflected, error) {
		t.Fatal("should not dispatch")
		return wave.Reflected{}, nil
	}}
	loader := func(ctx context.Context, point identity.Point) (*BindConfig, error) {
		return nil, errors.New("registry unavailable")
	}

	f := NewField(loader, tx)
	dest := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Field)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Field)
	d := wave.NewPing(from, dest, wave.NewDirectedCore(wave.Get, "/x", wave.Empty()))

	refl, err := f.Admit(context.Background(), dest, d, "")
	require.NoError(t, err)
	assert.Equal(t, uint16(502), refl.Core.Status)
}

func TestField_BindConfigIsCachedAcrossAdmits(t *testing.T) {
	loadCount := 0
	bind := &BindConfig{Routes: []RouteScope{
		{Method: "*", Path: "*", Pipeline: Pipeline{Segments: []PipelineSegment{{Stop: Stop{Kind: StopReflect}}}}},
	}}
	loader := func(ctx context.Context, point identity.Point) (*BindConfig, error) {
		loadCount++
		return bind, nil
	}
	tx := &fakeTransmitter{reply: func(d wave.Directed) (wave.Reflected, error) {
		return wave.Reflected{}, nil
	}}

	f := NewField(loader, tx)
	dest := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Field)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Field)

	for i := 0; i < 3; i++ {
		d := wave.NewPing(from, dest, wave.NewDirectedCore(wave.Get, "/x", wave.Empty()))
		_, err := f.Admit(context.Background(), dest, d, "")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, loadCount)

	f.InvalidateBind(dest.Point)
	d := wave.NewPing(from, dest, wave.NewDirectedCore(wave.Get, "/x", wave.Empty()))
	_, err := f.Admit(context.Background(), dest, d, "")
	require.NoError(t, err)
	assert.Equal(t, 2, loadCount)
}
