package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/auditlog"
	"github.com/starlane-io/starlane/internal/exchanger"
	"github.com/starlane-io/starlane/internal/field"
	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/transmitter"
	"github.com/starlane-io/starlane/internal/wave"
)

func TestLateTransmitter_DelegatesOnceBackfilled(t *testing.T) {
	exch := exchanger.New()
	tx := transmitter.New(noopRouter{}, exch)
	lt := &lateTransmitter{tx: tx}

	to := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Core)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Core)
	d := wave.NewSignal(from, to, wave.NewDirectedCore(wave.Cmd("Test"), "/x", wave.Empty()))

	_, err := lt.Direct(context.Background(), d)
	assert.NoError(t, err)
}

func TestLateField_DelegatesOnceBackfilled(t *testing.T) {
	exch := exchanger.New()
	tx := transmitter.New(noopRouter{}, exch)
	bindLoader := func(context.Context, identity.Point) (*field.BindConfig, error) {
		bind := field.BindConfig{Routes: []field.RouteScope{{Method: "*", Path: "*", Pipeline: field.PassthroughPipeline}}}
		return &bind, nil
	}
	fld := field.NewField(bindLoader, tx)
	lf := &lateField{f: fld}

	dest := identity.NewSurface(identity.MustParsePoint("space:app"), identity.Field)
	from := identity.NewSurface(identity.MustParsePoint("space:caller"), identity.Core)
	d := wave.NewSignal(from, dest, wave.NewDirectedCore(wave.Cmd("Test"), "/x", wave.Empty()))

	_, err := lf.Admit(context.Background(), dest, d, "")
	require.NoError(t, err)
}

func TestExchangerLog_EmitsAuditEvent(t *testing.T) {
	emit := &recordingEmitter{}
	log := exchangerLog{emit: emit}

	log.Event("exchange.wait", map[string]any{"wave_id": "Ping:abc"})

	require.Len(t, emit.events, 1)
	assert.Equal(t, "Ping:abc", emit.events[0].WaveId)
	assert.Equal(t, "exchange.wait", emit.events[0].Message)
}

type recordingEmitter struct {
	events []auditlog.Event
}

func (r *recordingEmitter) Emit(e auditlog.Event) {
	r.events = append(r.events, e)
}

type noopRouter struct{}

func (noopRouter) Route(ctx context.Context, d wave.Directed) error { return nil }
