// Package commands holds the starlane CLI's subcommands.
package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/internal/auditlog"
	"github.com/starlane-io/starlane/internal/config"
	"github.com/starlane-io/starlane/internal/driver"
	"github.com/starlane-io/starlane/internal/driver/echo"
	"github.com/starlane-io/starlane/internal/exchanger"
	"github.com/starlane-io/starlane/internal/field"
	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/observe"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/router"
	"github.com/starlane-io/starlane/internal/transmitter"
	"github.com/starlane-io/starlane/internal/wave"
)

// lateTransmitter satisfies field.Transmitter over a *transmitter.Transmitter
// that doesn't exist yet at construction time — field.Field, the
// transmitter and the router close a three-way cycle (Field needs a
// Transmitter, Transmitter needs a Router, Router needs a FieldAdmitter),
// so all three are built against indirection structs first and backfilled
// once every concrete value exists.
type lateTransmitter struct {
	tx *transmitter.Transmitter
}

func (l *lateTransmitter) Direct(ctx context.Context, d wave.Directed) (wave.Reflected, error) {
	return l.tx.Direct(ctx, d)
}

// lateField satisfies router.FieldAdmitter the same way lateTransmitter
// satisfies field.Transmitter.
type lateField struct {
	f *field.Field
}

func (l *lateField) Admit(ctx context.Context, dest identity.Surface, d wave.Directed, topic string) (wave.Reflected, error) {
	return l.f.Admit(ctx, dest, d, topic)
}

// exchangerLog adapts an auditlog.Emitter to exchanger.Logger, so the
// exchanger's own wait/drop lifecycle events land in the same audit stream
// as everything else instead of going unlogged.
type exchangerLog struct {
	emit auditlog.Emitter
}

func (l exchangerLog) Event(kind string, fields map[string]any) {
	waveID, _ := fields["wave_id"].(string)
	l.emit.Emit(auditlog.Event{
		Timestamp: time.Now(),
		Kind:      auditlog.KindExchangeOpened,
		WaveId:    waveID,
		Message:   kind,
	})
}

// NewStarCmd builds the "star" subcommand: boot a standalone star — router
// fabric, field layer, exchanger, a registry, and the demo echo driver —
// and serve its event stream over HTTP for the monitor command to watch.
func NewStarCmd() *cobra.Command {
	var (
		dbPath          string
		eventsOn        string
		useMem          bool
		peers           []string
		transportListen string
	)

	cmd := &cobra.Command{
		Use:   "star",
		Short: "Boot a star and begin routing waves",
		Long: `Boot a standalone star: a router fabric, field layer, exchanger and
registry, backing the reference echo driver. Events stream over HTTP as
Server-Sent Events for "starlane monitor" to watch live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")
			debug, _ := cmd.Root().PersistentFlags().GetBool("debug")

			skel := config.Defaults()
			if _, statErr := os.Stat(configPath); statErr == nil {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				skel = loaded
			}

			var reg registry.Registry
			if useMem {
				reg = registry.NewMemory()
			} else {
				sq, err := registry.OpenSQLite(dbPath)
				if err != nil {
					return fmt.Errorf("star: opening registry: %w", err)
				}
				defer sq.Close()
				reg = sq
			}

			hub := observe.NewHub()
			go hub.Run()
			defer hub.Stop()

			var emit auditlog.Emitter = hub
			if debug {
				emit = auditlog.Multi{hub, auditlog.NewNDJSONEmitterWithHumanReadable(os.Stdout)}
			} else {
				emit = auditlog.Multi{hub, auditlog.NewNDJSONEmitter(os.Stdout)}
			}

			exch := exchanger.New(
				exchanger.WithTierTimeout(wave.WaitLow, skel.Tiers()[wave.WaitLow]),
				exchanger.WithTierTimeout(wave.WaitMed, skel.Tiers()[wave.WaitMed]),
				exchanger.WithTierTimeout(wave.WaitHigh, skel.Tiers()[wave.WaitHigh]),
				exchanger.WithLogger(exchangerLog{emit: emit}),
			)

			echoDriver := echo.New()
			plan, err := identity.NewTraversalPlan(identity.Field, identity.Shell, identity.Core)
			if err != nil {
				return err
			}

			plans := func(_ context.Context, _ identity.Point) (*identity.TraversalPlan, error) {
				return plan, nil
			}
			drivers := func(_ context.Context, _ identity.Point) (driver.Driver, error) {
				return echoDriver, nil
			}
			bindLoader := func(_ context.Context, _ identity.Point) (*field.BindConfig, error) {
				bind := echoDriver.Bind()
				return &bind, nil
			}

			lateTx := &lateTransmitter{}
			lateFd := &lateField{}

			var gravity *router.GravityRouter
			if len(peers) > 0 {
				peerMap, err := parsePeers(peers)
				if err != nil {
					return err
				}
				tcp := router.NewTCPTransport(peerMap)
				defer tcp.Close()
				self := identity.NewSurface(identity.MustParsePoint("star:"+string(skel.StarKey())), identity.Gravity)
				gravity = router.NewGravityRouter(tcp, self, skel.Channel.TransportOutbound)
			}

			rtr := router.New(router.Config{
				Plans:       plans,
				Drivers:     drivers,
				Field:       lateFd,
				Reflect:     exch,
				Registry:    reg,
				Gravity:     gravity,
				StarKey:     skel.StarKey(),
				MaxHops:     skel.Star.MaxHops,
				IngressCap:  skel.Channel.RouterIngress,
				AuditLogger: emit,
			})

			tx := transmitter.New(rtr, exch)
			lateTx.tx = tx

			fld := field.NewField(bindLoader, lateTx)
			lateFd.f = fld

			mux := http.NewServeMux()
			mux.Handle(eventsOn, hub)
			srv := &http.Server{Addr: skel.Star.Listen, Handler: mux}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if transportListen != "" {
				go func() {
					err := router.Listen(ctx, transportListen, func(frame []byte) error {
						envelope, err := router.DecodeDirected(frame)
						if err != nil {
							return err
						}
						inner, err := router.UnwrapTransport(envelope)
						if err != nil {
							return err
						}
						return rtr.Route(ctx, inner)
					})
					if err != nil {
						emit.Emit(auditlog.Event{
							Timestamp: time.Now(),
							Kind:      auditlog.KindError,
							Message:   fmt.Sprintf("transport listener on %s stopped: %s", transportListen, err),
						})
					}
				}()
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			emit.Emit(auditlog.Event{
				Timestamp: time.Now(),
				Kind:      auditlog.KindWaveSent,
				Message:   fmt.Sprintf("star %s listening on %s, events on %s%s", skel.Star.Key, skel.Star.Listen, skel.Star.Listen, eventsOn),
			})

			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("star: serving: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "starlane.db", "Path to the registry database")
	cmd.Flags().StringVar(&eventsOn, "events-path", "/events", "HTTP path serving the live event stream")
	cmd.Flags().BoolVar(&useMem, "memory", false, "Use an in-memory registry instead of SQLite")
	cmd.Flags().StringArrayVar(&peers, "peer", nil, "Peer star as key=address (repeatable); enables gravity egress")
	cmd.Flags().StringVar(&transportListen, "transport-listen", "", "Address to accept inbound star-to-star frames on")

	return cmd
}

// parsePeers turns a list of "key=address" flag values into the map
// TCPTransport dials against.
func parsePeers(raw []string) (map[identity.StarKey]string, error) {
	peers := make(map[identity.StarKey]string, len(raw))
	for _, entry := range raw {
		key, addr, ok := strings.Cut(entry, "=")
		if !ok || key == "" || addr == "" {
			return nil, fmt.Errorf("star: invalid --peer %q, want key=address", entry)
		}
		peers[identity.StarKey(key)] = addr
	}
	return peers, nil
}
