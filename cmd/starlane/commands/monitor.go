package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/internal/auditlog"
	"github.com/starlane-io/starlane/internal/observe"
)

// NewMonitorCmd builds the "monitor" subcommand: connect to a running
// star's event stream over SSE and render it as a live Bubble Tea
// dashboard.
func NewMonitorCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch a star's live event stream",
		Long: `Connect to a star's /events endpoint and render incoming traversal,
exchange and field events as a live table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())

			events := make(chan auditlog.Event, 256)
			errs := make(chan error, 1)
			go func() {
				errs <- streamEvents(ctx, addr, events)
			}()

			model := observe.NewModel(events, cancel)
			program := tea.NewProgram(model)

			_, runErr := program.Run()
			cancel()
			if runErr != nil {
				return fmt.Errorf("monitor: %w", runErr)
			}
			if streamErr := <-errs; streamErr != nil && streamErr != context.Canceled {
				return streamErr
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://127.0.0.1:7070/events", "URL of the star's event stream")

	return cmd
}

// streamEvents connects to a star's SSE endpoint and decodes each "data:"
// line as an auditlog.Event, forwarding it to out until ctx is cancelled
// or the connection drops. out is closed on return.
func streamEvents(ctx context.Context, url string, out chan<- auditlog.Event) error {
	defer close(out)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("monitor: connecting to %s: %w", url, err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev auditlog.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
