package observe

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/internal/auditlog"
)

func TestHub_ServeHTTPStreamsEvents(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()
	time.Sleep(10 * time.Millisecond)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	// The retry directive is written eagerly on connect.
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "retry: 3000\n", line)

	time.Sleep(20 * time.Millisecond)
	h.Emit(auditlog.Event{Kind: auditlog.KindFieldAdmitted, Point: "space:app", Status: 200})

	var sawEvent bool
	for i := 0; i < 10; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.HasPrefix(line, "event: field_admitted") {
			sawEvent = true
			break
		}
	}
	assert.True(t, sawEvent)
}
