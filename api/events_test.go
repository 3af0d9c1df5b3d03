package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexwork/workbench/factory"
	"github.com/nexwork/workbench/generic"
)

// readEvent returns the next event name and data line from an SSE stream.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && event != "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamEvents(t *testing.T) {
	// GIVEN: A running server and a connected event stream
	ts := setupTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, _ := readEvent(t, reader)
	require.Equal(t, "ready", event)

	// WHEN: A company is created through the service
	c, err := ts.handler.Service.AddCompany(context.Background(), factory.CompanyInput{Name: "Acme"})
	require.NoError(t, err)

	// THEN: The stream names the change
	event, data := readEvent(t, reader)
	assert.Equal(t, "change", event)

	var change generic.Change
	require.NoError(t, json.Unmarshal([]byte(data), &change))
	assert.Equal(t, generic.Change{Kind: generic.KindCompany, Op: generic.OpCreated, ID: c.ID}, change)

	// AND: Closing the connection releases the subscription
	cancel()
	require.Eventually(t, func() bool {
		return ts.handler.metrics != nil && testStreamsZero(ts.handler.metrics)
	}, 2*time.Second, 10*time.Millisecond)
}

func testStreamsZero(m *Metrics) bool {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return strings.Contains(rec.Body.String(), "workbench_event_streams 0")
}

func TestStreamEvents_NoFeed(t *testing.T) {
	ts := setupTestServer(t)
	ts.handler.Feed = nil

	rec := ts.do(t, "GET", "/api/events", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
