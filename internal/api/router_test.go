package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexapp/cortex-bridge/internal/events"
	"github.com/cortexapp/cortex-bridge/internal/model"
)

const validBody = `{"event_type":"activity","data":{"domain":"instagram.com","activity":"scrolling","url":"https://instagram.com/","title":"Instagram","elements":{"images":3}}}`

var fixedNow = time.UnixMilli(1_700_000_000_123)

func newTestRouter(t *testing.T, bus Publisher) *Router {
	t.Helper()
	return NewRouter(Deps{
		ServiceName: "cortex-extension-bridge",
		Bus:         bus,
		Now:         func() time.Time { return fixedNow },
		Log:         zerolog.Nop(),
	})
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestExtensionData_AcceptedAndPublished(t *testing.T) {
	bus := events.NewBus[model.ExtensionEvent]("api-accept", 10)
	sub, err := bus.Subscribe("test")
	require.NoError(t, err)
	rt := newTestRouter(t, bus)

	rr := do(rt, http.MethodPost, "/extension-data", validBody)
	require.Equal(t, http.StatusOK, rr.Code)

	var ack Ack
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ack))
	assert.Equal(t, "received", ack.Status)
	assert.Equal(t, float64(1_700_000_000_123), ack.Timestamp)

	ev, ok := sub.TryRecv()
	require.True(t, ok)
	assert.Equal(t, "instagram.com", ev.Domain)
	assert.Equal(t, "scrolling", ev.Activity)
	assert.Equal(t, ack.Timestamp, ev.Timestamp)
	assert.JSONEq(t, `{"images":3}`, string(ev.Elements))
}

func TestExtensionData_NoSubscribersStillAccepted(t *testing.T) {
	bus := events.NewBus[model.ExtensionEvent]("api-nosub", 10)
	rr := do(newTestRouter(t, bus), http.MethodPost, "/extension-data", validBody)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestExtensionData_RejectsBadPayloads(t *testing.T) {
	bus := events.NewBus[model.ExtensionEvent]("api-reject", 10)
	sub, err := bus.Subscribe("test")
	require.NoError(t, err)
	rt := newTestRouter(t, bus)

	for _, body := range []string{
		`{not json`,
		`{"event_type":"activity","data":{"domain":"a","url":"b","title":"c"}}`,
		`{"event_type":"activity"}`,
	} {
		rr := do(rt, http.MethodPost, "/extension-data", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.JSONEq(t, `{"error":"Invalid JSON"}`, rr.Body.String())
	}
	assert.Equal(t, 0, sub.Pending())
}

func TestHealthAndStatus(t *testing.T) {
	rt := newTestRouter(t, events.NewBus[model.ExtensionEvent]("api-health", 1))

	rr := do(rt, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","service":"cortex-extension-bridge"}`, rr.Body.String())

	rr = do(rt, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"connected_extensions":0,"server_status":"running"}`, rr.Body.String())
}

func TestNotFound_UnknownRouteAndWrongMethod(t *testing.T) {
	rt := newTestRouter(t, events.NewBus[model.ExtensionEvent]("api-404", 1))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/extension-data"},
		{http.MethodPost, "/health"},
	} {
		rr := do(rt, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, tc.path)
		assert.JSONEq(t, `{"error":"Not Found"}`, rr.Body.String())
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORS_PreflightAndHeaders(t *testing.T) {
	rt := newTestRouter(t, events.NewBus[model.ExtensionEvent]("api-cors", 1))

	rr := do(rt, http.MethodOptions, "/extension-data", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "content-type", rr.Header().Get("Access-Control-Allow-Headers"))

	rr = do(rt, http.MethodGet, "/health", "")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
}

func TestRequestID_EchoesCallerValue(t *testing.T) {
	rt := newTestRouter(t, events.NewBus[model.ExtensionEvent]("api-reqid", 1))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

type panicBus struct{}

func (panicBus) Publish(model.ExtensionEvent) int { panic("bus exploded") }

func TestPanicBecomesInternalServerError(t *testing.T) {
	rr := do(newTestRouter(t, panicBus{}), http.MethodPost, "/extension-data", validBody)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rt := newTestRouter(t, events.NewBus[model.ExtensionEvent]("api-metrics", 1))
	_ = do(rt, http.MethodPost, "/extension-data", validBody)

	rr := do(rt, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cortex_bridge_ingest_messages_total")
}

func TestMCPMount(t *testing.T) {
	rt := NewRouter(Deps{
		ServiceName: "svc",
		Bus:         events.NewBus[model.ExtensionEvent]("api-mcp", 1),
		Log:         zerolog.Nop(),
		MCP: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	})
	rr := do(rt, http.MethodPost, "/mcp", "{}")
	assert.Equal(t, http.StatusTeapot, rr.Code)

	without := newTestRouter(t, events.NewBus[model.ExtensionEvent]("api-nomcp", 1))
	rr = do(without, http.MethodPost, "/mcp", "{}")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWebSocket_IngestsFramesAndCountsConnections(t *testing.T) {
	bus := events.NewBus[model.ExtensionEvent]("api-ws", 10)
	sub, err := bus.Subscribe("test")
	require.NoError(t, err)
	rt := newTestRouter(t, bus)
	srv := httptest.NewServer(rt)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return rt.Connections() == 1 }, time.Second, 5*time.Millisecond)
	rr := do(rt, http.MethodGet, "/status", "")
	assert.JSONEq(t, `{"connected_extensions":1,"server_status":"running"}`, rr.Body.String())

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`garbage`)))
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Invalid JSON"}`, string(data))

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(validBody)))
	_, data, err = c.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"received","timestamp":1700000000123}`, string(data))

	ev, ok := sub.TryRecv()
	require.True(t, ok)
	assert.Equal(t, "instagram.com", ev.Domain)

	require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return rt.Connections() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestExtensionData_NullElementsScenario(t *testing.T) {
	bus := events.NewBus[model.ExtensionEvent]("api-null-elements", 10)
	sub, err := bus.Subscribe("test")
	require.NoError(t, err)
	rt := newTestRouter(t, bus)

	body := `{"event_type":"page","data":{"domain":"a.com","activity":"scroll","url":"http://a.com","title":"A","elements":null}}`
	rr := do(rt, http.MethodPost, "/extension-data", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	_, numeric := resp["timestamp"].(float64)
	assert.True(t, numeric)

	ev, ok := sub.TryRecv()
	require.True(t, ok)
	assert.Equal(t, "a.com", ev.Domain)
	assert.Nil(t, ev.Elements)
	_, more := sub.TryRecv()
	assert.False(t, more)
}
