package bridgeservice

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexapp/cortex-bridge/internal/config"
)

func startBridge(t *testing.T, cfg *config.Config) (*Bridge, string, func()) {
	t.Helper()
	b, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	ln, err := Listen(context.Background(), "127.0.0.1:0", 0, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Serve(ctx, ln) }()

	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("bridge did not shut down")
		}
	}
	return b, "http://" + ln.Addr().String(), stop
}

func TestBridge_IngestedEventsReachTheMirror(t *testing.T) {
	b, base, stop := startBridge(t, config.NewForTesting())
	defer stop()

	body := `{"event_type":"activity","data":{"domain":"youtube.com","activity":"watching_videos","url":"https://youtube.com","title":"YouTube"}}`
	resp, err := http.Post(base+"/extension-data", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool { return b.Extension.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	evs, err := b.Extension.ExtensionEventsSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "youtube.com", evs[0].Domain)

	st, err := b.Extension.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Equal(t, "http://127.0.0.1:8080", st.ServerURL)
}

func TestBridge_HealthAndMCPMounted(t *testing.T) {
	_, base, stop := startBridge(t, config.NewForTesting())
	defer stop()

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"status":"ok","service":"cortex-extension-bridge"}`, string(raw))

	// Answered by the MCP transport, not the 404 handler.
	resp, err = http.Post(base+"/mcp", "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
}

func TestBridge_MCPDisabled(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.MCPEnabled = false
	_, base, stop := startBridge(t, cfg)
	defer stop()

	resp, err := http.Post(base+"/mcp", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNew_StatsReporterFollowsSchedule(t *testing.T) {
	cfg := config.NewForTesting()
	b, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, b.stats)

	cfg.StatsSchedule = "@every 1m"
	b, err = New(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, b.stats)
	got := b.stats.Report()
	assert.Equal(t, 1, got["bus_subscribers"])
	assert.Equal(t, 0, got["rules"])
}

func TestListen_FailsFastWithoutWindow(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer held.Close()

	_, err = Listen(context.Background(), held.Addr().String(), 0, zerolog.Nop())
	require.Error(t, err)
}

func TestListen_RetriesUntilPortFrees(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := held.Addr().String()

	go func() {
		time.Sleep(300 * time.Millisecond)
		held.Close()
	}()

	ln, err := Listen(context.Background(), addr, 5*time.Second, zerolog.Nop())
	require.NoError(t, err)
	defer ln.Close()
	assert.Equal(t, addr, ln.Addr().String())
}

func TestListen_GivesUpAfterWindow(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer held.Close()

	start := time.Now()
	_, err = Listen(context.Background(), held.Addr().String(), 300*time.Millisecond, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("listen %s", held.Addr().String()))
	assert.Less(t, time.Since(start), 5*time.Second)
}
