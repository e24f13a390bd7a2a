package bridgeservice

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/cortexapp/cortex-bridge/internal/config"
	"github.com/cortexapp/cortex-bridge/internal/logger"
)

// Run starts the bridge and blocks until SIGINT/SIGTERM or a server error.
func Run() error {
	cfg, err := config.New()
	if err != nil {
		log := logger.New("cortex-extension-bridge")
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log := logger.New(cfg.ServiceName).Level(logger.ParseLevel(cfg.LogLevel))
	// Recovery and the MCP tools log through the global logger.
	zlog.Logger = log

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	return Start(ctx, cfg, log)
}

// Start wires the bridge, binds its listener and serves until ctx ends.
func Start(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("addr", cfg.GetHTTPAddr()).
		Bool("mcp_enabled", cfg.MCPEnabled).
		Msg("Extension bridge starting")

	b, err := New(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to wire bridge")
		return err
	}

	ln, err := Listen(ctx, cfg.GetHTTPAddr(), cfg.BindRetryWindow(), log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to bind listener")
		return err
	}
	return b.Serve(ctx, ln)
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
