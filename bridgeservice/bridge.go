package bridgeservice

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/api"
	"github.com/cortexapp/cortex-bridge/internal/config"
	"github.com/cortexapp/cortex-bridge/internal/core/activity"
	"github.com/cortexapp/cortex-bridge/internal/core/rules"
	"github.com/cortexapp/cortex-bridge/internal/events"
	"github.com/cortexapp/cortex-bridge/internal/mcptools"
	"github.com/cortexapp/cortex-bridge/internal/mirror"
	"github.com/cortexapp/cortex-bridge/internal/model"
	"github.com/cortexapp/cortex-bridge/internal/rulegen"
	"github.com/cortexapp/cortex-bridge/internal/services"
	"github.com/cortexapp/cortex-bridge/internal/stats"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Bridge owns every store and long-running component of one bridge process.
type Bridge struct {
	cfg *config.Config
	log zerolog.Logger

	Bus       *events.Bus[model.ExtensionEvent]
	Rules     *services.RuleService
	Activity  *services.ActivityService
	Extension *services.ExtensionService
	Router    *api.Router

	mirror *mirror.Worker
	stats  *stats.Reporter
}

// New wires a Bridge from cfg. Nothing runs until Serve.
func New(cfg *config.Config, log zerolog.Logger) (*Bridge, error) {
	bus := events.NewBus[model.ExtensionEvent]("extension", cfg.SubscriberBacklog)

	ruleSvc := services.NewRuleService(rules.NewTable(time.Now), rulegen.NewKeyword(), log)
	activitySvc := services.NewActivityService(activity.NewLog(cfg.ActivityLogCapacity), log)
	extSvc := services.NewExtensionService(services.ExtensionOptions{
		Capacity:       cfg.ExtensionLogCapacity,
		LivenessWindow: cfg.LivenessWindow(),
		ServerURL:      cfg.GetBaseURL(),
	}, log)

	// The mirror subscribes here so it sees the first event the router accepts.
	worker, err := mirror.NewWorker(bus, extSvc, log)
	if err != nil {
		return nil, err
	}

	deps := api.Deps{
		ServiceName: cfg.ServiceName,
		Bus:         bus,
		Log:         log,
	}
	if cfg.MCPEnabled {
		srv, err := mcptools.NewServer(cfg.ServiceName, Version,
			mcptools.NewRuleHandler(ruleSvc),
			mcptools.NewActivityHandler(activitySvc, nil),
			mcptools.NewExtensionHandler(extSvc),
		)
		if err != nil {
			return nil, err
		}
		deps.MCP = mcptools.HTTPHandler(srv)
	}
	router := api.NewRouter(deps)

	b := &Bridge{
		cfg:       cfg,
		log:       log,
		Bus:       bus,
		Rules:     ruleSvc,
		Activity:  activitySvc,
		Extension: extSvc,
		Router:    router,
		mirror:    worker,
	}
	if cfg.StatsSchedule != "" {
		b.stats = stats.NewReporter(cfg.StatsSchedule, map[string]stats.Source{
			"rules":            ruleSvc.Count,
			"activities":       activitySvc.Count,
			"extension_events": extSvc.Count,
			"bus_subscribers":  bus.Subscribers,
			"ws_connections":   router.Connections,
		}, log)
	}
	return b, nil
}

// Serve runs the HTTP server on ln together with the mirror worker and the
// stats reporter. It returns after ctx is canceled and everything has stopped,
// or as soon as the HTTP server fails.
func (b *Bridge) Serve(ctx context.Context, ln net.Listener) error {
	server := newHTTPServer(ctx, b.Router)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := b.mirror.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			b.log.Error().Err(err).Msg("mirror worker stopped")
		}
	}()
	if b.stats != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.stats.Run(ctx); err != nil {
				b.log.Error().Err(err).Msg("stats reporter stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		b.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server starting")
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		b.log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), b.cfg.ShutdownTimeout())
		defer cancel()
		err := server.Shutdown(ctxShutdown)
		b.Bus.Close()
		wg.Wait()
		if err != nil {
			b.log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		b.log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		b.log.Error().Stack().Err(err).Msg("HTTP server failed")
		b.Bus.Close()
		return err
	}
}

func newHTTPServer(ctx context.Context, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Requests, including hijacked WebSocket connections, end with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
}
