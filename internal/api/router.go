package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/api/recovery"
	"github.com/cortexapp/cortex-bridge/internal/api/respond"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	ServiceName string
	Bus         Publisher
	Now         func() time.Time
	Log         zerolog.Logger
	// MCP is mounted at /mcp when non-nil.
	MCP http.Handler
}

// Router is the bridge's HTTP surface.
type Router struct {
	handler http.Handler
	ws      *WSHandler
}

// NewRouter wires every route. Middleware wraps the whole mux so that
// unmatched routes and preflights also get CORS and panic recovery.
func NewRouter(d Deps) *Router {
	router := mux.NewRouter()

	ingest := NewExtensionHandler(d.Bus, d.Now, d.Log)
	ws := NewWSHandler(ingest, d.Log)
	health := NewHealthHandler(d.ServiceName, ws.Connections)

	router.HandleFunc("/health", health.CheckHealth).Methods(http.MethodGet)
	router.HandleFunc("/status", health.Status).Methods(http.MethodGet)
	router.HandleFunc("/extension-data", ingest.ReceiveData).Methods(http.MethodPost)
	router.HandleFunc("/ws", ws.Serve).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if d.MCP != nil {
		router.PathPrefix("/mcp").Handler(d.MCP)
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotFound(w)
	})
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = notFound

	var h http.Handler = router
	h = RequestLog(d.Log)(h)
	h = CORS(h)
	h = recovery.Middleware(h)
	return &Router{handler: h, ws: ws}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// Connections returns the number of open extension WebSocket connections.
func (rt *Router) Connections() int { return rt.ws.Connections() }
