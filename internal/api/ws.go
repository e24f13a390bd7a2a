package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/api/respond"
)

// WSHandler accepts persistent extension connections on GET /ws. Every text
// or binary frame is handled like a POST /extension-data body.
type WSHandler struct {
	ingest *ExtensionHandler
	open   atomic.Int64
	log    zerolog.Logger
}

func NewWSHandler(ingest *ExtensionHandler, log zerolog.Logger) *WSHandler {
	return &WSHandler{ingest: ingest, log: log}
}

// Connections returns the number of open connections.
func (h *WSHandler) Connections() int { return int(h.open.Load()) }

// Serve handles GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket accept")
		return
	}

	connID := uuid.NewString()
	h.open.Add(1)
	wsConnections.Inc()
	log := h.log.With().Str("conn_id", connID).Logger()
	log.Info().Msg("extension connected")

	defer func() {
		h.open.Add(-1)
		wsConnections.Dec()
		conn.CloseNow()
		log.Info().Msg("extension disconnected")
	}()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Msg("websocket read")
			}
			return
		}

		var reply interface{}
		ack, err := h.ingest.Ingest(data)
		if err != nil {
			ingestTotal.WithLabelValues("ws", "rejected").Inc()
			reply = respond.ErrorResponse{Error: respond.MsgInvalidJSON}
		} else {
			ingestTotal.WithLabelValues("ws", "accepted").Inc()
			reply = ack
		}

		out, err := json.Marshal(reply)
		if err != nil {
			log.Error().Err(err).Msg("encode websocket reply")
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			log.Debug().Err(err).Msg("websocket write")
			return
		}
	}
}
