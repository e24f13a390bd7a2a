package api

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/api/respond"
	"github.com/cortexapp/cortex-bridge/internal/api/validate"
	"github.com/cortexapp/cortex-bridge/internal/model"
)

// maxBodyBytes caps a single extension message.
const maxBodyBytes = 1 << 20

// Publisher is the part of the event bus the ingestion endpoint needs.
type Publisher interface {
	Publish(ev model.ExtensionEvent) int
}

// Ack is the reply to an accepted extension message.
type Ack struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// ExtensionHandler turns extension messages into published events.
type ExtensionHandler struct {
	bus Publisher
	now func() time.Time
	log zerolog.Logger
}

// NewExtensionHandler creates an ExtensionHandler. A nil now uses time.Now.
func NewExtensionHandler(bus Publisher, now func() time.Time, log zerolog.Logger) *ExtensionHandler {
	if now == nil {
		now = time.Now
	}
	return &ExtensionHandler{bus: bus, now: now, log: log}
}

// Ingest validates body, stamps it with server time and publishes it.
// Errors wrap model.ErrInvalidPayload.
func (h *ExtensionHandler) Ingest(body []byte) (Ack, error) {
	msg, err := validate.ExtensionMessage(body)
	if err != nil {
		return Ack{}, err
	}
	ev := model.EventFromMessage(msg, h.now())
	reached := h.bus.Publish(ev)
	h.log.Info().
		Str("event_type", msg.EventType).
		Str("domain", ev.Domain).
		Str("activity", ev.Activity).
		Int("subscribers", reached).
		Msg("extension event received")
	return Ack{Status: "received", Timestamp: ev.Timestamp}, nil
}

// ReceiveData handles POST /extension-data.
func (h *ExtensionHandler) ReceiveData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		ingestTotal.WithLabelValues("http", "rejected").Inc()
		respond.WriteBadRequest(w)
		return
	}
	ack, err := h.Ingest(body)
	if err != nil {
		ingestTotal.WithLabelValues("http", "rejected").Inc()
		h.log.Debug().Err(err).Msg("extension payload rejected")
		respond.WriteBadRequest(w)
		return
	}
	ingestTotal.WithLabelValues("http", "accepted").Inc()
	respond.WriteJSON(w, http.StatusOK, ack)
}
