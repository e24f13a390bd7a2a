package mirror

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/events"
	"github.com/cortexapp/cortex-bridge/internal/model"
)

// ConsumerName is the bus subscription name used by the host mirror.
const ConsumerName = "host-mirror"

// Sink receives mirrored extension events.
type Sink interface {
	MirrorExtensionEvent(ctx context.Context, ev model.ExtensionEvent) error
}

// Worker drains a bus subscription into the host's extension log.
type Worker struct {
	sub  *events.Subscription[model.ExtensionEvent]
	sink Sink
	log  zerolog.Logger
}

// NewWorker subscribes to bus. Subscribe before the ingestion endpoint starts
// accepting traffic, otherwise early events are not mirrored.
func NewWorker(bus *events.Bus[model.ExtensionEvent], sink Sink, log zerolog.Logger) (*Worker, error) {
	sub, err := bus.Subscribe(ConsumerName)
	if err != nil {
		return nil, err
	}
	return &Worker{sub: sub, sink: sink, log: log}, nil
}

// Run mirrors events until ctx is canceled or the bus closes.
// Drops caused by a slow mirror are reported by the bus metrics, not here.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Str("consumer", w.sub.Consumer()).Msg("mirror worker starting")
	defer w.sub.Close()

	var mirrored uint64
	for {
		ev, err := w.sub.Recv(ctx)
		if err != nil {
			w.log.Info().Uint64("mirrored", mirrored).Uint64("dropped", w.sub.Dropped()).Msg("mirror worker stopping")
			if errors.Is(err, events.ErrClosed) {
				return nil
			}
			return err
		}
		if err := w.sink.MirrorExtensionEvent(ctx, ev); err != nil {
			// Log and continue; a single bad event must not stop the mirror.
			w.log.Error().Err(err).Str("domain", ev.Domain).Msg("mirror event")
			continue
		}
		mirrored++
	}
}
