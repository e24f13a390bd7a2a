package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/bounded"
	"github.com/cortexapp/cortex-bridge/internal/model"
)

// ExtensionService owns the host's mirrored copy of extension events.
type ExtensionService struct {
	logs      *bounded.Store[model.ExtensionEvent]
	window    time.Duration
	serverURL string
	now       func() time.Time
	log       zerolog.Logger
}

// ExtensionOptions configures NewExtensionService.
type ExtensionOptions struct {
	Capacity       int
	LivenessWindow time.Duration
	ServerURL      string
	Now            func() time.Time
}

func NewExtensionService(opts ExtensionOptions, log zerolog.Logger) *ExtensionService {
	if opts.Capacity <= 0 {
		opts.Capacity = model.ExtensionLogCapacity
	}
	if opts.LivenessWindow <= 0 {
		opts.LivenessWindow = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ExtensionService{
		logs:      bounded.New[model.ExtensionEvent](opts.Capacity),
		window:    opts.LivenessWindow,
		serverURL: opts.ServerURL,
		now:       opts.Now,
		log:       log,
	}
}

// MirrorExtensionEvent handles mirror_extension_event.
func (s *ExtensionService) MirrorExtensionEvent(ctx context.Context, ev model.ExtensionEvent) error {
	if s.logs.Push(ev) {
		s.log.Debug().Msg("extension log full, oldest event evicted")
	}
	return nil
}

// LogExtensionActivity records an event reported directly by the host rather than over HTTP.
func (s *ExtensionService) LogExtensionActivity(ctx context.Context, data model.ExtensionMessageData) error {
	ev := model.EventFromMessage(model.ExtensionMessage{Data: data}, s.now())
	s.log.Info().Str("activity", ev.Activity).Str("domain", ev.Domain).Msg("extension activity logged")
	return s.MirrorExtensionEvent(ctx, ev)
}

// ExtensionEventsSnapshot handles extension_events_snapshot.
func (s *ExtensionService) ExtensionEventsSnapshot(ctx context.Context) ([]model.ExtensionEvent, error) {
	return s.logs.Snapshot(), nil
}

// ClearExtensionEvents handles clear_extension_events.
func (s *ExtensionService) ClearExtensionEvents(ctx context.Context) error {
	s.logs.Clear()
	s.log.Info().Msg("extension logs cleared")
	return nil
}

// Status reports whether the extension has been heard from within the liveness window.
func (s *ExtensionService) Status(ctx context.Context) (model.ExtensionStatus, error) {
	now := model.Millis(s.now())
	cutoff := float64(s.window.Milliseconds())
	recent := len(s.logs.Filter(func(ev model.ExtensionEvent) bool {
		return now-ev.Timestamp < cutoff
	})) > 0
	return model.ExtensionStatus{
		Connected:     recent,
		ServerRunning: true,
		TotalLogs:     s.logs.Len(),
		ServerURL:     s.serverURL,
		LastActivity:  recent,
	}, nil
}

// Simulate mirrors two canned events so the host UI can be exercised without an extension.
func (s *ExtensionService) Simulate(ctx context.Context) error {
	now := s.now()
	samples := []model.ExtensionEvent{
		{
			Timestamp: model.Millis(now),
			Domain:    "instagram.com",
			Activity:  "scrolling_instagram",
			URL:       "https://instagram.com/",
			Title:     "Instagram",
			Elements:  json.RawMessage(`{"headings":["Stories","Reels","Feed"],"buttons":["Like","Comment","Share"],"images":15}`),
		},
		{
			Timestamp: model.Millis(now.Add(-5 * time.Second)),
			Domain:    "youtube.com",
			Activity:  "watching_videos",
			URL:       "https://youtube.com/watch?v=xyz",
			Title:     "Funny Cat Video - YouTube",
			Elements:  json.RawMessage(`{"video_title":"Funny Cat Video","duration":"5:23","views":"1.2M"}`),
		},
	}
	s.logs.PushAll(samples...)
	s.log.Info().Int("events", len(samples)).Msg("simulated extension data added")
	return nil
}

// Count returns the number of mirrored events.
func (s *ExtensionService) Count() int { return s.logs.Len() }
