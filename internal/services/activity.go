package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/core/activity"
	"github.com/cortexapp/cortex-bridge/internal/model"
)

// ActivityService is the activity-log half of the host command surface.
type ActivityService struct {
	log    *activity.Log
	logger zerolog.Logger
}

func NewActivityService(l *activity.Log, logger zerolog.Logger) *ActivityService {
	return &ActivityService{log: l, logger: logger}
}

// LogActivity handles log_activity and returns the new record id.
func (s *ActivityService) LogActivity(ctx context.Context, in model.NewActivityRecord) (int64, error) {
	id := s.log.Log(in)
	s.logger.Debug().
		Int64("activity_id", id).
		Str("activity", in.Activity).
		Bool("productive", in.Productive).
		Str("app", in.App).
		Msg("activity logged")
	return id, nil
}

// RecentActivities handles recent_activities.
func (s *ActivityService) RecentActivities(ctx context.Context, limit int64) ([]model.ActivityRecord, error) {
	return s.log.Recent(limit), nil
}

// ActivitiesInRange handles activities_in_range. Bounds are inclusive epoch milliseconds.
func (s *ActivityService) ActivitiesInRange(ctx context.Context, start, end float64) ([]model.ActivityRecord, error) {
	return s.log.InRange(start, end), nil
}

// Count returns the number of retained records.
func (s *ActivityService) Count() int { return s.log.Len() }
