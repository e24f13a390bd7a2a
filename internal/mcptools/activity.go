package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cortexapp/cortex-bridge/internal/model"
	"github.com/cortexapp/cortex-bridge/internal/services"
)

const defaultRecentLimit = 50

// ActivityHandler exposes the activity log.
type ActivityHandler struct {
	svc *services.ActivityService
	now func() time.Time
}

// NewActivityHandler creates an ActivityHandler. now stamps records logged
// without a timestamp; nil uses time.Now.
func NewActivityHandler(svc *services.ActivityService, now func() time.Time) *ActivityHandler {
	if now == nil {
		now = time.Now
	}
	return &ActivityHandler{svc: svc, now: now}
}

func (h *ActivityHandler) RegisterTools(s *server.MCPServer) error {
	logTool := mcp.NewTool("log_activity",
		mcp.WithDescription("Record a user activity observed on this machine; returns the new id"),
		mcp.WithString("activity", mcp.Required(), mcp.Description("Activity label, e.g. coding")),
		mcp.WithString("app", mcp.Required(), mcp.Description("Application name")),
		mcp.WithBoolean("productive", mcp.Description("Whether the activity counts as productive")),
		mcp.WithNumber("timestamp", mcp.Description("Epoch milliseconds; defaults to now")),
		mcp.WithString("bundle_id", mcp.Description("Application bundle id")),
		mcp.WithString("domain", mcp.Description("Web domain, for browser activity")),
	)
	recent := mcp.NewTool("recent_activities",
		mcp.WithDescription("Return the newest activities, oldest first"),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum records (default %d)", defaultRecentLimit))),
	)
	inRange := mcp.NewTool("activities_in_range",
		mcp.WithDescription("Return activities whose timestamp lies within [start, end], epoch milliseconds"),
		mcp.WithNumber("start", mcp.Required(), mcp.Description("Inclusive lower bound")),
		mcp.WithNumber("end", mcp.Required(), mcp.Description("Inclusive upper bound")),
	)
	s.AddTool(logTool, h.handleLog)
	s.AddTool(recent, h.handleRecent)
	s.AddTool(inRange, h.handleRange)
	return nil
}

func (h *ActivityHandler) handleLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activity, err := req.RequireString("activity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	app, err := req.RequireString("app")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := model.NewActivityRecord{
		Timestamp:  req.GetFloat("timestamp", model.Millis(h.now())),
		Activity:   activity,
		Productive: req.GetBool("productive", false),
		App:        app,
		BundleID:   optionalString(req, "bundle_id"),
		Domain:     optionalString(req, "domain"),
	}
	id, err := h.svc.LogActivity(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log activity: %v", err)), nil
	}
	return jsonResult(map[string]any{"id": id})
}

func (h *ActivityHandler) handleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int64(req.GetFloat("limit", defaultRecentLimit))
	out, err := h.svc.RecentActivities(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read activities: %v", err)), nil
	}
	return jsonResult(out)
}

func (h *ActivityHandler) handleRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := req.RequireFloat("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := req.RequireFloat("end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := h.svc.ActivitiesInRange(ctx, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read activities: %v", err)), nil
	}
	return jsonResult(out)
}
