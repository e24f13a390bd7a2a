package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cortexapp/cortex-bridge/internal/services"
)

// ExtensionHandler exposes the host's mirrored view of extension events.
type ExtensionHandler struct {
	svc *services.ExtensionService
}

func NewExtensionHandler(svc *services.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{svc: svc}
}

func (h *ExtensionHandler) RegisterTools(s *server.MCPServer) error {
	s.AddTool(mcp.NewTool("extension_events",
		mcp.WithDescription("Return the mirrored extension events, oldest first"),
	), h.handleEvents)
	s.AddTool(mcp.NewTool("clear_extension_events",
		mcp.WithDescription("Discard all mirrored extension events"),
	), h.handleClear)
	s.AddTool(mcp.NewTool("extension_status",
		mcp.WithDescription("Report whether the browser extension has been heard from recently"),
	), h.handleStatus)
	s.AddTool(mcp.NewTool("simulate_extension_data",
		mcp.WithDescription("Mirror two sample extension events for testing"),
	), h.handleSimulate)
	return nil
}

func (h *ExtensionHandler) handleEvents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	evs, err := h.svc.ExtensionEventsSnapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read extension events: %v", err)), nil
	}
	return jsonResult(evs)
}

func (h *ExtensionHandler) handleClear(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.svc.ClearExtensionEvents(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear extension events: %v", err)), nil
	}
	return mcp.NewToolResultText("Extension logs cleared"), nil
}

func (h *ExtensionHandler) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read extension status: %v", err)), nil
	}
	return jsonResult(st)
}

func (h *ExtensionHandler) handleSimulate(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.svc.Simulate(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to simulate extension data: %v", err)), nil
	}
	return mcp.NewToolResultText("Simulated extension data added"), nil
}
