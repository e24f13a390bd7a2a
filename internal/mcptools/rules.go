package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cortexapp/cortex-bridge/internal/model"
	"github.com/cortexapp/cortex-bridge/internal/services"
)

// RuleHandler exposes rule management tools.
type RuleHandler struct {
	svc *services.RuleService
}

func NewRuleHandler(svc *services.RuleService) *RuleHandler { return &RuleHandler{svc: svc} }

func (h *RuleHandler) RegisterTools(s *server.MCPServer) error {
	create := mcp.NewTool("create_rule",
		mcp.WithDescription("Store a new rule; it starts active. Returns the stored rule"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Rule name")),
		mcp.WithString("natural_language", mcp.Description("The request the rule was drafted from")),
		mcp.WithString("rule_json", mcp.Description("Rule body, usually the output of draft_rule")),
	)
	list := mcp.NewTool("list_rules",
		mcp.WithDescription("List rules, newest first"),
		mcp.WithBoolean("active_only", mcp.Description("Only return active rules")),
	)
	toggle := mcp.NewTool("toggle_rule",
		mcp.WithDescription("Flip a rule between active and inactive"),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Rule id")),
	)
	del := mcp.NewTool("delete_rule",
		mcp.WithDescription("Delete a rule"),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Rule id")),
	)
	draft := mcp.NewTool("draft_rule",
		mcp.WithDescription("Draft rule JSON from a natural-language request without storing it"),
		mcp.WithString("text", mcp.Required(), mcp.Description("What the rule should do, in plain words")),
	)
	s.AddTool(create, h.handleCreate)
	s.AddTool(list, h.handleList)
	s.AddTool(toggle, h.handleToggle)
	s.AddTool(del, h.handleDelete)
	s.AddTool(draft, h.handleDraft)
	return nil
}

func (h *RuleHandler) handleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := model.NewRule{
		Name:            name,
		NaturalLanguage: req.GetString("natural_language", ""),
		RuleJSON:        req.GetString("rule_json", ""),
	}
	r, err := h.svc.CreateRule(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create rule: %v", err)), nil
	}
	return jsonResult(r)
}

func (h *RuleHandler) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		rules []model.Rule
		err   error
	)
	if req.GetBool("active_only", false) {
		rules, err = h.svc.ListActiveRules(ctx)
	} else {
		rules, err = h.svc.ListAllRules(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list rules: %v", err)), nil
	}
	return jsonResult(rules)
}

func (h *RuleHandler) handleToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.svc.ToggleRule(ctx, id); err != nil {
		log.Debug().Err(err).Int64("id", id).Msg("toggle_rule failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := h.svc.GetRule(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(r)
}

func (h *RuleHandler) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.svc.DeleteRule(ctx, id); err != nil {
		log.Debug().Err(err).Int64("id", id).Msg("delete_rule failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"deleted": id})
}

func (h *RuleHandler) handleDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := h.svc.DraftRule(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to draft rule: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}
