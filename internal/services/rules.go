package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cortexapp/cortex-bridge/internal/core/rules"
	"github.com/cortexapp/cortex-bridge/internal/model"
	"github.com/cortexapp/cortex-bridge/internal/rulegen"
)

// RuleService is the rule half of the host command surface.
type RuleService struct {
	table *rules.Table
	gen   rulegen.Generator
	log   zerolog.Logger
}

func NewRuleService(table *rules.Table, gen rulegen.Generator, log zerolog.Logger) *RuleService {
	if gen == nil {
		gen = rulegen.NewKeyword()
	}
	return &RuleService{table: table, gen: gen, log: log}
}

// CreateRule handles create_rule.
func (s *RuleService) CreateRule(ctx context.Context, in model.NewRule) (model.Rule, error) {
	r := s.table.Create(in)
	s.log.Info().Int64("rule_id", r.ID).Str("name", r.Name).Msg("rule created")
	return r, nil
}

// ListAllRules handles list_all_rules.
func (s *RuleService) ListAllRules(ctx context.Context) ([]model.Rule, error) {
	return s.table.ListAll(), nil
}

// ListActiveRules handles list_active_rules.
func (s *RuleService) ListActiveRules(ctx context.Context) ([]model.Rule, error) {
	return s.table.ListActive(), nil
}

func (s *RuleService) GetRule(ctx context.Context, id int64) (model.Rule, error) {
	return s.table.Get(id)
}

// ToggleRule handles toggle_rule.
func (s *RuleService) ToggleRule(ctx context.Context, id int64) error {
	if err := s.table.Toggle(id); err != nil {
		s.log.Warn().Int64("rule_id", id).Err(err).Msg("toggle rule failed")
		return err
	}
	s.log.Info().Int64("rule_id", id).Msg("rule toggled")
	return nil
}

// DeleteRule handles delete_rule.
func (s *RuleService) DeleteRule(ctx context.Context, id int64) error {
	if err := s.table.Delete(id); err != nil {
		s.log.Warn().Int64("rule_id", id).Err(err).Msg("delete rule failed")
		return err
	}
	s.log.Info().Int64("rule_id", id).Msg("rule deleted")
	return nil
}

// DraftRule handles process_natural_language_rule. Nothing is stored.
func (s *RuleService) DraftRule(ctx context.Context, text string) (string, error) {
	s.log.Debug().Str("text", text).Msg("drafting rule")
	return s.gen.Generate(ctx, text)
}

// Count returns the number of stored rules.
func (s *RuleService) Count() int { return s.table.Len() }
