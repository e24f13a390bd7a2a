// Package rulegen turns a natural-language rule description into rule JSON.
//
// The only implementation is a keyword lookup. Callers depend on Generator so
// a model-backed implementation can replace it without touching the stores.
package rulegen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Generator drafts rule JSON from free text.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// Condition matches one field of an activity.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Action is what the host does when the conditions match.
type Action struct {
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

// Spec is the serialized rule stored in Rule.RuleJSON.
type Spec struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
}

const nameExcerptRunes = 30

// keywordTable is checked in order; the first hit wins.
var keywordTable = []struct {
	keywords []string
	activity string
}{
	{[]string{"instagram", "insta"}, "instagram_activity"},
	{[]string{"youtube"}, "youtube_activity"},
	{[]string{"twitter", "x.com"}, "twitter_activity"},
	{[]string{"facebook"}, "facebook_activity"},
	{[]string{"reddit"}, "reddit_activity"},
	{[]string{"tiktok"}, "tiktok_activity"},
}

// GeneralActivity is used when no keyword matches.
const GeneralActivity = "general_activity"

// Keyword is the lookup-table Generator.
type Keyword struct{}

// NewKeyword returns the keyword Generator.
func NewKeyword() Keyword { return Keyword{} }

// Generate implements Generator.
func (Keyword) Generate(_ context.Context, text string) (string, error) {
	spec := Draft(text)
	b, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("encode rule: %w", err)
	}
	return string(b), nil
}

// Draft builds the Spec for text without serializing it.
func Draft(text string) Spec {
	return Spec{
		Name: "Rule from: " + excerpt(text, nameExcerptRunes),
		Type: "basic",
		Conditions: []Condition{{
			Field:    "activity",
			Operator: "contains",
			Value:    ExtractActivity(text),
		}},
		Actions: []Action{{
			Type:       "popup",
			Parameters: map[string]any{"message": "Rule triggered: " + text},
		}},
	}
}

// ExtractActivity maps text to the activity label of the first matching keyword.
func ExtractActivity(text string) string {
	lower := strings.ToLower(text)
	for _, row := range keywordTable {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.activity
			}
		}
	}
	return GeneralActivity
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
