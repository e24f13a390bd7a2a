package model

import (
	"encoding/json"
	"time"
)

// Capacities of the bounded stores. Config may override them at startup.
const (
	ActivityLogCapacity  = 1000
	ExtensionLogCapacity = 100
	SubscriberBacklog    = 100
)

// Rule is a stored condition/action specification with an activation flag.
// CreatedAt is epoch milliseconds.
type Rule struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	NaturalLanguage string `json:"natural_language"`
	RuleJSON        string `json:"rule_json"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       int64  `json:"created_at"`
}

// NewRule carries the caller-supplied fields of a rule.
type NewRule struct {
	Name            string `json:"name"`
	NaturalLanguage string `json:"natural_language"`
	RuleJSON        string `json:"rule_json"`
}

// ActivityRecord is a locally observed user activity. Timestamp is epoch milliseconds.
type ActivityRecord struct {
	ID         int64   `json:"id"`
	Timestamp  float64 `json:"timestamp"`
	Activity   string  `json:"activity"`
	Productive bool    `json:"productive"`
	App        string  `json:"app"`
	BundleID   *string `json:"bundle_id,omitempty"`
	Domain     *string `json:"domain,omitempty"`
}

// NewActivityRecord is an ActivityRecord before id allocation.
type NewActivityRecord struct {
	Timestamp  float64 `json:"timestamp"`
	Activity   string  `json:"activity"`
	Productive bool    `json:"productive"`
	App        string  `json:"app"`
	BundleID   *string `json:"bundle_id,omitempty"`
	Domain     *string `json:"domain,omitempty"`
}

// ExtensionEvent is activity reported by the browser extension, stamped with server time.
type ExtensionEvent struct {
	Timestamp float64         `json:"timestamp"`
	Domain    string          `json:"domain"`
	Activity  string          `json:"activity"`
	URL       string          `json:"url"`
	Title     string          `json:"title"`
	Elements  json.RawMessage `json:"elements,omitempty"`
}

// ExtensionMessage is the payload the extension sends.
type ExtensionMessage struct {
	EventType string               `json:"event_type"`
	Data      ExtensionMessageData `json:"data"`
}

// ExtensionMessageData is the body of an ExtensionMessage.
type ExtensionMessageData struct {
	Domain   string          `json:"domain"`
	Activity string          `json:"activity"`
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Elements json.RawMessage `json:"elements,omitempty"`
}

// ExtensionStatus summarises extension liveness as seen by the host.
type ExtensionStatus struct {
	Connected     bool   `json:"connected"`
	ServerRunning bool   `json:"server_running"`
	TotalLogs     int    `json:"total_logs"`
	ServerURL     string `json:"server_url"`
	LastActivity  bool   `json:"last_activity"`
}

// EventFromMessage builds the event published for msg, stamped at receivedAt.
// Any client-side notion of time is ignored.
func EventFromMessage(msg ExtensionMessage, receivedAt time.Time) ExtensionEvent {
	ev := ExtensionEvent{
		Timestamp: Millis(receivedAt),
		Domain:    msg.Data.Domain,
		Activity:  msg.Data.Activity,
		URL:       msg.Data.URL,
		Title:     msg.Data.Title,
	}
	if len(msg.Data.Elements) > 0 && string(msg.Data.Elements) != "null" {
		ev.Elements = append(json.RawMessage(nil), msg.Data.Elements...)
	}
	return ev
}

// Millis converts t to the float epoch-millisecond form used across the bridge.
func Millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}
