package validate

import (
	"encoding/json"
	"fmt"

	"github.com/cortexapp/cortex-bridge/internal/model"
)

// wire mirrors model.ExtensionMessage with pointers so missing and null
// fields can be told apart from empty strings.
type wire struct {
	EventType *string   `json:"event_type"`
	Data      *wireData `json:"data"`
}

type wireData struct {
	Domain   *string         `json:"domain"`
	Activity *string         `json:"activity"`
	URL      *string         `json:"url"`
	Title    *string         `json:"title"`
	Elements json.RawMessage `json:"elements"`
}

// ExtensionMessage decodes body and checks that every required field is
// present. Empty strings are accepted; unknown fields are ignored.
// Errors wrap model.ErrInvalidPayload.
func ExtensionMessage(body []byte) (model.ExtensionMessage, error) {
	var w wire
	if err := json.Unmarshal(body, &w); err != nil {
		return model.ExtensionMessage{}, fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}
	if w.EventType == nil {
		return model.ExtensionMessage{}, missing("event_type")
	}
	if w.Data == nil {
		return model.ExtensionMessage{}, missing("data")
	}
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"data.domain", w.Data.Domain},
		{"data.activity", w.Data.Activity},
		{"data.url", w.Data.URL},
		{"data.title", w.Data.Title},
	} {
		if f.v == nil {
			return model.ExtensionMessage{}, missing(f.name)
		}
	}
	return model.ExtensionMessage{
		EventType: *w.EventType,
		Data: model.ExtensionMessageData{
			Domain:   *w.Data.Domain,
			Activity: *w.Data.Activity,
			URL:      *w.Data.URL,
			Title:    *w.Data.Title,
			Elements: w.Data.Elements,
		},
	}, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", model.ErrInvalidPayload, field)
}
