package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cortexapp/cortex-bridge/bridgeservice"
	"github.com/cortexapp/cortex-bridge/internal/model"
	"github.com/cortexapp/cortex-bridge/internal/rulegen"
)

func runServe() error {
	return bridgeservice.Run()
}

func newClient(apiURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Second)
}

// getJSON fetches path and copies the body to out.
func getJSON(ctx context.Context, apiURL, path string, out io.Writer) error {
	resp, err := newClient(apiURL).R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err = fmt.Fprintln(out, strings.TrimSpace(resp.String()))
	return err
}

func runHealth(ctx context.Context, apiURL string, out io.Writer) error {
	return getJSON(ctx, apiURL, "/health", out)
}

func runStatus(ctx context.Context, apiURL string, out io.Writer) error {
	return getJSON(ctx, apiURL, "/status", out)
}

type sendOptions struct {
	EventType string
	Domain    string
	Activity  string
	URL       string
	Title     string
	Elements  string
}

func (o sendOptions) message() (model.ExtensionMessage, error) {
	if o.Domain == "" || o.Activity == "" {
		return model.ExtensionMessage{}, fmt.Errorf("--domain and --activity required")
	}
	msg := model.ExtensionMessage{
		EventType: o.EventType,
		Data: model.ExtensionMessageData{
			Domain:   o.Domain,
			Activity: o.Activity,
			URL:      o.URL,
			Title:    o.Title,
		},
	}
	if o.Elements != "" {
		if !json.Valid([]byte(o.Elements)) {
			return model.ExtensionMessage{}, fmt.Errorf("--elements must be valid JSON")
		}
		msg.Data.Elements = json.RawMessage(o.Elements)
	}
	return msg, nil
}

func runSend(ctx context.Context, apiURL string, opts sendOptions, out io.Writer) error {
	msg, err := opts.message()
	if err != nil {
		return err
	}
	resp, err := newClient(apiURL).R().
		SetContext(ctx).
		SetBody(&msg).
		Post("/extension-data")
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err = fmt.Fprintln(out, strings.TrimSpace(resp.String()))
	return err
}

func runRuleDraft(ctx context.Context, args []string, out io.Writer) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("rule text cannot be empty")
	}
	ruleJSON, err := rulegen.NewKeyword().Generate(ctx, text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, ruleJSON)
	return err
}
