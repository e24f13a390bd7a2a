package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexapp/cortex-bridge/internal/model"
)

func TestRunHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","service":"cortex-extension-bridge"}` + "\n"))
	}))
	defer ts.Close()

	var out bytes.Buffer
	require.NoError(t, runHealth(context.Background(), ts.URL, &out))
	assert.JSONEq(t, `{"status":"ok","service":"cortex-extension-bridge"}`, out.String())
}

func TestRunStatus_PropagatesHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found"}`))
	}))
	defer ts.Close()

	err := runStatus(context.Background(), ts.URL, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 404")
}

func TestRunSend_PostsExtensionMessage(t *testing.T) {
	var got model.ExtensionMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extension-data", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"received","timestamp":1}`))
	}))
	defer ts.Close()

	var out bytes.Buffer
	err := runSend(context.Background(), ts.URL, sendOptions{
		EventType: "activity",
		Domain:    "reddit.com",
		Activity:  "browsing",
		URL:       "https://reddit.com",
		Title:     "Reddit",
		Elements:  `{"posts":4}`,
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "reddit.com", got.Data.Domain)
	assert.JSONEq(t, `{"posts":4}`, string(got.Data.Elements))
	assert.Contains(t, out.String(), "received")
}

func TestRunSend_ValidatesFlags(t *testing.T) {
	err := runSend(context.Background(), "http://127.0.0.1:1", sendOptions{Domain: "a"}, io.Discard)
	require.Error(t, err)

	err = runSend(context.Background(), "http://127.0.0.1:1", sendOptions{Domain: "a", Activity: "b", Elements: "{"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--elements")
}

func TestRuleDraftCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"rule-draft", "stop", "me", "on", "tiktok"})
	require.NoError(t, cmd.Execute())

	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out.String())), &spec))
	assert.Equal(t, "basic", spec["type"])
	assert.Contains(t, out.String(), "tiktok_activity")
}

func TestSendCommand_RequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"send", "--domain", "x.com"})
	require.Error(t, cmd.Execute())
}
