package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-go-golems/embedbot/pkg/config"
	"github.com/go-go-golems/embedbot/pkg/transport"
	"github.com/stretchr/testify/require"
)

func TestAskCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, transport.ChatPath, r.URL.Path)
		var body transport.ChatRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "echo: " + body.Message})
	}))
	defer srv.Close()

	cmd := newAskCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--api-url", srv.URL + "/", "hello", "there"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Equal(t, "echo: hello there\n", out.String())
}

func TestAskCommand_NoAPIBase(t *testing.T) {
	prev := defaultAPIURL
	defaultAPIURL = ""
	t.Cleanup(func() { defaultAPIURL = prev })

	cmd := newAskCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hello"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestWidgetOptions_FlagsOverrideConfig(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "embedbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
widget:
  apiUrl: https://from-config.example
  title: From Config
  position: top-left
`), 0o644))

	cmd := newWidgetCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--title", "From Flag"}))

	f := &widgetFlags{}
	f.configPath, _ = cmd.Flags().GetString("config")
	f.opts.Title, _ = cmd.Flags().GetString("title")

	opts, err := f.options(cmd)
	require.NoError(t, err)
	require.Equal(t, "https://from-config.example", opts.APIURL)
	require.Equal(t, "From Flag", opts.Title)
	require.Equal(t, "top-left", opts.Position)
}

func TestServeFlags_Apply(t *testing.T) {
	cmd := newServeCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--provider", "echo", "--redis-addr", "redis:6379"}))

	f := &serveFlags{}
	f.provider, _ = cmd.Flags().GetString("provider")
	f.redisAddr, _ = cmd.Flags().GetString("redis-addr")

	s := config.Default()
	f.apply(cmd, s)
	require.Equal(t, "echo", s.LLM.Provider)
	require.Equal(t, "redis:6379", s.Events.Addr)
	require.Equal(t, "redis:6379", s.Store.RedisAddr)
	require.Equal(t, ":8000", s.Server.Addr)
}
