package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/handlers"
	"github.com/vsarchitect/vsa/internal/prompt"
	"github.com/vsarchitect/vsa/internal/server"
	"github.com/vsarchitect/vsa/internal/storage"
)

func TestRootHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	for _, sub := range []string{"serve", "migrate", "generate", "chat", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("root help missing %s subcommand, got:\n%s", sub, out)
		}
	}
}

func TestServeGraphIsComplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[storage]\ndriver = \"memory\"\n"), 0o600))

	assert.NoError(t, fx.ValidateApp(serveGraph(path), fx.NopLogger))
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"project=Atlas", `sites=3`, `meta={"region":"eu"}`, "empty="})
	require.NoError(t, err)
	assert.Equal(t, prompt.KindString, vars["project"].Kind())
	assert.Equal(t, prompt.KindNumber, vars["sites"].Kind())
	assert.Equal(t, prompt.KindJSON, vars["meta"].Kind())
	assert.Equal(t, `""`, vars["empty"].Render())

	_, err = parseVars([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseVars([]string{"=x"})
	assert.Error(t, err)
}

func TestLoadVarsFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	vars, err := loadVarsFile(write("null.json", "null"))
	require.NoError(t, err)
	require.NotNil(t, vars)
	vars["x"] = prompt.Number(1)
	assert.Len(t, vars, 1)

	vars, err = loadVarsFile(write("vars.json", `{"project":"Atlas","sites":3}`))
	require.NoError(t, err)
	assert.Equal(t, `"Atlas"`, vars["project"].Render())
	assert.Equal(t, "3", vars["sites"].Render())

	_, err = loadVarsFile(write("list.json", `["a"]`))
	assert.Error(t, err)

	vars, err = loadVarsFile("")
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestMissingVars(t *testing.T) {
	vars := prompt.Variables{"project": prompt.String("Atlas")}
	assert.Equal(t, []string{"notes"}, missingVars("{project} {notes} {project}", vars))
}

func TestOverlayStoreDoesNotWriteThrough(t *testing.T) {
	ctx := context.Background()
	base := storage.NewMemoryProvider()
	require.NoError(t, base.Put(ctx, "vsa-settings", []byte(`{"ai":{"model":"x"}}`)))

	overlay, err := overlayStore(ctx, base, "vsa-settings")
	require.NoError(t, err)
	require.NoError(t, overlay.Put(ctx, "vsa-settings", []byte(`{"ai":{"apiKey":"sk"}}`)))

	data, err := base.Get(ctx, "vsa-settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ai":{"model":"x"}}`, string(data))
}

func TestDefaultAPIBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		":8080":              "http://127.0.0.1:8080",
		"localhost:9000":     "http://localhost:9000",
		"https://vsa.local/": "https://vsa.local",
		" http://host:1/ ":   "http://host:1",
	}
	for in, want := range tests {
		if got := defaultAPIBaseURL(in); got != want {
			t.Errorf("defaultAPIBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChatClientKeepsHistory(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := completion.NewMockSender(
		completion.MockOutcome{Result: completion.Result{Content: "first answer"}},
		completion.MockOutcome{Result: completion.Result{Content: "second answer"}},
	)
	svc := completion.NewService(log, sender, "", "")
	srv := server.NewServer(log, "", server.Options{}, handlers.NewAIHandler(log, svc))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client := &chatClient{http: ts.Client(), baseURL: ts.URL, apiKey: "sk-test"}
	ctx := context.Background()

	reply, err := client.send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "first answer", reply)
	reply, err = client.send(ctx, "and then?")
	require.NoError(t, err)
	assert.Equal(t, "second answer", reply)

	calls := sender.Calls()
	require.Len(t, calls, 2)
	// system + user + assistant + user
	require.Len(t, calls[1].Request.Messages, 4)
	assert.Equal(t, "first answer", calls[1].Request.Messages[2].Content)
}

func TestChatClientReportsAPIError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := completion.NewMockSender()
	svc := completion.NewService(log, sender, "", "")
	srv := server.NewServer(log, "", server.Options{}, handlers.NewAIHandler(log, svc))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client := &chatClient{http: ts.Client(), baseURL: ts.URL}
	_, err := client.send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), completion.MsgAPIKeyRequired)
	assert.Empty(t, client.history)
	assert.Empty(t, sender.Calls())
}
