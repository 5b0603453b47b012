package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/prompt"
	"github.com/vsarchitect/vsa/internal/settings"
	"github.com/vsarchitect/vsa/internal/storage"
)

func newSettingsEcho(t *testing.T, sender completion.Sender) (*echo.Echo, *settings.Service, storage.Provider) {
	t.Helper()
	store := storage.NewMemoryProvider()
	gen := completion.NewService(discardLogger(), sender, "", "")
	svc := settings.NewService(discardLogger(), store, gen, prompt.DefaultLibrary(), "")
	svc.Load(context.Background())

	e := echo.New()
	NewSettingsHandler(discardLogger(), svc).Register(e)
	return e, svc, store
}

func TestSettingsGetMasksKey(t *testing.T) {
	t.Parallel()

	e, svc, _ := newSettingsEcho(t, completion.NewMockSender())
	_, err := svc.Update(context.Background(), settings.UpdateRequest{AI: &settings.AIUpdate{APIKey: ptrTo("sk-or-v1-abcdef123456")}})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["configured"])
	ai := body["ai"].(map[string]any)
	assert.Equal(t, "sk-o...3456", ai["apiKey"])
}

func TestSettingsUpdateMergesAndPersists(t *testing.T) {
	t.Parallel()

	e, svc, store := newSettingsEcho(t, completion.NewMockSender())

	rec := doJSON(e, http.MethodPut, "/api/settings", `{"ai":{"temperature":0.9}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["configured"])

	current := svc.Get()
	assert.InDelta(t, 0.9, current.AI.Temperature, 1e-9)
	assert.Equal(t, settings.DefaultModel, current.AI.Model)

	_, err := store.Get(context.Background(), settings.DefaultKey)
	assert.NoError(t, err)
}

func TestSettingsUpdateRejectsInvalid(t *testing.T) {
	t.Parallel()

	e, _, _ := newSettingsEcho(t, completion.NewMockSender())
	rec := doJSON(e, http.MethodPut, "/api/settings", `{"ai":{"maxTokens":0}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsDeleteResets(t *testing.T) {
	t.Parallel()

	e, svc, store := newSettingsEcho(t, completion.NewMockSender())
	_, err := svc.Update(context.Background(), settings.UpdateRequest{AI: &settings.AIUpdate{Model: ptrTo("openai/gpt-4o")}})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodDelete, "/api/settings", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, settings.DefaultModel, svc.Get().AI.Model)
	_, err = store.Get(context.Background(), settings.DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSettingsGenerateNotConfigured(t *testing.T) {
	t.Parallel()

	sender := completion.NewMockSender()
	e, _, _ := newSettingsEcho(t, sender)

	rec := doJSON(e, http.MethodPost, "/api/settings/generate", `{"kind":"summary","variables":{"notes":"n"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "API key")
	assert.Empty(t, sender.Calls())
}

func TestSettingsGenerateUnknownKind(t *testing.T) {
	t.Parallel()

	e, _, _ := newSettingsEcho(t, completion.NewMockSender())
	rec := doJSON(e, http.MethodPost, "/api/settings/generate", `{"kind":"invoice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsGenerateCleansOutput(t *testing.T) {
	t.Parallel()

	sender := completion.NewMockSender(completion.MockOutcome{Result: completion.Result{
		Content: "Sure!\n```json\n{\"summary\":\"ok\"}\n```",
	}})
	e, svc, _ := newSettingsEcho(t, sender)
	_, err := svc.Update(context.Background(), settings.UpdateRequest{AI: &settings.AIUpdate{APIKey: ptrTo("sk-test")}})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodPost, "/api/settings/generate", `{"kind":"scope","variables":{"requirements":["vpn","sso"]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `{"summary":"ok"}`, decodeBody(t, rec)["content"])

	calls := sender.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, completion.MsgGenerateFailed, calls[0].FailureMessage)
}

func ptrTo[T any](v T) *T { return &v }
