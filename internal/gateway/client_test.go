package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsarchitect/vsa/internal/completion"
)

func testRequest() completion.Request {
	return completion.Request{
		Model:       "anthropic/claude-3.5-sonnet",
		Messages:    []completion.Message{{Role: completion.RoleUser, Content: "hi"}},
		MaxTokens:   100,
		Temperature: 0.7,
	}
}

func TestSendSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "https://vsa.example.com", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, DefaultAppTitle, r.Header.Get("X-Title"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "anthropic/claude-3.5-sonnet", body["model"])
		assert.Equal(t, float64(100), body["max_tokens"])
		assert.Equal(t, 0.7, body["temperature"])
		assert.Len(t, body["messages"], 1)

		_, _ = w.Write([]byte(`{"model":"anthropic/claude-3.5-sonnet","choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer server.Close()

	client := NewClient(nil, Config{BaseURL: server.URL + "/", SiteURL: "https://vsa.example.com"})
	res, err := client.Send(context.Background(), "test-key", testRequest(), completion.MsgChatFailed)
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Content)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 4, res.Usage.TotalTokens)
}

func TestSendUpstreamError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		details any
	}{
		{"json body", `{"error":{"message":"Rate limit exceeded","code":429}}`, map[string]any{"error": map[string]any{"message": "Rate limit exceeded", "code": float64(429)}}},
		{"unparsable body", `<html>slow down</html>`, map[string]any{}},
		{"empty body", ``, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(nil, Config{BaseURL: server.URL})
			_, err := client.Send(context.Background(), "k", testRequest(), completion.MsgGenerateFailed)
			f, ok := completion.AsFailure(err)
			require.True(t, ok, "expected failure, got %v", err)
			assert.Equal(t, http.StatusTooManyRequests, f.Status)
			assert.Equal(t, completion.MsgGenerateFailed, f.Message)
			assert.Equal(t, tt.details, f.Details)
		})
	}
}

func TestSendWithoutContent(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"choices":[]}`, `{"choices":[{"message":{"content":""}}]}`, `{}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		client := NewClient(nil, Config{BaseURL: server.URL})
		_, err := client.Send(context.Background(), "k", testRequest(), completion.MsgChatFailed)
		server.Close()

		f, ok := completion.AsFailure(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, f.Status)
		assert.Equal(t, completion.MsgNoContent, f.Message)
	}
}

func TestSendMalformedSuccessBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [`))
	}))
	defer server.Close()

	client := NewClient(nil, Config{BaseURL: server.URL})
	_, err := client.Send(context.Background(), "k", testRequest(), completion.MsgChatFailed)
	f, ok := completion.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, f.Status)
	assert.Equal(t, completion.MsgInternal, f.Message)
	assert.NotEmpty(t, f.Details)
}

func TestSendTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(nil, Config{BaseURL: url})
	_, err := client.Send(context.Background(), "k", testRequest(), completion.MsgChatFailed)
	f, ok := completion.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, f.Status)
	assert.Equal(t, completion.MsgInternal, f.Message)
	assert.IsType(t, "", f.Details)
}

func TestSendRequiresAPIKey(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	client := NewClient(nil, Config{BaseURL: server.URL})
	_, err := client.Send(context.Background(), " ", testRequest(), completion.MsgChatFailed)
	assert.True(t, completion.IsValidation(err))
	assert.False(t, called)
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, Config{})
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultSiteURL, client.siteURL)
	assert.Equal(t, DefaultAppTitle, client.appTitle)
	assert.Zero(t, client.http.Timeout)
}
