package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/config"
	"github.com/vsarchitect/vsa/internal/handlers"
)

const envAPIKey = "OPENROUTER_API_KEY"

// Chat command flags.
var (
	chatAPIURL  string
	chatAPIKey  string
	chatModel   string
	chatTimeout time.Duration
)

// chatCmd talks to a running vsa server through POST /api/ai/chat.
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the architect assistant through a running server",
	Long: `Send a message to a running vsa server. With no arguments an interactive
session starts; the conversation history is resent with every turn.
Type "exit" or "quit" to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatAPIURL, "api-url", "", "API server base URL (default derived from [server].addr)")
	chatCmd.Flags().StringVar(&chatAPIKey, "api-key", "", "OpenRouter API key (or set "+envAPIKey+")")
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model id (server default when empty)")
	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 2*time.Minute, "request timeout")
}

type chatClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	history []completion.Message
}

func runChat(cmd *cobra.Command, args []string) error {
	baseURL := normalizeBaseURL(chatAPIURL)
	if baseURL == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		baseURL = defaultAPIBaseURL(cfg.Server.Addr)
	}
	if baseURL == "" {
		return fmt.Errorf("api url is required")
	}
	apiKey := resolveAPIKey(chatAPIKey)
	if apiKey == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		key, err := readSecret(cmd.ErrOrStderr(), "OpenRouter API key: ")
		if err != nil {
			return err
		}
		apiKey = key
	}
	client := &chatClient{
		http:    &http.Client{Timeout: chatTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   strings.TrimSpace(chatModel),
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if query := strings.TrimSpace(strings.Join(args, " ")); query != "" {
		reply, err := client.send(ctx, query)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply)
		return nil
	}
	return client.interactive(ctx, cmd.InOrStdin(), out)
}

func (c *chatClient) interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	you := color.New(color.FgCyan, color.Bold).SprintFunc()
	bot := color.New(color.FgGreen, color.Bold).SprintFunc()

	reader := bufio.NewScanner(in)
	reader.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	fmt.Fprint(out, you("You: "))
	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			fmt.Fprint(out, you("You: "))
			continue
		}
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			return nil
		}
		reply, err := c.send(ctx, line)
		if err != nil {
			fmt.Fprintln(out, color.RedString("error: %v", err))
		} else {
			fmt.Fprintf(out, "%s%s\n\n", bot("Architect: "), reply)
		}
		fmt.Fprint(out, you("You: "))
	}
	return reader.Err()
}

// send posts the history plus query. The turn is kept only when the server answers.
func (c *chatClient) send(ctx context.Context, query string) (string, error) {
	messages := append(append([]completion.Message(nil), c.history...), completion.Message{
		Role:    completion.RoleUser,
		Content: query,
	})
	body, err := json.Marshal(handlers.ChatRequest{
		APIKey:   c.apiKey,
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr handlers.ErrorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return "", fmt.Errorf("api server error: %s", strings.TrimSpace(string(payload)))
	}

	var parsed handlers.CompletionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	c.history = append(messages, completion.Message{Role: completion.RoleAssistant, Content: parsed.Content})
	return parsed.Content, nil
}

// readSecret prompts on w and reads a line from the terminal without echo.
func readSecret(w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

func resolveAPIKey(flagValue string) string {
	if key := strings.TrimSpace(flagValue); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(envAPIKey))
}

func normalizeBaseURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}

func defaultAPIBaseURL(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return normalizeBaseURL(trimmed)
	}
	if strings.HasPrefix(trimmed, ":") {
		return "http://127.0.0.1" + trimmed
	}
	return "http://" + trimmed
}
