// Package completion builds chat-completion requests for the chat, generate
// and test call shapes and runs them through a gateway.
package completion

import "github.com/vsarchitect/vsa/internal/prompt"

// Defaults applied when a caller leaves a field unset.
const (
	DefaultModel             = "anthropic/claude-3.5-sonnet"
	DefaultTemperature       = 0.7
	DefaultChatMaxTokens     = 1000
	DefaultGenerateMaxTokens = 2000
	TestMaxTokens            = 100
	DefaultTestPrompt        = "Hello! Please respond with 'Connection successful' to confirm the API is working."

	MaxTemperature = 2.0
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the body sent to the chat-completion endpoint.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a successful completion.
type Result struct {
	Content string
	Model   string
	Usage   *Usage
}

// ChatParams are the inputs of the chat call shape. A nil Messages slice is
// rejected; pointer fields fall back to defaults when nil.
type ChatParams struct {
	Model       string
	System      string
	Messages    []Message
	Temperature *float64
	MaxTokens   *int
}

// GenerateParams are the inputs of the templated generation call shape.
type GenerateParams struct {
	Model       string
	Prompt      string
	Variables   prompt.Variables
	Temperature *float64
	MaxTokens   *int
}

// TestParams are the inputs of the connectivity test call shape.
type TestParams struct {
	Model  string
	Prompt string
}
