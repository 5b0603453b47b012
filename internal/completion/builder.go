package completion

import (
	"strings"

	"github.com/vsarchitect/vsa/internal/prompt"
)

// BuildChat prepends the system persona to the caller's messages.
func BuildChat(apiKey string, params ChatParams) (Request, error) {
	if err := requireAPIKey(apiKey); err != nil {
		return Request{}, err
	}
	if params.Messages == nil {
		return Request{}, invalid(MsgMessagesRequired)
	}
	for i, msg := range params.Messages {
		if err := validateRole(msg.Role); err != nil {
			return Request{}, invalid("messages[%d]: %v", i, err)
		}
	}
	temperature, maxTokens, err := resolveSampling(params.Temperature, params.MaxTokens, DefaultChatMaxTokens)
	if err != nil {
		return Request{}, err
	}

	system := params.System
	if strings.TrimSpace(system) == "" {
		system = prompt.DefaultSystemPrompt
	}
	messages := make([]Message, 0, len(params.Messages)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	messages = append(messages, params.Messages...)

	return Request{
		Model:       resolveModel(params.Model),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}

// BuildGenerate renders the prompt template and wraps it as a single user message.
func BuildGenerate(apiKey string, params GenerateParams) (Request, error) {
	if err := requireAPIKey(apiKey); err != nil {
		return Request{}, err
	}
	if params.Prompt == "" {
		return Request{}, invalid(MsgPromptRequired)
	}
	temperature, maxTokens, err := resolveSampling(params.Temperature, params.MaxTokens, DefaultGenerateMaxTokens)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Model:       resolveModel(params.Model),
		Messages:    []Message{{Role: RoleUser, Content: prompt.Render(params.Prompt, params.Variables)}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}

// BuildTest builds the small fixed-budget request used to check credentials.
func BuildTest(apiKey string, params TestParams) (Request, error) {
	if err := requireAPIKey(apiKey); err != nil {
		return Request{}, err
	}
	text := params.Prompt
	if strings.TrimSpace(text) == "" {
		text = DefaultTestPrompt
	}
	return Request{
		Model:       resolveModel(params.Model),
		Messages:    []Message{{Role: RoleUser, Content: text}},
		MaxTokens:   TestMaxTokens,
		Temperature: DefaultTemperature,
	}, nil
}

func requireAPIKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return invalid(MsgAPIKeyRequired)
	}
	return nil
}

func resolveModel(model string) string {
	if trimmed := strings.TrimSpace(model); trimmed != "" {
		return trimmed
	}
	return DefaultModel
}

func resolveSampling(temperature *float64, maxTokens *int, defaultMaxTokens int) (float64, int, error) {
	t := DefaultTemperature
	if temperature != nil {
		t = *temperature
	}
	if t < 0 || t > MaxTemperature {
		return 0, 0, invalid("temperature must be between 0 and %g", MaxTemperature)
	}
	n := defaultMaxTokens
	if maxTokens != nil {
		n = *maxTokens
	}
	if n <= 0 {
		return 0, 0, invalid("maxTokens must be a positive integer")
	}
	return t, n, nil
}

func validateRole(role Role) error {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	default:
		return invalid("unsupported role %q", role)
	}
}
