package settings

import (
	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/prompt"
)

// Default values for settings fields that have never been set.
const (
	DefaultModel         = completion.DefaultModel
	DefaultTemperature   = completion.DefaultTemperature
	DefaultMaxTokens     = completion.DefaultGenerateMaxTokens
	DefaultScopeStackURL = "https://api.scopestack.io"
)

// Settings is the full snapshot persisted under the settings key.
type Settings struct {
	AI           AISettings           `json:"ai"`
	Integrations IntegrationsSettings `json:"integrations"`
}

// AISettings configures content generation.
type AISettings struct {
	APIKey      string  `json:"apiKey"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	Prompts     Prompts `json:"prompts"`
}

// Prompts holds one generation template per prompt kind.
type Prompts struct {
	Summary string `json:"summary"`
	Call    string `json:"call"`
	Scope   string `json:"scope"`
}

// Template returns the stored template for kind.
func (p Prompts) Template(kind prompt.Kind) (string, bool) {
	switch kind {
	case prompt.KindSummary:
		return p.Summary, true
	case prompt.KindCall:
		return p.Call, true
	case prompt.KindScope:
		return p.Scope, true
	default:
		return "", false
	}
}

// IntegrationsSettings holds credentials for third-party services.
type IntegrationsSettings struct {
	ScopeStackURL         string `json:"scopeStackUrl"`
	ScopeStackAPIKey      string `json:"scopeStackApiKey"`
	ScopeStackAccountSlug string `json:"scopeStackAccountSlug"`
}

// UpdateRequest is a partial update. Nil fields keep their current value.
type UpdateRequest struct {
	AI           *AIUpdate           `json:"ai,omitempty"`
	Integrations *IntegrationsUpdate `json:"integrations,omitempty"`
}

// AIUpdate is the partial form of AISettings.
type AIUpdate struct {
	APIKey      *string        `json:"apiKey,omitempty"`
	Model       *string        `json:"model,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   *int           `json:"maxTokens,omitempty"`
	Prompts     *PromptsUpdate `json:"prompts,omitempty"`
}

// PromptsUpdate is the partial form of Prompts.
type PromptsUpdate struct {
	Summary *string `json:"summary,omitempty"`
	Call    *string `json:"call,omitempty"`
	Scope   *string `json:"scope,omitempty"`
}

// IntegrationsUpdate is the partial form of IntegrationsSettings.
type IntegrationsUpdate struct {
	ScopeStackURL         *string `json:"scopeStackUrl,omitempty"`
	ScopeStackAPIKey      *string `json:"scopeStackApiKey,omitempty"`
	ScopeStackAccountSlug *string `json:"scopeStackAccountSlug,omitempty"`
}

// Defaults returns the compiled-in settings built around lib's templates.
func Defaults(lib prompt.Library) Settings {
	return Settings{
		AI: AISettings{
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Prompts: Prompts{
				Summary: lib.Summary,
				Call:    lib.Call,
				Scope:   lib.Scope,
			},
		},
		Integrations: IntegrationsSettings{
			ScopeStackURL: DefaultScopeStackURL,
		},
	}
}
