package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind selects one of the stored generation templates.
type Kind string

const (
	KindSummary Kind = "summary"
	KindCall    Kind = "call"
	KindScope   Kind = "scope"
)

// ErrUnknownKind is returned for a kind outside Kinds.
var ErrUnknownKind = errors.New("unknown prompt kind")

// Kinds lists every supported generation kind.
var Kinds = []Kind{KindSummary, KindCall, KindScope}

// ParseKind validates a generation kind name.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindSummary:
		return KindSummary, nil
	case KindCall:
		return KindCall, nil
	case KindScope:
		return KindScope, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
	}
}

// Library holds the assistant persona and the default generation templates.
type Library struct {
	System  string `yaml:"system"`
	Summary string `yaml:"summary"`
	Call    string `yaml:"call"`
	Scope   string `yaml:"scope"`
}

// Template returns the template stored for kind.
func (l Library) Template(kind Kind) (string, bool) {
	switch kind {
	case KindSummary:
		return l.Summary, true
	case KindCall:
		return l.Call, true
	case KindScope:
		return l.Scope, true
	default:
		return "", false
	}
}

// DefaultLibrary returns the compiled-in prompts.
func DefaultLibrary() Library {
	return Library{
		System:  DefaultSystemPrompt,
		Summary: defaultSummaryTemplate,
		Call:    defaultCallTemplate,
		Scope:   defaultScopeTemplate,
	}
}

// LoadLibrary reads a YAML prompt file and overlays its non-empty entries on
// the defaults. An empty path yields the defaults.
func LoadLibrary(path string) (Library, error) {
	lib := DefaultLibrary()
	if strings.TrimSpace(path) == "" {
		return lib, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return lib, fmt.Errorf("read prompt library: %w", err)
	}
	var file Library
	if err := yaml.Unmarshal(data, &file); err != nil {
		return lib, fmt.Errorf("parse prompt library %s: %w", path, err)
	}
	if strings.TrimSpace(file.System) != "" {
		lib.System = file.System
	}
	if strings.TrimSpace(file.Summary) != "" {
		lib.Summary = file.Summary
	}
	if strings.TrimSpace(file.Call) != "" {
		lib.Call = file.Call
	}
	if strings.TrimSpace(file.Scope) != "" {
		lib.Scope = file.Scope
	}
	return lib, nil
}

// DefaultSystemPrompt is the persona prepended to every chat conversation.
const DefaultSystemPrompt = `You are Virtual Service Architect, an AI assistant for professional services teams.
You help solution architects and project managers with:
- Summarizing discovery notes and client conversations
- Preparing agendas and talking points for client calls
- Drafting project scopes, phases, tasks and effort estimates
- Reviewing statements of work for gaps and risks

Be concise and practical. When asked for structured output, respond with valid JSON only.`

const defaultSummaryTemplate = `Summarize the following project information for a services engagement.

Project details:
{project}

Discovery notes:
{notes}

Respond with a JSON object of the form:
{"summary": string, "keyPoints": [string], "risks": [string], "openQuestions": [string]}`

const defaultCallTemplate = `Prepare for an upcoming client call.

Project details:
{project}

Call context:
{context}

Respond with a JSON object of the form:
{"agenda": [string], "questions": [string], "talkingPoints": [string], "followUps": [string]}`

const defaultScopeTemplate = `Draft a project scope for a professional services engagement.

Project details:
{project}

Requirements:
{requirements}

Respond with a JSON object of the form:
{"executiveSummary": string, "phases": [{"name": string, "tasks": [{"name": string, "hours": number}]}], "assumptions": [string], "outOfScope": [string]}`
