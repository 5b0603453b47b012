// Package settings keeps the application settings in memory, persists them
// as a single snapshot, and generates content from the stored prompts.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/prompt"
	"github.com/vsarchitect/vsa/internal/storage"
)

// DefaultKey is the storage key of the settings snapshot.
const DefaultKey = "vsa-settings"

var (
	// ErrNotConfigured is returned by GenerateContent when no API key is stored.
	ErrNotConfigured = errors.New("OpenRouter API key not configured. Please set it in settings.")
	// ErrInvalid wraps rejected settings values.
	ErrInvalid = errors.New("invalid settings")
)

// Generator runs a templated generation request.
type Generator interface {
	Generate(ctx context.Context, apiKey string, params completion.GenerateParams) (completion.Result, error)
}

// Service owns the settings snapshot.
type Service struct {
	// writeMu serializes Update and Reset so storage sees writes in the
	// same order as memory.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	current   Settings
	defaults  Settings
	store     storage.Provider
	key       string
	generator Generator
	logger    *slog.Logger
}

// NewService creates a settings service holding defaults until Load is called.
func NewService(log *slog.Logger, store storage.Provider, generator Generator, lib prompt.Library, key string) *Service {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	defaults := Defaults(lib)
	return &Service{
		current:   defaults,
		defaults:  defaults,
		store:     store,
		key:       key,
		generator: generator,
		logger:    log.With(slog.String("service", "settings")),
	}
}

// Load reads the persisted snapshot and merges it onto the defaults. Read or
// parse failures are logged and leave the defaults in place.
func (s *Service) Load(ctx context.Context) Settings {
	loaded := s.defaults
	if s.store != nil {
		data, err := s.store.Get(ctx, s.key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			s.logger.Debug("no persisted settings, using defaults")
		case err != nil:
			s.logger.Warn("failed to read settings", slog.Any("error", err))
		default:
			merged := s.defaults
			if err := json.Unmarshal(data, &merged); err != nil {
				s.logger.Warn("failed to parse settings", slog.Any("error", err))
			} else {
				loaded = merged
			}
		}
	}
	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded
}

// Get returns a copy of the current settings.
func (s *Service) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsConfigured reports whether an API key is stored.
func (s *Service) IsConfigured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AI.APIKey != ""
}

// Update merges req into the current settings and persists the full
// snapshot. The in-memory value is replaced even when persisting fails; the
// persistence error is returned alongside the merged settings.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	merged, err := merge(s.current, req)
	if err != nil {
		s.mu.Unlock()
		return Settings{}, err
	}
	s.current = merged
	s.mu.Unlock()

	if err := s.persist(ctx, merged); err != nil {
		return merged, err
	}
	return merged, nil
}

// Reset restores the defaults and deletes the persisted snapshot, so the
// next Load starts from the defaults as well.
func (s *Service) Reset(ctx context.Context) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.current = s.defaults
	s.mu.Unlock()
	if s.store == nil {
		return s.defaults, nil
	}
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to delete settings", slog.Any("error", err))
		return s.defaults, fmt.Errorf("delete settings: %w", err)
	}
	return s.defaults, nil
}

// GenerateContent renders the stored template for kind with vars, sends it
// and returns the cleaned model output.
func (s *Service) GenerateContent(ctx context.Context, kind prompt.Kind, vars prompt.Variables) (string, error) {
	current := s.Get()
	template, ok := current.AI.Prompts.Template(kind)
	if !ok {
		return "", fmt.Errorf("%w: %q", prompt.ErrUnknownKind, kind)
	}
	if current.AI.APIKey == "" {
		return "", ErrNotConfigured
	}
	if s.generator == nil {
		return "", fmt.Errorf("content generator not configured")
	}
	temperature := current.AI.Temperature
	maxTokens := current.AI.MaxTokens
	result, err := s.generator.Generate(ctx, current.AI.APIKey, completion.GenerateParams{
		Model:       current.AI.Model,
		Prompt:      template,
		Variables:   vars,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", err
	}
	return prompt.Clean(result.Content), nil
}

func (s *Service) persist(ctx context.Context, snapshot Settings) error {
	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.store.Put(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist settings", slog.Any("error", err))
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// merge applies req on top of current. Secrets equal to the masked form of
// the stored secret are treated as unchanged, so a client can send back what
// it was shown.
func merge(current Settings, req UpdateRequest) (Settings, error) {
	next := current
	if ai := req.AI; ai != nil {
		if ai.APIKey != nil && !isMaskedEcho(*ai.APIKey, current.AI.APIKey) {
			next.AI.APIKey = strings.TrimSpace(*ai.APIKey)
		}
		if ai.Model != nil {
			next.AI.Model = strings.TrimSpace(*ai.Model)
		}
		if ai.Temperature != nil {
			if *ai.Temperature < 0 || *ai.Temperature > completion.MaxTemperature {
				return Settings{}, fmt.Errorf("%w: temperature must be between 0 and %g", ErrInvalid, completion.MaxTemperature)
			}
			next.AI.Temperature = *ai.Temperature
		}
		if ai.MaxTokens != nil {
			if *ai.MaxTokens <= 0 {
				return Settings{}, fmt.Errorf("%w: maxTokens must be a positive integer", ErrInvalid)
			}
			next.AI.MaxTokens = *ai.MaxTokens
		}
		if p := ai.Prompts; p != nil {
			if p.Summary != nil {
				next.AI.Prompts.Summary = *p.Summary
			}
			if p.Call != nil {
				next.AI.Prompts.Call = *p.Call
			}
			if p.Scope != nil {
				next.AI.Prompts.Scope = *p.Scope
			}
		}
	}
	if in := req.Integrations; in != nil {
		if in.ScopeStackURL != nil {
			next.Integrations.ScopeStackURL = strings.TrimSpace(*in.ScopeStackURL)
		}
		if in.ScopeStackAPIKey != nil && !isMaskedEcho(*in.ScopeStackAPIKey, current.Integrations.ScopeStackAPIKey) {
			next.Integrations.ScopeStackAPIKey = strings.TrimSpace(*in.ScopeStackAPIKey)
		}
		if in.ScopeStackAccountSlug != nil {
			next.Integrations.ScopeStackAccountSlug = strings.TrimSpace(*in.ScopeStackAccountSlug)
		}
	}
	return next, nil
}

func isMaskedEcho(value, stored string) bool {
	return stored != "" && value == MaskSecret(stored)
}
