package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender performs one chat-completion call. failureMessage is reported when
// the upstream answers with a non-2xx status.
type Sender interface {
	Send(ctx context.Context, apiKey string, req Request, failureMessage string) (Result, error)
}

// Service validates, builds and sends completion requests.
type Service struct {
	sender       Sender
	system       string
	defaultModel string
	logger       *slog.Logger
}

// NewService creates a completion service. system overrides the chat persona
// and defaultModel the model used when callers do not name one.
func NewService(log *slog.Logger, sender Sender, system, defaultModel string) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sender:       sender,
		system:       system,
		defaultModel: strings.TrimSpace(defaultModel),
		logger:       log.With(slog.String("service", "completion")),
	}
}

// Chat runs a freeform conversation turn.
func (s *Service) Chat(ctx context.Context, apiKey string, params ChatParams) (Result, error) {
	if params.System == "" {
		params.System = s.system
	}
	params.Model = s.model(params.Model)
	req, err := BuildChat(apiKey, params)
	if err != nil {
		return Result{}, err
	}
	return s.send(ctx, "chat", apiKey, req, MsgChatFailed)
}

// Generate renders a prompt template and runs it.
func (s *Service) Generate(ctx context.Context, apiKey string, params GenerateParams) (Result, error) {
	params.Model = s.model(params.Model)
	req, err := BuildGenerate(apiKey, params)
	if err != nil {
		return Result{}, err
	}
	return s.send(ctx, "generate", apiKey, req, MsgGenerateFailed)
}

// Test checks that the key and model can reach the gateway.
func (s *Service) Test(ctx context.Context, apiKey string, params TestParams) (Result, error) {
	params.Model = s.model(params.Model)
	req, err := BuildTest(apiKey, params)
	if err != nil {
		return Result{}, err
	}
	return s.send(ctx, "test", apiKey, req, MsgTestFailed)
}

func (s *Service) model(requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	return s.defaultModel
}

func (s *Service) send(ctx context.Context, shape, apiKey string, req Request, failureMessage string) (Result, error) {
	if s.sender == nil {
		return Result{}, fmt.Errorf("completion sender not configured")
	}
	result, err := s.sender.Send(ctx, apiKey, req, failureMessage)
	if err != nil {
		attrs := []any{slog.String("shape", shape), slog.String("model", req.Model)}
		if f, ok := AsFailure(err); ok {
			attrs = append(attrs, slog.Int("status", f.Status))
		}
		s.logger.Warn("completion failed", append(attrs, slog.Any("error", err))...)
		return Result{}, err
	}
	s.logger.Debug("completion done",
		slog.String("shape", shape),
		slog.String("model", req.Model),
		slog.Int("content_len", len(result.Content)),
	)
	return result, nil
}
