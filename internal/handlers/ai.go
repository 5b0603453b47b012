package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/prompt"
)

// ConnectionSuccessful is the message returned by a passing connectivity test.
const ConnectionSuccessful = "Connection successful"

// AIHandler serves the chat, generate and test completion routes.
type AIHandler struct {
	service *completion.Service
	logger  *slog.Logger
}

// ChatRequest is the body of POST /api/ai/chat.
type ChatRequest struct {
	APIKey      string               `json:"apiKey"`
	Model       string               `json:"model,omitempty"`
	Messages    []completion.Message `json:"messages"`
	Temperature *float64             `json:"temperature,omitempty"`
	MaxTokens   *int                 `json:"maxTokens,omitempty"`
}

// GenerateRequest is the body of POST /api/ai/generate.
type GenerateRequest struct {
	APIKey      string           `json:"apiKey"`
	Model       string           `json:"model,omitempty"`
	Prompt      string           `json:"prompt"`
	Variables   prompt.Variables `json:"variables,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   *int             `json:"maxTokens,omitempty"`
}

// TestRequest is the body of POST /api/ai/test.
type TestRequest struct {
	APIKey string `json:"apiKey"`
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// CompletionResponse is returned by the chat and generate routes.
type CompletionResponse struct {
	Success bool              `json:"success"`
	Content string            `json:"content"`
	Usage   *completion.Usage `json:"usage,omitempty"`
}

// TestResponse is returned by the test route.
type TestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Content string `json:"content"`
}

// NewAIHandler creates an AI route handler backed by service.
func NewAIHandler(log *slog.Logger, service *completion.Service) *AIHandler {
	return &AIHandler{
		service: service,
		logger:  log.With(slog.String("handler", "ai")),
	}
}

func (h *AIHandler) Register(e *echo.Echo) {
	group := e.Group("/api/ai")
	group.POST("/chat", h.Chat)
	group.POST("/generate", h.Generate)
	group.POST("/test", h.Test)
}

// Chat godoc
// @Summary Chat completion
// @Description Send a conversation to the model with the architect persona prepended
// @Tags ai
// @Param payload body ChatRequest true "Chat payload"
// @Success 200 {object} CompletionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ai/chat [post]
func (h *AIHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.Chat(c.Request().Context(), req.APIKey, completion.ChatParams{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CompletionResponse{Success: true, Content: result.Content, Usage: result.Usage})
}

// Generate godoc
// @Summary Templated generation
// @Description Render a prompt template with variables and send it as one user message
// @Tags ai
// @Param payload body GenerateRequest true "Generate payload"
// @Success 200 {object} CompletionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ai/generate [post]
func (h *AIHandler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.Generate(c.Request().Context(), req.APIKey, completion.GenerateParams{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Variables:   req.Variables,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CompletionResponse{Success: true, Content: result.Content, Usage: result.Usage})
}

// Test godoc
// @Summary Connectivity test
// @Description Send a short prompt to verify the API key and model
// @Tags ai
// @Param payload body TestRequest true "Test payload"
// @Success 200 {object} TestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/ai/test [post]
func (h *AIHandler) Test(c echo.Context) error {
	var req TestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.Test(c.Request().Context(), req.APIKey, completion.TestParams{
		Model:  req.Model,
		Prompt: req.Prompt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, TestResponse{Success: true, Message: ConnectionSuccessful, Content: result.Content})
}
