package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vsarchitect/vsa/internal/prompt"
	"github.com/vsarchitect/vsa/internal/settings"
)

// SettingsHandler serves the stored settings and prompt-based generation.
type SettingsHandler struct {
	service *settings.Service
	logger  *slog.Logger
}

// SettingsResponse is the masked settings snapshot plus whether an API key is stored.
type SettingsResponse struct {
	settings.Settings
	Configured bool `json:"configured"`
}

// GenerateContentRequest is the body of POST /api/settings/generate.
type GenerateContentRequest struct {
	Kind      string           `json:"kind"`
	Variables prompt.Variables `json:"variables,omitempty"`
}

// GenerateContentResponse carries the cleaned model output.
type GenerateContentResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// NewSettingsHandler creates a settings route handler.
func NewSettingsHandler(log *slog.Logger, service *settings.Service) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "settings")),
	}
}

func (h *SettingsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/settings")
	group.GET("", h.Get)
	group.PUT("", h.Update)
	group.DELETE("", h.Delete)
	group.POST("/generate", h.GenerateContent)
}

// Get godoc
// @Summary Get settings
// @Description Get the current settings with secrets masked
// @Tags settings
// @Success 200 {object} SettingsResponse
// @Router /api/settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.response(h.service.Get()))
}

// Update godoc
// @Summary Update settings
// @Description Merge a partial update into the settings and persist the snapshot
// @Tags settings
// @Param payload body settings.UpdateRequest true "Partial settings"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/settings [put]
func (h *SettingsHandler) Update(c echo.Context) error {
	var req settings.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.service.Update(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.response(updated))
}

// Delete godoc
// @Summary Reset settings
// @Description Restore the default settings
// @Tags settings
// @Success 204 "No Content"
// @Failure 500 {object} ErrorResponse
// @Router /api/settings [delete]
func (h *SettingsHandler) Delete(c echo.Context) error {
	if _, err := h.service.Reset(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GenerateContent godoc
// @Summary Generate content from a stored prompt
// @Description Render the stored summary, call or scope template and return the cleaned output
// @Tags settings
// @Param payload body GenerateContentRequest true "Kind and variables"
// @Success 200 {object} GenerateContentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/settings/generate [post]
func (h *SettingsHandler) GenerateContent(c echo.Context) error {
	var req GenerateContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	kind, err := prompt.ParseKind(req.Kind)
	if err != nil {
		return writeError(c, err)
	}
	content, err := h.service.GenerateContent(c.Request().Context(), kind, req.Variables)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, GenerateContentResponse{Success: true, Content: content})
}

func (h *SettingsHandler) response(s settings.Settings) SettingsResponse {
	return SettingsResponse{
		Settings:   s.Masked(),
		Configured: s.AI.APIKey != "",
	}
}
