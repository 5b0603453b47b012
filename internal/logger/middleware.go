package logger

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

// Middleware attaches a request-scoped logger (request id, method, path) to
// the request context. It must run after the request id middleware.
func Middleware(base *slog.Logger) echo.MiddlewareFunc {
	if base == nil {
		base = L
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqLog := base.With(
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
			)
			c.SetRequest(req.WithContext(WithContext(req.Context(), reqLog)))
			return next(c)
		}
	}
}
