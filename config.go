package shoot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Jack4Code/shoot/config"
)

// NewLogger creates a JSON slog logger writing to w at the configured level.
func NewLogger(w io.Writer, cfg config.BaseConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// FromConfig builds a pipeline with the middleware named in cfg, in the order
// given. Known names are "logging", "tracing" and "auth".
func FromConfig(cfg config.PipelineConfig, logger *slog.Logger) (*Pipeline, error) {
	middleware := make([]Middleware, 0, len(cfg.Middleware))

	for _, name := range cfg.Middleware {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "logging":
			middleware = append(middleware, Logging(NewSlogLogger(logger)))
		case "tracing":
			var opts []TraceOption
			if cfg.TraceSystem != "" {
				opts = append(opts, WithSystem(cfg.TraceSystem))
			}
			middleware = append(middleware, Tracing(opts...))
		case "auth":
			if cfg.AuthSecret == "" {
				return nil, errors.New("auth middleware requires auth_secret")
			}
			middleware = append(middleware, RequireAuth(cfg.AuthSecret))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, name)
		}
	}

	return New(middleware...), nil
}
