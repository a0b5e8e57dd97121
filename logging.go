package shoot

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"
)

// Logger is the sink the logging middleware writes to.
type Logger interface {
	Debug(msg string, fields map[string]any)
}

// slogLogger adapts a *slog.Logger to Logger.
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a Logger that writes debug records to logger.
// Fields are emitted as attributes sorted by key.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

func (l *slogLogger) Debug(msg string, fields map[string]any) {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

// Logging returns middleware that logs each processed view once the rest of
// the chain, rendering included, has completed. The record is keyed by the
// view name and carries the presentation model name, the time taken and the
// template variables.
//
// Usage:
//
//	p := shoot.New(shoot.Logging(shoot.NewSlogLogger(logger)))
func Logging(logger Logger) Middleware {
	return MiddlewareFunc(func(ctx context.Context, view View, r *http.Request, next Next) (View, error) {
		start := time.Now()
		result, err := next(ctx, view)
		if err != nil {
			return result, err
		}
		elapsed := time.Since(start)

		// A middleware further in may have swapped the view, but never for nil.
		if result == nil {
			return result, ErrNilView
		}

		fields := map[string]any{
			"presentation_model": "",
			"time_taken":         fmt.Sprintf("%f seconds", elapsed.Seconds()),
			"variables":          map[string]any{},
		}
		if model := result.PresentationModel(); model != nil {
			fields["presentation_model"] = model.Name()
			fields["variables"] = model.Variables()
		}
		logger.Debug(result.Name(), fields)

		return result, nil
	})
}
