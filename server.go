package shoot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Jack4Code/shoot/config"
)

// HeaderRequestID carries the ID assigned to every request served by NewRouter.
const HeaderRequestID = "X-Request-ID"

// Handler builds the view for a request. The view is then processed by the
// pipeline and written to the response.
type Handler func(ctx context.Context, r *http.Request) (View, error)

// App interface
type App interface {
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
	Routes() []Route
}

// Route represents an HTTP route that renders a view
type Route struct {
	Method  string
	Path    string
	Handler Handler
}

// NewRouter registers routes on a gorilla/mux router. Each request is served
// inside p.WithRequest: the route handler builds the view, the pipeline
// processes it and the rendered output is written as text/html.
func NewRouter(routes []Route, p *Pipeline, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.Default()
	}

	router := mux.NewRouter()
	for _, route := range routes {
		router.Handle(route.Path, serveView(route.Handler, p, logger)).Methods(route.Method)
	}
	return router
}

func serveView(h Handler, p *Pipeline, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set(HeaderRequestID, requestID)

		view, err := Scoped(r.Context(), p, r, func(ctx context.Context) (View, error) {
			view, err := h(ctx, r)
			if err != nil {
				return nil, err
			}
			if err := p.Process(ctx, view); err != nil {
				return nil, err
			}
			return view, nil
		})

		status := http.StatusOK
		if err == nil {
			err = writeView(w, view)
		}
		if err != nil {
			status = statusFor(err)
			http.Error(w, http.StatusText(status), status)
		}

		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		logger.LogAttrs(r.Context(), slog.LevelInfo, "request completed", attrs...)
	})
}

// writeView writes views that implement io.WriterTo; other views produce an
// empty 204 response.
func writeView(w http.ResponseWriter, view View) error {
	wt, ok := view.(io.WriterTo)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if rv, ok := view.(interface{ Rendered() bool }); ok && !rv.Rendered() {
		return ErrNotRendered
	}
	_, err := wt.WriteTo(w)
	return err
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Run starts the app: health server first, then OnStart, then the HTTP server
// rendering the app's routes through p. It blocks until SIGINT or SIGTERM and
// then shuts everything down gracefully.
func Run(app App, cfg config.BaseConfig, p *Pipeline, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	healthStatus := NewHealthStatus()

	// Started before OnStart so schedulers can see the process is alive.
	healthServer := startHealthServer(":"+strconv.Itoa(cfg.GetHealthPort()), healthStatus, logger)

	if err := app.OnStart(ctx); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	healthStatus.SetHealthy(true)

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.GetHTTPPort()),
		Handler: NewRouter(app.Routes(), p, logger),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	healthStatus.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down servers")

	// Stop taking new traffic before draining.
	healthStatus.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server forced to shutdown", slog.Any("error", err))
	}

	if err := app.OnStop(ctx); err != nil {
		logger.Error("error during OnStop", slog.Any("error", err))
	}

	logger.Info("servers stopped")
	return nil
}
