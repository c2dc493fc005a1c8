package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sessionoutadapter "siav/internal/modules/session/adapter/out"
)

const shutdownTimeout = 10 * time.Second

// Router mounts the session API, the websocket stream, health and metrics.
func Router(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	if app.Hub != nil {
		r.Get("/ws", app.Hub.HandleWebSocket)
	}
	app.SessionHTTP.Routes(r)
	return r
}

// Serve runs the HTTP server until ctx is cancelled, then drains it.
func Serve(ctx context.Context, app *App) error {
	if app.redis != nil && app.Hub != nil {
		go app.Hub.Relay(ctx, app.redis, sessionoutadapter.CueChannel)
	}
	if app.syncer != nil {
		if err := app.syncer.Start(ctx); err != nil {
			return fmt.Errorf("start log sync: %w", err)
		}
		defer app.syncer.Stop()
	}

	srv := &http.Server{
		Addr:              app.Config.HTTPAddr,
		Handler:           Router(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		app.Logger.Info("http server listening", "addr", srv.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		app.Logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errorCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}
