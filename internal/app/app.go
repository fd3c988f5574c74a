package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/handlers"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/round"
)

const (
	sessionTTL    = 2 * time.Hour
	sweepInterval = 5 * time.Minute
)

type App struct {
	logger   *slog.Logger
	router   *http.ServeMux
	mode     round.Mode
	sessions *handlers.Sessions
	storage  *Storage
	ws       *config.WebSocket
	origins  []string
}

func New(logger *slog.Logger, mode round.Mode, storage *Storage) (*App, error) {
	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, err
	}

	app := &App{
		logger:   logger,
		router:   http.NewServeMux(),
		mode:     mode,
		sessions: handlers.NewSessions(createRand),
		storage:  storage,
		ws:       ws,
		origins:  config.CorsOrigins(),
	}
	app.loadRoutes()

	return app, nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Recover(a.logger),
		middleware.Logging(a.logger),
		middleware.Cors(a.origins...),
	)
}

// Start serves until ctx is cancelled or the listener fails. Idle sessions
// are dropped in the background.
func (a *App) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if n := a.sessions.Sweep(sessionTTL); n > 0 {
					a.logger.Info("dropped idle sessions", slog.Int("count", n))
				}
			}
		}
	})

	return g.Wait()
}
