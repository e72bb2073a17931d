package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gridroom/gridroom-backend/internal/service"
)

// Server - the synchronous control channel: every session-mutating action
// (start, connect, move, reset, status) is a request/response round trip
// against it.
type Server struct {
	logger   *slog.Logger
	handlers *Handlers
	auth     service.AuthService
}

func New(logger *slog.Logger, gameplay service.GameplayService, auth service.AuthService) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		handlers: NewHandlers(logger, gameplay),
		auth:     auth,
	}
}

// Routes - builds the control API mux. The bootstrap route is the only one
// reachable without a token.
func (that *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /game/getStats", that.handlers.Bootstrap)
	mux.HandleFunc("GET /ping", that.handlers.Ping)

	authed := that.requireToken

	mux.HandleFunc("POST /game/start", authed(that.handlers.StartRoom))
	mux.HandleFunc("POST /game/connect", authed(that.handlers.JoinRoom))
	mux.HandleFunc("POST /game/gameplay", authed(that.handlers.SubmitMove))
	mux.HandleFunc("POST /game/reset", authed(that.handlers.ResetRoom))
	mux.HandleFunc("POST /game/getStatus", authed(that.handlers.GetStatus))
	mux.HandleFunc("POST /game/leave", authed(that.handlers.LeaveRoom))

	return mux
}

// Start - starts the control API server and shuts it down when ctx ends.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
