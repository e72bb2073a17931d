package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridroom/gridroom-backend/internal/service"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type broker interface {
	Subscribe(ctx context.Context, topics ...string) (<-chan protocol.Envelope, func())
}

// Server - the push gateway: one WebSocket per participant per room,
// forwarding everything published under the room's topics. It adds no
// ordering or de-duplication of its own; subscribers stay idempotent.
type Server struct {
	logger   *slog.Logger
	broker   broker
	auth     service.AuthService
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, broker broker, auth service.AuthService) *Server {
	return &Server{
		logger: logger.With("component", "push"),
		broker: broker,
		auth:   auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start - starts the gateway server and shuts it down when ctx ends.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /push", func(w http.ResponseWriter, r *http.Request) {
		that.handleSubscribe(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
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

// handleSubscribe - upgrades the connection and streams the room's events.
// The token travels in the query string because browser WebSocket clients
// cannot set headers.
func (that *Server) handleSubscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleSubscribe")

	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "room is required", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	participantID, err := that.auth.VerifyToken(token)
	if err != nil {
		http.Error(w, "auth token is invalid or expired", http.StatusUnauthorized)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log = log.With("roomID", roomID, "participantID", participantID)
	log.Info("push subscription established")

	connCtx, cancelConn := context.WithCancel(ctx)
	events, cancelSub := that.broker.Subscribe(connCtx, protocol.RoomTopics(roomID)...)

	defer func() {
		cancelSub()
		cancelConn()
		conn.Close()
		log.Info("push subscription closed")
	}()

	// reader exists only to notice the peer going away
	go func() {
		defer cancelConn()

		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case envelope, ok := <-events:
			if !ok {
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteJSON(envelope); err != nil {
				log.Info("failed to forward event", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-connCtx.Done():
			return
		}
	}
}
