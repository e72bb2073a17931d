package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gridroom/gridroom-backend/internal/apperror"
	"github.com/gridroom/gridroom-backend/internal/service"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

type Handlers struct {
	logger   *slog.Logger
	gameplay service.GameplayService
}

func NewHandlers(logger *slog.Logger, gameplay service.GameplayService) *Handlers {
	return &Handlers{
		logger:   logger.With("component", "rest-handlers"),
		gameplay: gameplay,
	}
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// Bootstrap - session bootstrap: returns the token and per-variant stats.
// Must be called once before any other operation.
func (that *Handlers) Bootstrap(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Bootstrap")

	var req protocol.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := that.gameplay.Bootstrap(r.Context(), req.ParticipantID, req.Name)
	if err != nil {
		log.Error("bootstrap failed", "error", err)
		that.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (that *Handlers) StartRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "StartRoom")

	var req protocol.StartRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := that.gameplay.StartRoom(r.Context(), ParticipantID(r.Context()), req.Variant, req.RoomType)
	if err != nil {
		log.Info("start room rejected", "error", err)
		that.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Handlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "JoinRoom")

	roomID := r.URL.Query().Get("gameId")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	snapshot, err := that.gameplay.JoinRoom(r.Context(), roomID, ParticipantID(r.Context()))
	if err != nil {
		log.Info("join rejected", "roomID", roomID, "error", err)
		that.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Handlers) SubmitMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "SubmitMove")

	var req protocol.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := that.gameplay.SubmitMove(r.Context(), req.RoomID, ParticipantID(r.Context()), req.Cell)
	if err != nil {
		log.Info("move rejected", "roomID", req.RoomID, "error", err)
		that.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Handlers) ResetRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ResetRoom")

	roomID := r.URL.Query().Get("gameId")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	snapshot, err := that.gameplay.ResetRoom(r.Context(), roomID, ParticipantID(r.Context()))
	if err != nil {
		log.Info("reset rejected", "roomID", roomID, "error", err)
		that.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetStatus")

	roomID := r.URL.Query().Get("gameId")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	snapshot, err := that.gameplay.GetStatus(r.Context(), roomID, ParticipantID(r.Context()))
	if err != nil {
		log.Info("status rejected", "roomID", roomID, "error", err)
		that.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Handlers) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "LeaveRoom")

	snapshot, err := that.gameplay.LeaveRoom(r.Context(), ParticipantID(r.Context()))
	if err != nil {
		log.Info("leave rejected", "error", err)
		that.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// writeServiceError - maps service sentinels to the control channel's
// status codes: 400 recoverable, 401 session-fatal, 404/409 room-level.
func (that *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrColumnFull),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrUnknownVariant),
		errors.Is(err, apperror.ErrRoomFinished),
		errors.Is(err, apperror.ErrRoomNotFinished),
		errors.Is(err, apperror.ErrRoomNotStarted):
		writeError(w, http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, apperror.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, rootMessage(err))
	case errors.Is(err, apperror.ErrRoomFull), errors.Is(err, apperror.ErrActiveRoom):
		writeError(w, http.StatusConflict, rootMessage(err))
	case errors.Is(err, apperror.ErrParticipantNotFound), errors.Is(err, apperror.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, rootMessage(err))
	default:
		that.logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// rootMessage - the innermost error text, free of wrapping context.
func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, protocol.ErrorResponse{
		StatusCode: status,
		Message:    message,
	})
}
