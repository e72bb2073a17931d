package rest

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const participantIDKey contextKey = "participantID"

// requireToken - verifies the Bearer token and injects the participant id
// into the request context. A missing or bad token is session-fatal for
// the caller (401, never retried by the client).
func (that *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := that.logger.With("method", "requireToken")

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		participantID, err := that.auth.VerifyToken(token)
		if err != nil {
			log.Info("rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, "auth token is invalid or expired")
			return
		}

		ctx := context.WithValue(r.Context(), participantIDKey, participantID)
		next(w, r.WithContext(ctx))
	}
}

// ParticipantID - the authenticated caller's id, set by requireToken.
func ParticipantID(ctx context.Context) string {
	id, _ := ctx.Value(participantIDKey).(string)
	return id
}
