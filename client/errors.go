package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired means the auth token was rejected. Fatal for the
	// session: the surrounding application must log the user out. Never
	// retried here.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoPersistedSession - RestoreSession found no persisted room.
	ErrNoPersistedSession = errors.New("no persisted session")

	// ErrPersistedRoomGone - the persisted room no longer exists
	// server-side; the slot has been cleared.
	ErrPersistedRoomGone = errors.New("persisted room no longer exists")

	// ErrNotBootstrapped - a control call was made before Bootstrap.
	ErrNotBootstrapped = errors.New("session is not bootstrapped")

	// ErrAlreadyInRoom - a room-entry call was made while a room is
	// attached; the current room must be exited first.
	ErrAlreadyInRoom = errors.New("already attached to a room")

	ErrMoveInFlight = errors.New("a move is already in flight")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrNotPlayable  = errors.New("room is not in progress")
	ErrCellTaken    = errors.New("cell is already occupied")
)

// CallError is a control-channel rejection the user can recover from: the
// server message is surfaced and local state is left untouched.
type CallError struct {
	StatusCode int
	Message    string
}

func (that *CallError) Error() string {
	return fmt.Sprintf("control call failed (%d): %s", that.StatusCode, that.Message)
}

// Recoverable - every control rejection except session expiry leaves the
// session usable.
func (that *CallError) Recoverable() bool {
	return that.StatusCode != http.StatusUnauthorized
}

// IsRoomGone - reports whether the error says the room no longer exists.
func IsRoomGone(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.StatusCode == http.StatusNotFound
}
