package apperror

import "errors"

var (
	ErrRoomFinished    = errors.New("room is already finished")
	ErrRoomNotFinished = errors.New("room is not finished yet")
	ErrRoomNotStarted  = errors.New("room is not started")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room already has two participants")
	ErrActiveRoom      = errors.New("participant already has an open room")

	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrColumnFull     = errors.New("column is full")
	ErrInvalidCell    = errors.New("invalid cell")
	ErrUnknownVariant = errors.New("unknown game variant")

	ErrParticipantNotFound = errors.New("participant not found")
	ErrTokenInvalid        = errors.New("auth token is invalid or expired")
)
