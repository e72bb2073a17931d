package client

import "github.com/gridroom/gridroom-backend/pkg/protocol"

// Phase is the session lifecycle as the client experiences it.
type Phase int

const (
	// PhaseIdle - no room attached.
	PhaseIdle Phase = iota
	// PhaseConnecting - a control call to enter a room is in flight.
	PhaseConnecting
	// PhaseAwaitingOpponent - the room exists but the second seat is empty.
	PhaseAwaitingOpponent
	// PhaseInProgress - both seats taken, moves are being exchanged.
	PhaseInProgress
	// PhaseFinished - the room concluded with a win or a draw.
	PhaseFinished
	// PhaseReconnecting - resuming a persisted room, or the push channel
	// dropped; state may be stale until the next reconciliation.
	PhaseReconnecting
)

func (that Phase) String() string {
	switch that {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseAwaitingOpponent:
		return "awaiting-opponent"
	case PhaseInProgress:
		return "in-progress"
	case PhaseFinished:
		return "finished"
	case PhaseReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// SessionState is an immutable view of the session at one revision.
// Snapshot is nil while PhaseIdle or PhaseConnecting.
type SessionState struct {
	Phase     Phase
	LocalSide protocol.Side
	Snapshot  *protocol.Snapshot
}

// IsLocalTurn reports whether the local participant may move now.
func (that SessionState) IsLocalTurn() bool {
	return that.Phase == PhaseInProgress &&
		that.Snapshot != nil &&
		that.Snapshot.Turn == that.LocalSide
}

// phaseForStatus maps a room status onto the client lifecycle.
func phaseForStatus(status string) Phase {
	switch status {
	case protocol.StatusWaiting:
		return PhaseAwaitingOpponent
	case protocol.StatusOngoing:
		return PhaseInProgress
	case protocol.StatusFinished:
		return PhaseFinished
	default:
		return PhaseIdle
	}
}
