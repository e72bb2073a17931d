package client

import (
	"sync"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

// TurnGate serializes move submission: at most one move may be in flight,
// and a move is only admitted when it is locally legal against the last
// known snapshot. The server remains the arbiter; the gate just refuses
// round trips that are certain to fail.
type TurnGate struct {
	mu       sync.Mutex
	inFlight bool
}

// Admit - checks local legality and claims the in-flight slot. The caller
// must Release once the server has answered, whatever the outcome.
func (that *TurnGate) Admit(state SessionState, cell protocol.Cell) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.inFlight {
		return ErrMoveInFlight
	}

	if err := checkLegal(state, cell); err != nil {
		return err
	}

	that.inFlight = true

	return nil
}

// Release - frees the in-flight slot claimed by Admit.
func (that *TurnGate) Release() {
	that.mu.Lock()
	that.inFlight = false
	that.mu.Unlock()
}

func checkLegal(state SessionState, cell protocol.Cell) error {
	if state.Phase != PhaseInProgress || state.Snapshot == nil {
		return ErrNotPlayable
	}

	if state.Snapshot.Turn != state.LocalSide {
		return ErrNotYourTurn
	}

	spec := state.Snapshot.Variant.Spec()

	if cell.Col < 0 || cell.Col >= spec.Dimension {
		return ErrCellTaken
	}

	if spec.DropStyle {
		// Column is playable while its top row is still empty.
		if state.Snapshot.Board[0][cell.Col] != protocol.CellEmpty {
			return ErrCellTaken
		}
		return nil
	}

	if cell.Row < 0 || cell.Row >= spec.Dimension {
		return ErrCellTaken
	}

	if state.Snapshot.Board[cell.Row][cell.Col] != protocol.CellEmpty {
		return ErrCellTaken
	}

	return nil
}
