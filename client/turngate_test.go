package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

func playableState(variant protocol.Variant, turn protocol.Side) SessionState {
	spec := variant.Spec()

	board := make([][]int, spec.Dimension)
	for row := range board {
		board[row] = make([]int, spec.Dimension)
	}

	return SessionState{
		Phase:     PhaseInProgress,
		LocalSide: protocol.SideFirst,
		Snapshot: &protocol.Snapshot{
			RoomID:  "ROOM01",
			Variant: variant,
			Board:   board,
			Turn:    turn,
			Status:  protocol.StatusOngoing,
		},
	}
}

func TestTurnGate_Admit(t *testing.T) {
	t.Run("Legal move on own turn is admitted", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantTicTacToe, protocol.SideFirst)

		err := gate.Admit(state, protocol.Cell{Row: 1, Col: 1})

		assert.NoError(t, err)
	})

	t.Run("Second admit while one is in flight is refused", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantTicTacToe, protocol.SideFirst)

		require.NoError(t, gate.Admit(state, protocol.Cell{Row: 0, Col: 0}))

		// When: another move is attempted before Release
		err := gate.Admit(state, protocol.Cell{Row: 1, Col: 1})

		// Then: the gate holds it back
		assert.ErrorIs(t, err, ErrMoveInFlight)
	})

	t.Run("Release frees the slot for the next move", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantTicTacToe, protocol.SideFirst)

		require.NoError(t, gate.Admit(state, protocol.Cell{Row: 0, Col: 0}))
		gate.Release()

		assert.NoError(t, gate.Admit(state, protocol.Cell{Row: 1, Col: 1}))
	})

	t.Run("Move out of turn is refused without claiming the slot", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantTicTacToe, protocol.SideSecond)

		err := gate.Admit(state, protocol.Cell{Row: 0, Col: 0})
		assert.ErrorIs(t, err, ErrNotYourTurn)

		// The slot stays free for a later legal move.
		state.Snapshot.Turn = protocol.SideFirst
		assert.NoError(t, gate.Admit(state, protocol.Cell{Row: 0, Col: 0}))
	})

	t.Run("Occupied cell is refused", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantTicTacToe, protocol.SideFirst)
		state.Snapshot.Board[1][1] = protocol.CellSecond

		err := gate.Admit(state, protocol.Cell{Row: 1, Col: 1})

		assert.ErrorIs(t, err, ErrCellTaken)
	})

	t.Run("Full column is refused for the drop variant", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantStackGrid, protocol.SideFirst)
		for row := range state.Snapshot.Board {
			state.Snapshot.Board[row][2] = protocol.CellFirst
		}

		err := gate.Admit(state, protocol.Cell{Row: -1, Col: 2})

		assert.ErrorIs(t, err, ErrCellTaken)
	})

	t.Run("Partially filled column is still playable", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantStackGrid, protocol.SideFirst)
		state.Snapshot.Board[6][2] = protocol.CellSecond

		err := gate.Admit(state, protocol.Cell{Row: -1, Col: 2})

		assert.NoError(t, err)
	})

	t.Run("Finished room is not playable", func(t *testing.T) {
		gate := &TurnGate{}
		state := playableState(protocol.VariantTicTacToe, protocol.SideFirst)
		state.Phase = PhaseFinished
		state.Snapshot.Status = protocol.StatusFinished

		err := gate.Admit(state, protocol.Cell{Row: 0, Col: 0})

		assert.ErrorIs(t, err, ErrNotPlayable)
	})
}
