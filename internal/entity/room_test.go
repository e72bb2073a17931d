package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridroom/gridroom-backend/internal/apperror"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

func newOngoingRoom(t *testing.T, variant protocol.Variant) *Room {
	t.Helper()

	room := NewRoom("ROOM01", variant, protocol.RoomTypeVersus)
	room.Players = append(room.Players, &Participant{ID: "p1", Side: protocol.SideFirst, RoomID: room.ID})

	err := room.Join(&Participant{ID: "p2"})
	require.NoError(t, err)

	return room
}

func TestRoomStatusMethods(t *testing.T) {
	t.Run("IsWaiting returns true for a fresh room", func(t *testing.T) {
		// Given: a freshly created room
		room := NewRoom("ROOM01", protocol.VariantTicTacToe, protocol.RoomTypeVersus)

		// Then: it is waiting, not ongoing, not finished
		assert.True(t, room.IsWaiting())
		assert.False(t, room.IsOngoing())
		assert.False(t, room.IsFinished())
	})

	t.Run("IsWithBot reflects the room type", func(t *testing.T) {
		// Given: a bot room
		room := NewRoom("ROOM01", protocol.VariantTicTacToe, protocol.RoomTypeBot)

		// Then: it reports being a bot room
		assert.True(t, room.IsWithBot())
	})
}

func TestRoom_ConfirmOngoingState(t *testing.T) {
	t.Run("Returns nil when room is ongoing", func(t *testing.T) {
		room := &Room{Status: protocol.StatusOngoing}

		assert.NoError(t, room.ConfirmOngoingState())
	})

	t.Run("Returns ErrRoomNotStarted when room is waiting", func(t *testing.T) {
		room := &Room{Status: protocol.StatusWaiting}

		assert.ErrorIs(t, room.ConfirmOngoingState(), apperror.ErrRoomNotStarted)
	})

	t.Run("Returns ErrRoomFinished when room is finished", func(t *testing.T) {
		room := &Room{Status: protocol.StatusFinished}

		assert.ErrorIs(t, room.ConfirmOngoingState(), apperror.ErrRoomFinished)
	})

	t.Run("Returns error for unknown room status", func(t *testing.T) {
		room := &Room{Status: "unknown"}

		err := room.ConfirmOngoingState()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownRoomStatus)
	})
}

func TestRoom_Join(t *testing.T) {
	t.Run("Second join seats the opponent and starts the match", func(t *testing.T) {
		// Given: a waiting room with one participant
		room := NewRoom("ROOM01", protocol.VariantTicTacToe, protocol.RoomTypeVersus)
		room.Players = append(room.Players, &Participant{ID: "p1", Side: protocol.SideFirst, RoomID: room.ID})
		revisionBefore := room.Revision

		// When: a second participant joins
		joiner := &Participant{ID: "p2"}
		err := room.Join(joiner)

		// Then: the room is ongoing, the joiner holds the second side
		require.NoError(t, err)
		assert.True(t, room.IsOngoing())
		assert.Equal(t, protocol.SideSecond, joiner.Side)
		assert.Equal(t, room.ID, joiner.RoomID)
		assert.Greater(t, room.Revision, revisionBefore)
	})

	t.Run("Third join is rejected with ErrRoomFull", func(t *testing.T) {
		// Given: a room with both seats taken
		room := newOngoingRoom(t, protocol.VariantTicTacToe)

		// When: a third participant tries to join
		err := room.Join(&Participant{ID: "p3"})

		// Then: the join is rejected
		assert.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Len(t, room.Players, 2)
	})
}

func TestRoom_ApplyMove_TicTacToe(t *testing.T) {
	t.Run("Accepted move places the mark and passes the turn", func(t *testing.T) {
		// Given: an ongoing 3x3 room with the first side to move
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		revisionBefore := room.Revision

		// When: the first side plays the center
		target, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 1, Col: 1})

		// Then: the mark lands, the turn passes, the revision advances
		require.NoError(t, err)
		assert.Equal(t, protocol.Cell{Row: 1, Col: 1}, target)
		assert.Equal(t, protocol.CellFirst, room.Board[1][1])
		assert.Equal(t, protocol.SideSecond, room.Turn)
		assert.Equal(t, revisionBefore+1, room.Revision)
	})

	t.Run("Out-of-turn move is rejected and changes nothing", func(t *testing.T) {
		// Given: an ongoing room with the first side to move
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		revisionBefore := room.Revision

		// When: the second side tries to move
		_, err := room.ApplyMove(protocol.SideSecond, protocol.Cell{Row: 0, Col: 0})

		// Then: the move is rejected without touching the board
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, protocol.CellEmpty, room.Board[0][0])
		assert.Equal(t, revisionBefore, room.Revision)
	})

	t.Run("Occupied cell is rejected", func(t *testing.T) {
		room := newOngoingRoom(t, protocol.VariantTicTacToe)

		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 0, Col: 0})
		require.NoError(t, err)

		_, err = room.ApplyMove(protocol.SideSecond, protocol.Cell{Row: 0, Col: 0})
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Out-of-bounds cell is rejected", func(t *testing.T) {
		room := newOngoingRoom(t, protocol.VariantTicTacToe)

		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 3, Col: 0})
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)

		_, err = room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 0, Col: -1})
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Move on a waiting room is rejected", func(t *testing.T) {
		room := NewRoom("ROOM01", protocol.VariantTicTacToe, protocol.RoomTypeVersus)

		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 0, Col: 0})
		assert.ErrorIs(t, err, apperror.ErrRoomNotStarted)
	})

	t.Run("Completing a row finishes the room and decorates the run", func(t *testing.T) {
		// Given: the first side about to complete the top row
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		moves := []struct {
			side protocol.Side
			cell protocol.Cell
		}{
			{protocol.SideFirst, protocol.Cell{Row: 0, Col: 0}},
			{protocol.SideSecond, protocol.Cell{Row: 1, Col: 0}},
			{protocol.SideFirst, protocol.Cell{Row: 0, Col: 1}},
			{protocol.SideSecond, protocol.Cell{Row: 1, Col: 1}},
		}
		for _, move := range moves {
			_, err := room.ApplyMove(move.side, move.cell)
			require.NoError(t, err)
		}

		// When: the winning mark is placed
		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 0, Col: 2})

		// Then: the room is finished, the winner set, the run decorated
		require.NoError(t, err)
		assert.True(t, room.IsFinished())
		assert.Equal(t, protocol.SideFirst, room.Winner)
		assert.Equal(t, protocol.SideNone, room.Turn)
		assert.Len(t, room.WinningCells, 3)
		for col := 0; col < 3; col++ {
			assert.Equal(t, protocol.CellFirstWin, room.Board[0][col])
		}
	})

	t.Run("Full board without a run ends in a draw", func(t *testing.T) {
		// Given: a sequence that fills the board with no winner
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		moves := []struct {
			side protocol.Side
			cell protocol.Cell
		}{
			{protocol.SideFirst, protocol.Cell{Row: 0, Col: 0}},
			{protocol.SideSecond, protocol.Cell{Row: 0, Col: 1}},
			{protocol.SideFirst, protocol.Cell{Row: 0, Col: 2}},
			{protocol.SideSecond, protocol.Cell{Row: 1, Col: 1}},
			{protocol.SideFirst, protocol.Cell{Row: 1, Col: 0}},
			{protocol.SideSecond, protocol.Cell{Row: 1, Col: 2}},
			{protocol.SideFirst, protocol.Cell{Row: 2, Col: 1}},
			{protocol.SideSecond, protocol.Cell{Row: 2, Col: 0}},
		}
		for _, move := range moves {
			_, err := room.ApplyMove(move.side, move.cell)
			require.NoError(t, err)
		}

		// When: the last empty cell is filled
		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 2, Col: 2})

		// Then: the room finishes with no winner
		require.NoError(t, err)
		assert.True(t, room.IsFinished())
		assert.Equal(t, protocol.SideNone, room.Winner)
		assert.Empty(t, room.WinningCells)
	})

	t.Run("Move on a finished room is rejected", func(t *testing.T) {
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		room.Status = protocol.StatusFinished

		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 0, Col: 0})
		assert.ErrorIs(t, err, apperror.ErrRoomFinished)
	})
}

func TestRoom_ApplyMove_StackGrid(t *testing.T) {
	t.Run("Mark falls to the lowest empty row of the column", func(t *testing.T) {
		// Given: an ongoing 7x7 drop room
		room := newOngoingRoom(t, protocol.VariantStackGrid)

		// When: the first side drops into column 3
		target, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: -1, Col: 3})

		// Then: the mark lands on the bottom row
		require.NoError(t, err)
		assert.Equal(t, protocol.Cell{Row: 6, Col: 3}, target)
		assert.Equal(t, protocol.CellFirst, room.Board[6][3])
	})

	t.Run("Marks stack upward within a column", func(t *testing.T) {
		room := newOngoingRoom(t, protocol.VariantStackGrid)

		first, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: -1, Col: 0})
		require.NoError(t, err)
		second, err := room.ApplyMove(protocol.SideSecond, protocol.Cell{Row: -1, Col: 0})
		require.NoError(t, err)

		assert.Equal(t, 6, first.Row)
		assert.Equal(t, 5, second.Row)
	})

	t.Run("Full column is rejected with ErrColumnFull", func(t *testing.T) {
		// Given: column 0 filled to the top
		room := newOngoingRoom(t, protocol.VariantStackGrid)
		side := protocol.SideFirst
		for i := 0; i < 7; i++ {
			_, err := room.ApplyMove(side, protocol.Cell{Row: -1, Col: 0})
			require.NoError(t, err)
			side = side.Opponent()
		}

		// When: another drop targets the same column
		_, err := room.ApplyMove(side, protocol.Cell{Row: -1, Col: 0})

		// Then: the drop is rejected
		assert.ErrorIs(t, err, apperror.ErrColumnFull)
	})

	t.Run("Out-of-bounds column is rejected", func(t *testing.T) {
		room := newOngoingRoom(t, protocol.VariantStackGrid)

		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: -1, Col: 7})
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Four in a column wins", func(t *testing.T) {
		// Given: the first side stacking column 2, the second wasting moves
		room := newOngoingRoom(t, protocol.VariantStackGrid)
		for i := 0; i < 3; i++ {
			_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: -1, Col: 2})
			require.NoError(t, err)
			_, err = room.ApplyMove(protocol.SideSecond, protocol.Cell{Row: -1, Col: 5})
			require.NoError(t, err)
		}

		// When: the fourth mark lands in the column
		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: -1, Col: 2})

		// Then: the room finishes with a decorated vertical run
		require.NoError(t, err)
		assert.True(t, room.IsFinished())
		assert.Equal(t, protocol.SideFirst, room.Winner)
		assert.Len(t, room.WinningCells, 4)
		for row := 3; row <= 6; row++ {
			assert.Equal(t, protocol.CellFirstWin, room.Board[row][2])
		}
	})

	t.Run("Rising diagonal of four wins", func(t *testing.T) {
		// Given: a staircase built for the first side
		room := newOngoingRoom(t, protocol.VariantStackGrid)
		room.Board = [][]int{
			{0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0},
			{0, 0, 1, 2, 0, 0, 0},
			{0, 1, 2, 1, 0, 0, 0},
			{1, 2, 1, 2, 0, 0, 0},
		}

		// When: the first side drops onto the top of the staircase
		target, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: -1, Col: 3})

		// Then: the diagonal through the landing cell wins
		require.NoError(t, err)
		assert.Equal(t, protocol.Cell{Row: 3, Col: 3}, target)
		assert.True(t, room.IsFinished())
		assert.Equal(t, protocol.SideFirst, room.Winner)
		assert.Len(t, room.WinningCells, 4)
	})
}

func TestRoom_Reset(t *testing.T) {
	t.Run("Reset on a finished room starts a fresh match", func(t *testing.T) {
		// Given: a finished room with marks on the board
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		room.Board[0][0] = protocol.CellFirstWin
		room.Status = protocol.StatusFinished
		room.Winner = protocol.SideFirst
		room.WinningCells = []protocol.Cell{{Row: 0, Col: 0}}
		revisionBefore := room.Revision

		// When: the room is reset
		err := room.Reset()

		// Then: the board is empty, the first side moves, revision advances
		require.NoError(t, err)
		assert.True(t, room.IsOngoing())
		assert.Equal(t, protocol.SideFirst, room.Turn)
		assert.Equal(t, protocol.SideNone, room.Winner)
		assert.Empty(t, room.WinningCells)
		assert.Equal(t, protocol.CellEmpty, room.Board[0][0])
		assert.Equal(t, revisionBefore+1, room.Revision)
		assert.Len(t, room.Players, 2)
	})

	t.Run("Reset on an ongoing room is rejected", func(t *testing.T) {
		room := newOngoingRoom(t, protocol.VariantTicTacToe)

		err := room.Reset()
		assert.ErrorIs(t, err, apperror.ErrRoomNotFinished)
	})
}

func TestRoom_Snapshot(t *testing.T) {
	t.Run("Snapshot carries the full room state and both players", func(t *testing.T) {
		// Given: an ongoing room with one move played
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		_, err := room.ApplyMove(protocol.SideFirst, protocol.Cell{Row: 1, Col: 1})
		require.NoError(t, err)

		// When: taking a snapshot
		snapshot := room.Snapshot()

		// Then: it mirrors the room
		assert.Equal(t, room.ID, snapshot.RoomID)
		assert.Equal(t, room.Variant, snapshot.Variant)
		assert.Equal(t, room.Turn, snapshot.Turn)
		assert.Equal(t, room.Status, snapshot.Status)
		assert.Equal(t, room.Revision, snapshot.Revision)
		require.NotNil(t, snapshot.Player1)
		require.NotNil(t, snapshot.Player2)
		assert.Equal(t, "p1", snapshot.Player1.ID)
		assert.Equal(t, "p2", snapshot.Player2.ID)
	})

	t.Run("Snapshot board is detached from the room board", func(t *testing.T) {
		// Given: a snapshot of an ongoing room
		room := newOngoingRoom(t, protocol.VariantTicTacToe)
		snapshot := room.Snapshot()

		// When: the room board changes afterwards
		room.Board[0][0] = protocol.CellFirst

		// Then: the snapshot keeps the old value
		assert.Equal(t, protocol.CellEmpty, snapshot.Board[0][0])
	})
}
