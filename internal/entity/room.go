package entity

import (
	"fmt"

	"github.com/gridroom/gridroom-backend/internal/apperror"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

var ErrUnknownRoomStatus = fmt.Errorf("unknown room status")

// Room is the authoritative server-side state of one match. The client's
// local view is only a cache of the latest Snapshot taken from it.
type Room struct {
	ID           string           `json:"id"`
	Variant      protocol.Variant `json:"variant"`
	Type         string           `json:"type,omitempty"`
	Board        [][]int          `json:"board"`
	Turn         protocol.Side    `json:"turn"`
	Status       string           `json:"status"`
	Winner       protocol.Side    `json:"winner,omitempty"`
	WinningCells []protocol.Cell  `json:"winning_cells,omitempty"`
	Revision     uint64           `json:"revision"`
	Players      []*Participant   `json:"players,omitempty"`
}

func NewRoom(id string, variant protocol.Variant, roomType string) *Room {
	config := variant.Spec()

	return &Room{
		ID:      id,
		Variant: variant,
		Type:    roomType,
		Board:   emptyBoard(config.Dimension),
		Turn:    protocol.SideFirst,
		Status:  protocol.StatusWaiting,
	}
}

func emptyBoard(dimension int) [][]int {
	board := make([][]int, dimension)
	for row := range board {
		board[row] = make([]int, dimension)
	}
	return board
}

func (that *Room) IsFinished() bool {
	return that.Status == protocol.StatusFinished
}

func (that *Room) IsOngoing() bool {
	return that.Status == protocol.StatusOngoing
}

func (that *Room) IsWaiting() bool {
	return that.Status == protocol.StatusWaiting
}

func (that *Room) IsWithBot() bool {
	return that.Type == protocol.RoomTypeBot
}

func (that *Room) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrRoomNotStarted
	case that.IsFinished():
		return apperror.ErrRoomFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRoomStatus, that.Status)
	}
}

// Join - adds the second participant and starts the match.
// A third join attempt is rejected.
func (that *Room) Join(participant *Participant) error {
	if len(that.Players) >= 2 {
		return apperror.ErrRoomFull
	}

	participant.RoomID = that.ID
	participant.Side = protocol.SideSecond

	that.Players = append(that.Players, participant)
	that.Status = protocol.StatusOngoing
	that.Revision++

	return nil
}

// ApplyMove - validates and applies one move for the given side, returning
// the cell the mark actually landed on. For the drop-style variant the
// caller supplies the column only; the landing row is computed here and is
// authoritative.
func (that *Room) ApplyMove(side protocol.Side, cell protocol.Cell) (protocol.Cell, error) {
	if err := that.ConfirmOngoingState(); err != nil {
		return protocol.Cell{}, err
	}

	if that.Turn != side {
		return protocol.Cell{}, apperror.ErrNotYourTurn
	}

	config := that.Variant.Spec()

	target, err := that.resolveCell(cell, config)
	if err != nil {
		return protocol.Cell{}, err
	}

	that.Board[target.Row][target.Col] = int(side)
	that.concludeMove(side, target, config)
	that.Revision++

	return target, nil
}

func (that *Room) resolveCell(cell protocol.Cell, config protocol.VariantSpec) (protocol.Cell, error) {
	if cell.Col < 0 || cell.Col >= config.Dimension {
		return protocol.Cell{}, fmt.Errorf("%w: column %d", apperror.ErrInvalidCell, cell.Col)
	}

	if config.DropStyle {
		for row := config.Dimension - 1; row >= 0; row-- {
			if that.Board[row][cell.Col] == protocol.CellEmpty {
				return protocol.Cell{Row: row, Col: cell.Col}, nil
			}
		}
		return protocol.Cell{}, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, cell.Col)
	}

	if cell.Row < 0 || cell.Row >= config.Dimension {
		return protocol.Cell{}, fmt.Errorf("%w: row %d", apperror.ErrInvalidCell, cell.Row)
	}

	if that.Board[cell.Row][cell.Col] != protocol.CellEmpty {
		return protocol.Cell{}, apperror.ErrCellOccupied
	}

	return cell, nil
}

// concludeMove - checks the board after a placed mark and either finishes
// the match or passes the turn to the other side.
func (that *Room) concludeMove(side protocol.Side, at protocol.Cell, config protocol.VariantSpec) {
	if run := that.findWinningRun(side, at, config); run != nil {
		that.Winner = side
		that.WinningCells = run
		that.Status = protocol.StatusFinished
		that.Turn = protocol.SideNone

		marker := protocol.CellFirstWin
		if side == protocol.SideSecond {
			marker = protocol.CellSecondWin
		}
		for _, cell := range run {
			that.Board[cell.Row][cell.Col] = marker
		}
		return
	}

	if that.boardFull(config) {
		that.Winner = protocol.SideNone
		that.Status = protocol.StatusFinished
		that.Turn = protocol.SideNone
		return
	}

	that.Turn = side.Opponent()
}

var runDirections = [4][2]int{
	{0, 1},  // row
	{1, 0},  // column
	{1, 1},  // falling diagonal
	{1, -1}, // rising diagonal
}

// findWinningRun - collects the contiguous run of the side's marks through
// the placed cell in each direction; returns it when long enough.
func (that *Room) findWinningRun(side protocol.Side, at protocol.Cell, config protocol.VariantSpec) []protocol.Cell {
	mark := int(side)

	for _, direction := range runDirections {
		run := []protocol.Cell{at}

		for _, sign := range [2]int{1, -1} {
			row, col := at.Row+direction[0]*sign, at.Col+direction[1]*sign
			for row >= 0 && row < config.Dimension && col >= 0 && col < config.Dimension && that.Board[row][col] == mark {
				run = append(run, protocol.Cell{Row: row, Col: col})
				row += direction[0] * sign
				col += direction[1] * sign
			}
		}

		if len(run) >= config.WinLength {
			return run
		}
	}

	return nil
}

func (that *Room) boardFull(config protocol.VariantSpec) bool {
	for row := range that.Board {
		for col := range that.Board[row] {
			if that.Board[row][col] == protocol.CellEmpty {
				return false
			}
		}
	}
	return true
}

// Reset - starts a fresh match in the same room, keeping both participants.
// Only valid once the previous match has finished.
func (that *Room) Reset() error {
	if !that.IsFinished() {
		return apperror.ErrRoomNotFinished
	}

	config := that.Variant.Spec()

	that.Board = emptyBoard(config.Dimension)
	that.Turn = protocol.SideFirst
	that.Status = protocol.StatusOngoing
	that.Winner = protocol.SideNone
	that.WinningCells = nil
	that.Revision++

	return nil
}

// ParticipantBySide - returns the participant playing the given side.
func (that *Room) ParticipantBySide(side protocol.Side) *Participant {
	for _, participant := range that.Players {
		if participant.Side == side {
			return participant
		}
	}
	return nil
}

// Snapshot - the complete wire-level view of the room.
func (that *Room) Snapshot() *protocol.Snapshot {
	snapshot := &protocol.Snapshot{
		RoomID:       that.ID,
		Variant:      that.Variant,
		Board:        cloneBoard(that.Board),
		Turn:         that.Turn,
		Status:       that.Status,
		Winner:       that.Winner,
		WinningCells: append([]protocol.Cell(nil), that.WinningCells...),
		Revision:     that.Revision,
	}

	if first := that.ParticipantBySide(protocol.SideFirst); first != nil {
		snapshot.Player1 = playerInfo(first)
	}
	if second := that.ParticipantBySide(protocol.SideSecond); second != nil {
		snapshot.Player2 = playerInfo(second)
	}

	return snapshot
}

func playerInfo(participant *Participant) *protocol.PlayerInfo {
	return &protocol.PlayerInfo{
		ID:   participant.ID,
		Name: participant.Name,
		Side: participant.Side,
		Bot:  participant.Bot,
	}
}

func cloneBoard(board [][]int) [][]int {
	clone := make([][]int, len(board))
	for row := range board {
		clone[row] = append([]int(nil), board[row]...)
	}
	return clone
}
