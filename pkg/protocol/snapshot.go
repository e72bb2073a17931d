package protocol

// Side identifies a participant's fixed role within a room.
type Side int

const (
	SideNone   Side = 0
	SideFirst  Side = 1
	SideSecond Side = 2
)

// Opponent - returns the other side.
func (that Side) Opponent() Side {
	switch that {
	case SideFirst:
		return SideSecond
	case SideSecond:
		return SideFirst
	default:
		return SideNone
	}
}

func (that Side) String() string {
	switch that {
	case SideFirst:
		return "X"
	case SideSecond:
		return "O"
	default:
		return ""
	}
}

// Board cell values. The winning markers are only ever present in a
// finished snapshot.
const (
	CellEmpty     = 0
	CellFirst     = 1
	CellSecond    = 2
	CellFirstWin  = 3
	CellSecondWin = 4
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

// Variant names the two supported board games.
type Variant string

const (
	// VariantTicTacToe is the 3x3 row+column game, win length 3.
	VariantTicTacToe Variant = "tictactoe"
	// VariantStackGrid is the 7x7 column-drop game, win length 4.
	// Moves carry the column only; the server computes the landing row.
	VariantStackGrid Variant = "stackgrid"
)

// VariantSpec is the board geometry and win rule of a variant. Both halves
// of the protocol need it: the server to arbitrate moves, the client to
// encode them and to gate obviously illegal ones locally.
type VariantSpec struct {
	Dimension int
	WinLength int

	// DropStyle means moves carry a column only and the mark falls to the
	// lowest empty row of that column, computed by the server.
	DropStyle bool
}

var variantSpecs = map[Variant]VariantSpec{
	VariantTicTacToe: {Dimension: 3, WinLength: 3, DropStyle: false},
	VariantStackGrid: {Dimension: 7, WinLength: 4, DropStyle: true},
}

// Spec - the rules for the variant. Unknown variants fall back to the
// 3x3 game.
func (that Variant) Spec() VariantSpec {
	if spec, ok := variantSpecs[that]; ok {
		return spec
	}
	return variantSpecs[VariantTicTacToe]
}

// Known - reports whether the variant is one of the two games.
func (that Variant) Known() bool {
	_, ok := variantSpecs[that]
	return ok
}

// Cell addresses one board position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PlayerInfo - a participant as seen by its room, with per-variant counters.
type PlayerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Side        Side   `json:"side"`
	GamesPlayed int    `json:"games_played"`
	GamesWon    int    `json:"games_won"`
	GamesLost   int    `json:"games_lost"`
	Bot         bool   `json:"bot,omitempty"`
}

// Snapshot is the complete authoritative room state. Every control response
// and every push event carries one; consumers replace local state with it
// wholesale instead of patching. Revision increases on every accepted
// mutation, so a stale snapshot can be detected exactly.
type Snapshot struct {
	RoomID       string      `json:"room_id"`
	Variant      Variant     `json:"variant"`
	Board        [][]int     `json:"board"`
	Turn         Side        `json:"turn"`
	Status       string      `json:"status"`
	Winner       Side        `json:"winner,omitempty"`
	WinningCells []Cell      `json:"winning_cells,omitempty"`
	Revision     uint64      `json:"revision"`
	Player1      *PlayerInfo `json:"player1,omitempty"`
	Player2      *PlayerInfo `json:"player2,omitempty"`
}

// PlayerBySide - returns the participant holding the given side, or nil.
func (that *Snapshot) PlayerBySide(side Side) *PlayerInfo {
	if that.Player1 != nil && that.Player1.Side == side {
		return that.Player1
	}
	if that.Player2 != nil && that.Player2.Side == side {
		return that.Player2
	}
	return nil
}

// PlayerByID - returns the participant with the given id, or nil.
func (that *Snapshot) PlayerByID(id string) *PlayerInfo {
	if that.Player1 != nil && that.Player1.ID == id {
		return that.Player1
	}
	if that.Player2 != nil && that.Player2.ID == id {
		return that.Player2
	}
	return nil
}
