package client

import "github.com/gridroom/gridroom-backend/pkg/protocol"

// Symbol is what the UI renders for one board cell. The winning variants
// only ever appear in a finished board.
type Symbol string

const (
	SymbolEmpty     Symbol = ""
	SymbolFirst     Symbol = "X"
	SymbolSecond    Symbol = "O"
	SymbolFirstWin  Symbol = "X!"
	SymbolSecondWin Symbol = "O!"
)

// BoardCodec translates between the server's integer board and the symbols
// the UI renders, and between UI coordinates and wire coordinates. It is
// pure: winner and board authority always come from the server.
type BoardCodec struct {
	variant protocol.Variant
}

func NewBoardCodec(variant protocol.Variant) BoardCodec {
	return BoardCodec{variant: variant}
}

// EncodeMove - turns a UI coordinate into the wire coordinate. For the
// drop-style variant only the column travels; the landing row is computed
// by the server and must never be simulated locally as authoritative.
func (that BoardCodec) EncodeMove(row, col int) protocol.Cell {
	if that.variant.Spec().DropStyle {
		return protocol.Cell{Row: -1, Col: col}
	}
	return protocol.Cell{Row: row, Col: col}
}

// DecodeBoard - renders the server's integer board.
func (that BoardCodec) DecodeBoard(board [][]int) [][]Symbol {
	rendered := make([][]Symbol, len(board))
	for row := range board {
		rendered[row] = make([]Symbol, len(board[row]))
		for col, mark := range board[row] {
			rendered[row][col] = DecodeCell(mark)
		}
	}
	return rendered
}

// DecodeCell - renders one cell value.
func DecodeCell(mark int) Symbol {
	switch mark {
	case protocol.CellFirst:
		return SymbolFirst
	case protocol.CellSecond:
		return SymbolSecond
	case protocol.CellFirstWin:
		return SymbolFirstWin
	case protocol.CellSecondWin:
		return SymbolSecondWin
	default:
		return SymbolEmpty
	}
}

// IsWinningCell - reports whether the cell carries a winning decoration.
func IsWinningCell(mark int) bool {
	return mark == protocol.CellFirstWin || mark == protocol.CellSecondWin
}

// CellOccupied - reports whether the cell already holds a mark of either
// side, decorated or not.
func CellOccupied(mark int) bool {
	return mark != protocol.CellEmpty
}
