package service

import (
	"errors"
	"math/rand"

	"github.com/gridroom/gridroom-backend/internal/entity"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// BotService picks the answering move for rooms played against the server.
type BotService interface {
	ChooseMove(room *entity.Room) (protocol.Cell, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

func (that *botService) ChooseMove(room *entity.Room) (protocol.Cell, error) {
	config := room.Variant.Spec()

	if config.DropStyle {
		available := make([]int, 0, config.Dimension)
		for col := 0; col < config.Dimension; col++ {
			if room.Board[0][col] == protocol.CellEmpty {
				available = append(available, col)
			}
		}

		if len(available) == 0 {
			return protocol.Cell{}, ErrNoAvailableMoves
		}

		return protocol.Cell{Col: available[rand.Intn(len(available))]}, nil //nolint: gosec // it's ok
	}

	available := make([]protocol.Cell, 0, config.Dimension*config.Dimension)
	for row := range room.Board {
		for col, mark := range room.Board[row] {
			if mark == protocol.CellEmpty {
				available = append(available, protocol.Cell{Row: row, Col: col})
			}
		}
	}

	if len(available) == 0 {
		return protocol.Cell{}, ErrNoAvailableMoves
	}

	return available[rand.Intn(len(available))], nil //nolint: gosec // it's ok
}
