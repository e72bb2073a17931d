package entity

import (
	"github.com/google/uuid"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

type Participant struct {
	ID     string        `json:"id"`
	Name   string        `json:"name,omitempty"`
	Side   protocol.Side `json:"side,omitempty"`
	RoomID string        `json:"room_id,omitempty"`
	Bot    bool          `json:"bot,omitempty"`
}

func (that *Participant) IsBot() bool {
	return that.Bot
}

// LeaveRoom - detaches the participant from its room.
func (that *Participant) LeaveRoom() {
	that.RoomID = ""
	that.Side = protocol.SideNone
}

// NewBotParticipant - creates the server-side bot opponent for a room.
func NewBotParticipant(roomID string) *Participant {
	return &Participant{
		ID:     "bot:" + uuid.NewString(),
		Name:   "Bot",
		RoomID: roomID,
		Bot:    true,
	}
}
