package protocol

import "encoding/json"

// Push topics, one per room per event category. Fan-out is at-least-once
// and unordered across reconnects; handlers must be idempotent.
const (
	topicOpponentJoined = "oppPlayerDetails/"
	topicBoardUpdated   = "updatedGame/"
	topicRoomReset      = "resetGame/"
)

func TopicOpponentJoined(roomID string) string { return topicOpponentJoined + roomID }
func TopicBoardUpdated(roomID string) string   { return topicBoardUpdated + roomID }
func TopicRoomReset(roomID string) string      { return topicRoomReset + roomID }

// RoomTopics - all topics a participant of the room listens to.
func RoomTopics(roomID string) []string {
	return []string{
		TopicOpponentJoined(roomID),
		TopicBoardUpdated(roomID),
		TopicRoomReset(roomID),
	}
}

// Envelope is the frame the push gateway forwards to subscribers: the topic
// the payload was published under, plus the payload itself (a Snapshot).
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// RoomType distinguishes rooms against a human opponent from rooms against
// the server-side bot.
const (
	RoomTypeVersus = "versus"
	RoomTypeBot    = "bot"
)

// BootstrapRequest - session bootstrap; the only unauthenticated call.
type BootstrapRequest struct {
	ParticipantID string `json:"participant_id,omitempty"`
	Name          string `json:"name,omitempty"`
}

// VariantStats - per-variant lifetime counters for one participant.
type VariantStats struct {
	GamesPlayed int `json:"games_played"`
	GamesWon    int `json:"games_won"`
	GamesLost   int `json:"games_lost"`
}

// BootstrapResponse carries the session token attached to every later
// control call. The token is not bound to a room and survives across rooms.
type BootstrapResponse struct {
	AuthToken string                   `json:"auth_token"`
	Profile   PlayerInfo               `json:"profile"`
	Stats     map[Variant]VariantStats `json:"stats"`
}

// StartRoomRequest - create a room; the caller becomes the first side.
type StartRoomRequest struct {
	Variant  Variant `json:"variant"`
	RoomType string  `json:"room_type,omitempty"`
}

// MoveRequest - submit a move. For the drop-style variant Cell.Row is
// ignored on the way in; the server computes the landing row.
type MoveRequest struct {
	RoomID string `json:"room_id"`
	Cell   Cell   `json:"cell"`
}

// ErrorResponse - control channel failure body.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}
