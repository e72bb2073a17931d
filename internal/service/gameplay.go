package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gridroom/gridroom-backend/internal/apperror"
	"github.com/gridroom/gridroom-backend/internal/entity"
	"github.com/gridroom/gridroom-backend/internal/pkg"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

type participantRepo interface {
	CreateOrUpdate(ctx context.Context, participant *entity.Participant) error
	GetByID(ctx context.Context, id string) (*entity.Participant, error)
}

type publisher interface {
	PublishSnapshot(ctx context.Context, topic string, snapshot *protocol.Snapshot) error
}

// GameplayService arbitrates rooms: who may join, whose turn it is, when a
// match finishes. Every mutating operation persists the room and then fans
// the fresh snapshot out to both participants.
type GameplayService interface {
	Bootstrap(ctx context.Context, participantID, name string) (*protocol.BootstrapResponse, error)

	StartRoom(ctx context.Context, participantID string, variant protocol.Variant, roomType string) (*protocol.Snapshot, error)
	JoinRoom(ctx context.Context, roomID, participantID string) (*protocol.Snapshot, error)
	SubmitMove(ctx context.Context, roomID, participantID string, cell protocol.Cell) (*protocol.Snapshot, error)
	ResetRoom(ctx context.Context, roomID, participantID string) (*protocol.Snapshot, error)
	GetStatus(ctx context.Context, roomID, participantID string) (*protocol.Snapshot, error)
	LeaveRoom(ctx context.Context, participantID string) (*protocol.Snapshot, error)
}

type gameplayService struct {
	logger *slog.Logger

	roomRepo        roomRepo
	participantRepo participantRepo
	publisher       publisher

	authService  AuthService
	botService   BotService
	statsService StatsService
}

func NewGameplayService(
	logger *slog.Logger,
	roomRepo roomRepo,
	participantRepo participantRepo,
	publisher publisher,
	authService AuthService,
	botService BotService,
	statsService StatsService,
) GameplayService {
	return &gameplayService{
		logger:          logger.With("component", "gameplay"),
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		publisher:       publisher,
		authService:     authService,
		botService:      botService,
		statsService:    statsService,
	}
}

// Bootstrap - gets or creates the participant, loads its per-variant stats
// and issues the session token every later call must carry.
func (that *gameplayService) Bootstrap(ctx context.Context, participantID, name string) (*protocol.BootstrapResponse, error) {
	participant, err := that.getOrCreateParticipant(ctx, participantID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create participant: %w", err)
	}

	token, err := that.authService.IssueToken(participant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	stats, err := that.statsService.GetStats(ctx, participant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &protocol.BootstrapResponse{
		AuthToken: token,
		Profile: protocol.PlayerInfo{
			ID:   participant.ID,
			Name: participant.Name,
			Side: participant.Side,
		},
		Stats: stats,
	}, nil
}

func (that *gameplayService) getOrCreateParticipant(ctx context.Context, participantID, name string) (*entity.Participant, error) {
	if participantID != "" {
		participant, err := that.participantRepo.GetByID(ctx, participantID)
		if err == nil {
			if name != "" && participant.Name != name {
				participant.Name = name
				if err = that.participantRepo.CreateOrUpdate(ctx, participant); err != nil {
					return nil, fmt.Errorf("failed to update participant: %w", err)
				}
			}
			return participant, nil
		}

		if !errors.Is(err, apperror.ErrParticipantNotFound) {
			return nil, fmt.Errorf("failed to get participant: %w", err)
		}
	}

	participant := &entity.Participant{
		ID:   uuid.NewString(),
		Name: name,
	}

	if err := that.participantRepo.CreateOrUpdate(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	return participant, nil
}

// StartRoom - creates a room with the caller as the first side. A
// participant may hold at most one open room at a time.
func (that *gameplayService) StartRoom(ctx context.Context, participantID string, variant protocol.Variant, roomType string) (*protocol.Snapshot, error) {
	if !variant.Known() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownVariant, variant)
	}

	participant, err := that.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if err = that.confirmNoActiveRoom(ctx, participant); err != nil {
		return nil, err
	}

	roomID, err := pkg.GenerateRoomCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	if roomType == "" {
		roomType = protocol.RoomTypeVersus
	}

	room := entity.NewRoom(roomID, variant, roomType)

	participant.RoomID = roomID
	participant.Side = protocol.SideFirst
	room.Players = []*entity.Participant{participant}

	if room.IsWithBot() {
		if err = room.Join(entity.NewBotParticipant(roomID)); err != nil {
			return nil, fmt.Errorf("failed to seat bot: %w", err)
		}
	}

	if err = that.participantRepo.CreateOrUpdate(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.logger.Info("room created", "roomID", roomID, "variant", variant, "type", roomType)

	return that.enrichSnapshot(ctx, room.Snapshot()), nil
}

// confirmNoActiveRoom - enforces the single-active-room-per-participant
// rule. A stale pointer to a room that no longer exists is cleared instead
// of blocking the participant forever.
func (that *gameplayService) confirmNoActiveRoom(ctx context.Context, participant *entity.Participant) error {
	if participant.RoomID == "" {
		return nil
	}

	_, err := that.roomRepo.GetByID(ctx, participant.RoomID)
	if err == nil {
		return fmt.Errorf("%w: room %s", apperror.ErrActiveRoom, participant.RoomID)
	}

	if !errors.Is(err, apperror.ErrRoomNotFound) {
		return fmt.Errorf("failed to check active room: %w", err)
	}

	participant.LeaveRoom()

	return nil
}

// JoinRoom - seats the caller as the second side and notifies the creator
// through the opponent-joined topic. Joining a room the caller already
// occupies returns the current snapshot unchanged.
func (that *gameplayService) JoinRoom(ctx context.Context, roomID, participantID string) (*protocol.Snapshot, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	participant, err := that.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if participant.RoomID == room.ID {
		return that.enrichSnapshot(ctx, room.Snapshot()), nil
	}

	if err = room.Join(participant); err != nil {
		return nil, err
	}

	if err = that.participantRepo.CreateOrUpdate(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	snapshot := that.enrichSnapshot(ctx, room.Snapshot())
	that.publish(ctx, protocol.TopicOpponentJoined(room.ID), snapshot)

	that.logger.Info("participant joined room", "roomID", room.ID, "participantID", participant.ID)

	return snapshot, nil
}

// SubmitMove - applies one move for the caller's side. In a bot room the
// bot answers within the same call, so the client only ever sees ordinary
// snapshots. The fresh snapshot is fanned out on the board-updated topic.
func (that *gameplayService) SubmitMove(ctx context.Context, roomID, participantID string, cell protocol.Cell) (*protocol.Snapshot, error) {
	room, participant, err := that.getRoomMember(ctx, roomID, participantID)
	if err != nil {
		return nil, err
	}

	if _, err = room.ApplyMove(participant.Side, cell); err != nil {
		return nil, err
	}

	if room.IsOngoing() && room.IsWithBot() {
		if err = that.makeBotMove(room); err != nil {
			return nil, fmt.Errorf("bot failed to move: %w", err)
		}
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	if room.IsFinished() {
		if err = that.statsService.RecordFinishedRoom(ctx, room); err != nil {
			that.logger.Error("failed to record stats", "roomID", room.ID, "error", err)
		}
	}

	snapshot := that.enrichSnapshot(ctx, room.Snapshot())
	that.publish(ctx, protocol.TopicBoardUpdated(room.ID), snapshot)

	return snapshot, nil
}

func (that *gameplayService) makeBotMove(room *entity.Room) error {
	bot := room.ParticipantBySide(room.Turn)
	if bot == nil || !bot.IsBot() {
		return nil
	}

	cell, err := that.botService.ChooseMove(room)
	if err != nil {
		return fmt.Errorf("failed to choose move: %w", err)
	}

	if _, err = room.ApplyMove(bot.Side, cell); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	return nil
}

// ResetRoom - starts a rematch in a finished room and fans the cleared
// snapshot out on the room-reset topic.
func (that *gameplayService) ResetRoom(ctx context.Context, roomID, participantID string) (*protocol.Snapshot, error) {
	room, _, err := that.getRoomMember(ctx, roomID, participantID)
	if err != nil {
		return nil, err
	}

	if err = room.Reset(); err != nil {
		return nil, err
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	snapshot := that.enrichSnapshot(ctx, room.Snapshot())
	that.publish(ctx, protocol.TopicRoomReset(room.ID), snapshot)

	that.logger.Info("room reset", "roomID", room.ID)

	return snapshot, nil
}

// GetStatus - the full authoritative snapshot; the client's recovery path
// after a reload or a push-channel reconnect.
func (that *gameplayService) GetStatus(ctx context.Context, roomID, participantID string) (*protocol.Snapshot, error) {
	room, _, err := that.getRoomMember(ctx, roomID, participantID)
	if err != nil {
		return nil, err
	}

	return that.enrichSnapshot(ctx, room.Snapshot()), nil
}

// LeaveRoom - removes the caller from its room. An unfinished match counts
// as a forfeit: the opponent wins and both participants are notified with a
// final finished snapshot before the room is deleted.
func (that *gameplayService) LeaveRoom(ctx context.Context, participantID string) (*protocol.Snapshot, error) {
	participant, err := that.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if participant.RoomID == "" {
		return nil, apperror.ErrRoomNotFound
	}

	room, err := that.roomRepo.GetByID(ctx, participant.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if !room.IsFinished() {
		room.Status = protocol.StatusFinished
		room.Turn = protocol.SideNone
		room.Winner = participant.Side.Opponent()
		room.Revision++

		if len(room.Players) == 2 {
			if err = that.statsService.RecordFinishedRoom(ctx, room); err != nil {
				that.logger.Error("failed to record stats", "roomID", room.ID, "error", err)
			}
		}
	}

	snapshot := that.enrichSnapshot(ctx, room.Snapshot())

	if err = that.roomRepo.DeleteByID(ctx, room.ID); err != nil {
		that.logger.Error("failed to delete room", "roomID", room.ID, "error", err)
	}

	for _, member := range room.Players {
		if member.IsBot() {
			continue
		}

		member.LeaveRoom()
		if err = that.participantRepo.CreateOrUpdate(ctx, member); err != nil {
			that.logger.Error("failed to update participant", "participantID", member.ID, "error", err)
		}
	}

	that.publish(ctx, protocol.TopicBoardUpdated(room.ID), snapshot)

	that.logger.Info("participant left room", "roomID", room.ID, "participantID", participantID)

	return snapshot, nil
}

func (that *gameplayService) getRoomMember(ctx context.Context, roomID, participantID string) (*entity.Room, *entity.Participant, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get room: %w", err)
	}

	participant, err := that.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if participant.RoomID != room.ID {
		return nil, nil, fmt.Errorf("%w: participant %s is not in room %s", apperror.ErrRoomNotFound, participantID, roomID)
	}

	return room, participant, nil
}

// enrichSnapshot - fills both participants' lifetime counters so profiles
// are refreshed together with every snapshot.
func (that *gameplayService) enrichSnapshot(ctx context.Context, snapshot *protocol.Snapshot) *protocol.Snapshot {
	for _, player := range []*protocol.PlayerInfo{snapshot.Player1, snapshot.Player2} {
		if player == nil || player.Bot {
			continue
		}

		stats, err := that.statsService.GetStats(ctx, player.ID)
		if err != nil {
			that.logger.Error("failed to load stats", "participantID", player.ID, "error", err)
			continue
		}

		if entry, ok := stats[snapshot.Variant]; ok {
			player.GamesPlayed = entry.GamesPlayed
			player.GamesWon = entry.GamesWon
			player.GamesLost = entry.GamesLost
		}
	}

	return snapshot
}

func (that *gameplayService) publish(ctx context.Context, topic string, snapshot *protocol.Snapshot) {
	if err := that.publisher.PublishSnapshot(ctx, topic, snapshot); err != nil {
		that.logger.Error("failed to publish snapshot", "topic", topic, "error", err)
	}
}
