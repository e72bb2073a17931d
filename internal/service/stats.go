package service

import (
	"context"
	"fmt"

	"github.com/gridroom/gridroom-backend/internal/entity"
	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

type statsRepo interface {
	GetByParticipant(ctx context.Context, participantID string) (map[protocol.Variant]protocol.VariantStats, error)
	RecordResult(ctx context.Context, participantID string, variant protocol.Variant, won, lost bool) error
}

// StatsService keeps the per-variant lifetime counters that are refreshed
// after every finished match.
type StatsService interface {
	GetStats(ctx context.Context, participantID string) (map[protocol.Variant]protocol.VariantStats, error)
	RecordFinishedRoom(ctx context.Context, room *entity.Room) error
}

type statsService struct {
	statsRepo statsRepo
}

func NewStatsService(statsRepo statsRepo) StatsService {
	return &statsService{
		statsRepo: statsRepo,
	}
}

func (that *statsService) GetStats(ctx context.Context, participantID string) (map[protocol.Variant]protocol.VariantStats, error) {
	stats, err := that.statsRepo.GetByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// RecordFinishedRoom - bumps counters for every human participant of a
// finished room. A draw counts as played only.
func (that *statsService) RecordFinishedRoom(ctx context.Context, room *entity.Room) error {
	for _, participant := range room.Players {
		if participant.IsBot() {
			continue
		}

		won := room.Winner != protocol.SideNone && participant.Side == room.Winner
		lost := room.Winner != protocol.SideNone && participant.Side != room.Winner

		if err := that.statsRepo.RecordResult(ctx, participant.ID, room.Variant, won, lost); err != nil {
			return fmt.Errorf("failed to record result for %s: %w", participant.ID, err)
		}
	}

	return nil
}
