package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

type StatsRepository interface {
	GetByParticipant(ctx context.Context, participantID string) (map[protocol.Variant]protocol.VariantStats, error)
	RecordResult(ctx context.Context, participantID string, variant protocol.Variant, won, lost bool) error
}

type dbStats struct {
	conn *sql.DB
}

func NewStatsRepository(conn *sql.DB) StatsRepository {
	return &dbStats{
		conn: conn,
	}
}

func (that *dbStats) GetByParticipant(ctx context.Context, participantID string) (map[protocol.Variant]protocol.VariantStats, error) {
	query := `SELECT variant, games_played, games_won, games_lost
		FROM variant_stats WHERE participant_id = ?`

	rows, err := that.conn.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[protocol.Variant]protocol.VariantStats)
	for rows.Next() {
		var variant string
		var entry protocol.VariantStats
		if err = rows.Scan(&variant, &entry.GamesPlayed, &entry.GamesWon, &entry.GamesLost); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats[protocol.Variant(variant)] = entry
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stats rows: %w", err)
	}

	return stats, nil
}

func (that *dbStats) RecordResult(ctx context.Context, participantID string, variant protocol.Variant, won, lost bool) error {
	query := `INSERT INTO variant_stats (participant_id, variant, games_played, games_won, games_lost)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (participant_id, variant) DO UPDATE SET
			games_played = games_played + 1,
			games_won = games_won + excluded.games_won,
			games_lost = games_lost + excluded.games_lost`

	wonN, lostN := 0, 0
	if won {
		wonN = 1
	}
	if lost {
		lostN = 1
	}

	if _, err := that.conn.ExecContext(ctx, query, participantID, string(variant), wonN, lostN); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	return nil
}
