package repository

import (
	"context"
	"fmt"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// historyTable names a status audit table and the column holding the owning record id.
type historyTable struct {
	table  string
	column string
}

var (
	orderHistory       = historyTable{table: "order_status_history", column: "order_id"}
	reservationHistory = historyTable{table: "reservation_status_history", column: "reservation_id"}
)

func appendHistory(ctx context.Context, tx pgx.Tx, logger zerolog.Logger, h historyTable, change *model.StatusChange) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, from_status, to_status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, h.table, h.column)

	if change.ID == uuid.Nil {
		change.ID = uuid.New()
	}

	_, err := tx.Exec(ctx, query, change.ID, change.EntityID, change.From, change.To, change.ChangedBy, change.ChangedAt)
	if err != nil {
		logger.Error().
			Err(err).
			Str(h.column, change.EntityID.String()).
			Str("to_status", change.To).
			Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}

	return nil
}

func listHistory(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger, h historyTable, id uuid.UUID) ([]model.StatusChange, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, from_status, to_status, changed_by, changed_at
		FROM %s
		WHERE %s = $1
		ORDER BY changed_at, id
	`, h.column, h.table, h.column)

	rows, err := pool.Query(ctx, query, id)
	if err != nil {
		logger.Error().Err(err).Str(h.column, id.String()).Msg("failed to query status history")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	changes := []model.StatusChange{}
	for rows.Next() {
		var c model.StatusChange
		if err := rows.Scan(&c.ID, &c.EntityID, &c.From, &c.To, &c.ChangedBy, &c.ChangedAt); err != nil {
			logger.Error().Err(err).Msg("failed to scan status history row")
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating status history rows")
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return changes, nil
}
