package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const reservationColumns = `id, customer_id, guest_name, guest_email, guest_phone,
	reservation_at, party_size, status, special_requests, created_at, updated_at`

// reservationRepository implements the ReservationRepository interface using PostgreSQL.
type reservationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReservationRepository creates a new PostgreSQL-backed reservation repository.
func NewReservationRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReservationRepository {
	return &reservationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "reservation").Logger(),
	}
}

func (r *reservationRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new reservation within the provided transaction.
func (r *reservationRepository) Create(ctx context.Context, tx pgx.Tx, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		res.ID,
		res.CustomerID,
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.ReservationDateTime,
		res.PartySize,
		res.Status,
		res.SpecialRequests,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("reservation_id", res.ID.String()).
			Msg("failed to create reservation")
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

// UpdateStatus performs a compare-and-swap on the reservation status.
func (r *reservationRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.ReservationStatus, at time.Time) error {
	query := `
		UPDATE reservations
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, id, from, to, at)
	if err != nil {
		r.logger.Error().Err(err).Str("reservation_id", id.String()).Msg("failed to update reservation status")
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("reservation_id", id.String()).
			Str("expected_status", string(from)).
			Msg("reservation status changed concurrently")
		return model.ErrConcurrentModification
	}

	return nil
}

func (r *reservationRepository) AppendHistory(ctx context.Context, tx pgx.Tx, change *model.StatusChange) error {
	return appendHistory(ctx, tx, r.logger, reservationHistory, change)
}

// GetByID retrieves a reservation by its ID. It returns nil when none exists.
func (r *reservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("reservation_id", id.String()).Msg("reservation not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("reservation_id", id.String()).Msg("failed to query reservation")
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}

	return res, nil
}

// List retrieves reservations matching the filter ordered by reservation time.
func (r *reservationRepository) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE ($1::text = '' OR customer_id = $1)
		  AND ($2::text = '' OR status = $2)
		  AND ($3::timestamptz IS NULL OR reservation_at >= $3)
		  AND ($4::timestamptz IS NULL OR reservation_at < $4)
		ORDER BY reservation_at, id
		LIMIT $5 OFFSET $6
	`

	rows, err := r.pool.Query(ctx, query,
		filter.CustomerID,
		string(filter.Status),
		filter.From,
		filter.To,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("customer_id", filter.CustomerID).
			Str("status", string(filter.Status)).
			Msg("failed to query reservations")
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan reservation row")
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating reservation rows")
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}

func (r *reservationRepository) History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error) {
	return listHistory(ctx, r.pool, r.logger, reservationHistory, id)
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.CustomerID,
		&res.GuestName,
		&res.GuestEmail,
		&res.GuestPhone,
		&res.ReservationDateTime,
		&res.PartySize,
		&res.Status,
		&res.SpecialRequests,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
