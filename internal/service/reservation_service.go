package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/events"
	"bistro/internal/model"
	"bistro/internal/repository"
	"bistro/internal/statemachine"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReservationRules holds the booking limits enforced on new and cancelled reservations.
type ReservationRules struct {
	MinPartySize       int
	MaxPartySize       int
	Horizon            time.Duration
	CancellationWindow time.Duration
}

// DefaultReservationRules returns parties of 1 to 12, booked up to 90 days
// ahead and cancellable until 2 hours before.
func DefaultReservationRules() ReservationRules {
	return ReservationRules{
		MinPartySize:       1,
		MaxPartySize:       12,
		Horizon:            90 * 24 * time.Hour,
		CancellationWindow: statemachine.DefaultCancellationWindow,
	}
}

// reservationService implements ReservationService.
type reservationService struct {
	repo      repository.ReservationRepository
	rules     ReservationRules
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReservationService creates a new reservation service.
func NewReservationService(
	repo repository.ReservationRepository,
	rules ReservationRules,
	publisher events.Publisher,
	logger zerolog.Logger,
) ReservationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &reservationService{
		repo:      repo,
		rules:     rules,
		publisher: publisher,
		logger:    logger.With().Str("service", "reservation").Logger(),
		now:       time.Now,
	}
}

// CreateReservation validates and stores a pending reservation.
func (s *reservationService) CreateReservation(ctx context.Context, req *model.ReservationRequest) (_ *model.Reservation, err error) {
	if req == nil {
		return nil, model.ErrMissingContact
	}

	now := s.now()
	if err := s.validate(req, now); err != nil {
		s.logger.Debug().Err(err).Msg("reservation request rejected")
		return nil, err
	}

	res := &model.Reservation{
		ID:                  uuid.New(),
		CustomerID:          trimmed(req.CustomerID),
		GuestName:           trimmed(req.GuestName),
		GuestEmail:          trimmed(req.GuestEmail),
		GuestPhone:          trimmed(req.GuestPhone),
		ReservationDateTime: req.ReservationDateTime,
		PartySize:           req.PartySize,
		Status:              model.ReservationStatusPending,
		SpecialRequests:     trimmed(req.SpecialRequests),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.repo.Create(ctx, tx, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	err = s.repo.AppendHistory(ctx, tx, &model.StatusChange{
		EntityID:  res.ID,
		To:        string(res.Status),
		ChangedBy: contactOf(res),
		ChangedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.publish(ctx, res.ID, "", string(res.Status), contactOf(res), now)

	s.logger.Info().
		Str("reservation_id", res.ID.String()).
		Time("reservation_at", res.ReservationDateTime).
		Int("party_size", res.PartySize).
		Msg("reservation created successfully")

	return res, nil
}

func (s *reservationService) validate(req *model.ReservationRequest, now time.Time) error {
	at := req.ReservationDateTime

	if at.Before(now) {
		return fmt.Errorf("%w: %s", model.ErrPastDate, at.Format(time.RFC3339))
	}

	if at.After(now.Add(s.rules.Horizon)) {
		return fmt.Errorf("%w: latest bookable time is %s", model.ErrHorizonExceeded, now.Add(s.rules.Horizon).Format(time.RFC3339))
	}

	if req.PartySize < s.rules.MinPartySize || req.PartySize > s.rules.MaxPartySize {
		return fmt.Errorf("%w: %d is not between %d and %d",
			model.ErrPartySize, req.PartySize, s.rules.MinPartySize, s.rules.MaxPartySize)
	}

	if trimmed(req.CustomerID) == nil && trimmed(req.GuestName) == nil {
		return model.ErrMissingContact
	}

	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("reservation_id", id.String()).Msg("failed to get reservation")
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, model.ErrReservationNotFound
	}
	return res, nil
}

func (s *reservationService) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]model.Reservation, error) {
	return s.List(ctx, model.ReservationFilter{CustomerID: customerID, Limit: limit, Offset: offset})
}

func (s *reservationService) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, filter.Status)
	}
	filter.Limit, filter.Offset = normalisePage(filter.Limit, filter.Offset)

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list reservations")
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}

// Transition moves a reservation to target following the workflow table.
// Staff use this path, so no cancellation window applies.
func (s *reservationService) Transition(ctx context.Context, id uuid.UUID, target, changedBy string) (*model.Reservation, error) {
	status := model.ReservationStatus(target)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, target)
	}

	check := func(r *model.Reservation) error {
		return statemachine.CanTransitionReservation(r.Status, status)
	}
	return s.transitionWithRetry(ctx, id, status, changedBy, check)
}

// Cancel cancels a reservation on behalf of the guest.
func (s *reservationService) Cancel(ctx context.Context, id uuid.UUID, requestedBy string) (*model.Reservation, error) {
	check := func(r *model.Reservation) error {
		return statemachine.ReservationCancellable(r, s.now(), s.rules.CancellationWindow)
	}
	return s.transitionWithRetry(ctx, id, model.ReservationStatusCancelled, requestedBy, check)
}

func (s *reservationService) transitionWithRetry(
	ctx context.Context,
	id uuid.UUID,
	target model.ReservationStatus,
	changedBy string,
	check func(*model.Reservation) error,
) (*model.Reservation, error) {
	res, err := s.transitionOnce(ctx, id, target, changedBy, check)
	if errors.Is(err, model.ErrConcurrentModification) {
		s.logger.Warn().Str("reservation_id", id.String()).Msg("reservation changed concurrently, retrying transition")
		res, err = s.transitionOnce(ctx, id, target, changedBy, check)
	}
	return res, err
}

func (s *reservationService) transitionOnce(
	ctx context.Context,
	id uuid.UUID,
	target model.ReservationStatus,
	changedBy string,
	check func(*model.Reservation) error,
) (_ *model.Reservation, err error) {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := check(res); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := s.now()
	previous := res.Status

	if err = s.repo.UpdateStatus(ctx, tx, id, previous, target, now); err != nil {
		if errors.Is(err, model.ErrConcurrentModification) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	err = s.repo.AppendHistory(ctx, tx, &model.StatusChange{
		EntityID:  id,
		From:      string(previous),
		To:        string(target),
		ChangedBy: changedBy,
		ChangedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	res.Status = target
	res.UpdatedAt = now

	s.publish(ctx, id, string(previous), string(target), changedBy, now)

	s.logger.Info().
		Str("reservation_id", id.String()).
		Str("from", string(previous)).
		Str("to", string(target)).
		Msg("reservation status changed")

	return res, nil
}

func (s *reservationService) History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	changes, err := s.repo.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation history: %w", err)
	}
	return changes, nil
}

func (s *reservationService) publish(ctx context.Context, id uuid.UUID, from, to, changedBy string, at time.Time) {
	err := s.publisher.Publish(ctx, events.StatusEvent{
		Entity:     events.EntityReservation,
		EntityID:   id,
		From:       from,
		To:         to,
		ChangedBy:  changedBy,
		OccurredAt: at,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("reservation_id", id.String()).Msg("failed to publish reservation status event")
	}
}

// trimmed returns nil for a nil or blank string and a trimmed copy otherwise.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func contactOf(r *model.Reservation) string {
	if r.CustomerID != nil {
		return *r.CustomerID
	}
	if r.GuestName != nil {
		return *r.GuestName
	}
	return ""
}
