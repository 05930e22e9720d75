package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/events"
	"bistro/internal/idempotency"
	"bistro/internal/model"
	"bistro/internal/pricing"
	"bistro/internal/repository"
	"bistro/internal/statemachine"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	menuRepo  repository.MenuRepository
	engine    *pricing.Engine
	keys      idempotency.Store
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	menuRepo repository.MenuRepository,
	engine *pricing.Engine,
	keys idempotency.Store,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	if keys == nil {
		keys = idempotency.NopStore{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		engine:    engine,
		keys:      keys,
		publisher: publisher,
		logger:    logger.With().Str("service", "order").Logger(),
		now:       time.Now,
	}
}

// Quote prices a cart against the current menu.
func (s *orderService) Quote(ctx context.Context, req *model.CartRequest) (*model.CartQuote, error) {
	if req == nil {
		req = &model.CartRequest{}
	}
	if req.OrderType != "" && !req.OrderType.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidOrderType, req.OrderType)
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totals, err := s.engine.Quote(items, req.OrderType == model.OrderTypeDelivery)
	if err != nil {
		return nil, err
	}

	return &model.CartQuote{Items: items, Totals: totals.Round()}, nil
}

// CreateOrder validates, prices and persists a new order in a single transaction.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error) {
	if err := s.validateCheckout(req); err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totals, err := s.engine.Quote(items, req.OrderType == model.OrderTypeDelivery)
	if err != nil {
		return nil, err
	}

	key := ""
	if req.IdempotencyKey != "" {
		key = checkoutKey(req)
		existing, reserved, err := s.keys.Reserve(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("idempotency store unavailable, continuing without it")
		case !reserved && existing == "":
			return nil, model.ErrDuplicateRequest
		case !reserved:
			return s.replay(ctx, req, existing)
		}
	}

	now := s.now()
	order := &model.Order{
		ID:         uuid.New(),
		CustomerID: req.CustomerID,
		Status:     model.OrderStatusPending,
		OrderType:  req.OrderType,
		Totals:     totals.Round(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.DeliveryAddress != nil && strings.TrimSpace(*req.DeliveryAddress) != "" {
		addr := strings.TrimSpace(*req.DeliveryAddress)
		order.DeliveryAddress = &addr
	}
	order.Items = make([]model.OrderItem, len(items))
	for i, item := range items {
		order.Items[i] = model.OrderItem{ID: uuid.New(), OrderID: order.ID, LineItem: item}
	}

	if err := s.persistNewOrder(ctx, order); err != nil {
		if key != "" {
			if relErr := s.keys.Release(ctx, key); relErr != nil {
				s.logger.Warn().Err(relErr).Msg("failed to release idempotency key; retries wait for it to expire")
			}
		}
		return nil, err
	}

	if key != "" {
		if err := s.keys.Complete(ctx, key, order.ID.String()); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to record idempotency key; retries wait for the pending marker to expire")
		}
	}

	s.publish(ctx, order.ID, "", string(order.Status), req.CustomerID, now)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_type", string(order.OrderType)).
		Int("item_count", len(order.Items)).
		Str("grand_total", order.Totals.GrandTotal.StringFixed(2)).
		Msg("order created successfully")

	return order, nil
}

func (s *orderService) persistNewOrder(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	err = s.orderRepo.AppendHistory(ctx, tx, &model.StatusChange{
		EntityID:  order.ID,
		To:        string(order.Status),
		ChangedBy: order.CustomerID,
		ChangedAt: order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// checkoutKey scopes a client-supplied idempotency key to whoever is checking out.
func checkoutKey(req *model.CheckoutRequest) string {
	if req.CustomerID == "" {
		return "guest:" + req.IdempotencyKey
	}
	return "customer:" + req.CustomerID + ":" + req.IdempotencyKey
}

// replay returns the order an earlier request with the same key created.
func (s *orderService) replay(ctx context.Context, req *model.CheckoutRequest, orderID string) (*model.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q stored for idempotency key: %w", orderID, err)
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != req.CustomerID {
		s.logger.Warn().Str("order_id", orderID).Msg("idempotency key reused by another customer")
		return nil, model.ErrDuplicateRequest
	}

	s.logger.Info().Str("order_id", orderID).Msg("replaying checkout for repeated idempotency key")
	return order, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]model.Order, error) {
	return s.List(ctx, model.OrderFilter{CustomerID: customerID, Limit: limit, Offset: offset})
}

func (s *orderService) ListByStatus(ctx context.Context, status string, limit, offset int) ([]model.Order, error) {
	return s.List(ctx, model.OrderFilter{Status: model.OrderStatus(status), Limit: limit, Offset: offset})
}

// List retrieves orders matching filter, newest first.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, filter.Status)
	}
	filter.Limit, filter.Offset = normalisePage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// Transition moves an order to target. A lost compare-and-swap race is retried once.
func (s *orderService) Transition(ctx context.Context, id uuid.UUID, target, changedBy string) (*model.Order, error) {
	status := model.OrderStatus(target)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, target)
	}

	order, err := s.transitionOnce(ctx, id, status, changedBy)
	if errors.Is(err, model.ErrConcurrentModification) {
		s.logger.Warn().Str("order_id", id.String()).Msg("order changed concurrently, retrying transition")
		order, err = s.transitionOnce(ctx, id, status, changedBy)
	}
	return order, err
}

// Cancel moves a non-terminal order to cancelled.
func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, requestedBy string) (*model.Order, error) {
	return s.Transition(ctx, id, string(model.OrderStatusCancelled), requestedBy)
}

func (s *orderService) transitionOnce(ctx context.Context, id uuid.UUID, target model.OrderStatus, changedBy string) (_ *model.Order, err error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.CanTransitionOrder(order.Status, target); err != nil {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("order transition rejected")
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := s.now()
	previous := order.Status

	if err = s.orderRepo.UpdateStatus(ctx, tx, id, previous, target, now); err != nil {
		if errors.Is(err, model.ErrConcurrentModification) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	err = s.orderRepo.AppendHistory(ctx, tx, &model.StatusChange{
		EntityID:  id,
		From:      string(previous),
		To:        string(target),
		ChangedBy: changedBy,
		ChangedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = target
	order.UpdatedAt = now

	s.publish(ctx, id, string(previous), string(target), changedBy, now)

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(previous)).
		Str("to", string(target)).
		Str("changed_by", changedBy).
		Msg("order status changed")

	return order, nil
}

// History returns the status audit trail of an order.
func (s *orderService) History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	changes, err := s.orderRepo.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	return changes, nil
}

func (s *orderService) validateCheckout(req *model.CheckoutRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyCart
	}

	if !req.OrderType.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidOrderType, req.OrderType)
	}

	if req.OrderType == model.OrderTypeDelivery &&
		(req.DeliveryAddress == nil || strings.TrimSpace(*req.DeliveryAddress) == "") {
		return model.ErrMissingAddress
	}

	return nil
}

// resolveItems looks up current names and prices for the requested menu items.
// The result is the snapshot stored with an order.
func (s *orderService) resolveItems(ctx context.Context, reqs []model.CartItemRequest) ([]model.LineItem, error) {
	if len(reqs) == 0 {
		return []model.LineItem{}, nil
	}

	ids := make([]string, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		if r.MenuItemID == "" || r.Quantity < 1 {
			s.logger.Warn().
				Int("item_index", i).
				Str("menu_item_id", r.MenuItemID).
				Int("quantity", r.Quantity).
				Msg("invalid cart item")
			return nil, fmt.Errorf("%w: item %d", model.ErrInvalidLineItem, i)
		}
		if !seen[r.MenuItemID] {
			seen[r.MenuItemID] = true
			ids = append(ids, r.MenuItemID)
		}
	}

	menu, err := s.menuRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to look up menu items")
		return nil, fmt.Errorf("failed to look up menu items: %w", err)
	}

	byID := make(map[string]model.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	items := make([]model.LineItem, len(reqs))
	for i, r := range reqs {
		m, ok := byID[r.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrMenuItemNotFound, r.MenuItemID)
		}
		if !m.Available {
			return nil, fmt.Errorf("%w: %s", model.ErrMenuItemUnavailable, r.MenuItemID)
		}
		items[i] = model.LineItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			UnitPrice:  m.Price,
			Quantity:   r.Quantity,
		}
	}

	return items, nil
}

// publish sends a status event. The transition is already committed, so a
// failure is only logged.
func (s *orderService) publish(ctx context.Context, id uuid.UUID, from, to, changedBy string, at time.Time) {
	err := s.publisher.Publish(ctx, events.StatusEvent{
		Entity:     events.EntityOrder,
		EntityID:   id,
		From:       from,
		To:         to,
		ChangedBy:  changedBy,
		OccurredAt: at,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to publish order status event")
	}
}
