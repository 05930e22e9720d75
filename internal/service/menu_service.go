package service

import (
	"context"
	"fmt"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

// menuService implements MenuService.
type menuService struct {
	menuRepo repository.MenuRepository
	logger   zerolog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(menuRepo repository.MenuRepository, logger zerolog.Logger) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		logger:   logger.With().Str("service", "menu").Logger(),
	}
}

// GetAll retrieves menu items with pagination.
func (s *menuService) GetAll(ctx context.Context, category string, limit, offset int) ([]model.MenuItem, error) {
	limit, offset = normalisePage(limit, offset)

	items, err := s.menuRepo.GetAll(ctx, category, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Str("category", category).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get menu items")
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}

	s.logger.Debug().
		Int("count", len(items)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved menu items")

	return items, nil
}

// GetByID retrieves a single menu item by ID.
func (s *menuService) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	if id == "" {
		return nil, model.ErrMenuItemMissing
	}

	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("menu_item_id", id).Msg("failed to get menu item by ID")
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	if item == nil {
		s.logger.Debug().Str("menu_item_id", id).Msg("menu item not found")
		return nil, model.ErrMenuItemMissing
	}

	return item, nil
}
