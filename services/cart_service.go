package services

import (
	"context"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService manages the user's working set. Prices are snapshotted
// from the catalog when an item is added.
type CartService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(store repository.Store, logger *zap.Logger) *CartService {
	return &CartService{store: store, logger: logger}
}

// AddItem snapshots the variant's current price and adds it to the
// user's cart for the variant's dispensary.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	variant, err := s.store.Inventory().FindVariant(ctx, req.VariantID)
	if err != nil {
		return nil, err
	}
	if variant.DispensaryID != req.DispensaryID {
		return nil, repository.ErrNotFound
	}

	cart, err := s.store.Carts().AddItem(ctx, userID, req.DispensaryID, req.VariantID, req.Quantity, variant.PriceCents)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added",
		zap.String("user_id", userID.String()),
		zap.String("variant_id", req.VariantID.String()),
		zap.Int("quantity", req.Quantity),
	)
	return cart, nil
}

// GetSummary returns the priced cart contents.
func (s *CartService) GetSummary(ctx context.Context, userID, dispensaryID uuid.UUID) (*models.CartSummary, error) {
	return s.store.Carts().GetCartSummary(ctx, userID, dispensaryID)
}

// Clear empties the user's cart for the dispensary.
func (s *CartService) Clear(ctx context.Context, userID, dispensaryID uuid.UUID) error {
	return s.store.Carts().Clear(ctx, userID, dispensaryID)
}
