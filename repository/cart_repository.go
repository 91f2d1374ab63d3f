package repository

import (
	"context"
	"errors"

	"checkout-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository is the cart collaborator surface the checkout engine
// consumes, plus the storefront's working-set operations. Carts live in
// the same database so clearing participates in the checkout transaction.
type CartRepository interface {
	// GetCartSummary resolves cart lines against the catalog snapshot
	// fields. A missing cart yields an empty summary, not an error.
	GetCartSummary(ctx context.Context, userID, dispensaryID uuid.UUID) (*models.CartSummary, error)
	Clear(ctx context.Context, userID, dispensaryID uuid.UUID) error
	Get(ctx context.Context, userID, dispensaryID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, dispensaryID, variantID uuid.UUID, quantity int, unitPriceCents int64) (*models.Cart, error)
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new instance of GormCartRepository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) findCart(ctx context.Context, userID, dispensaryID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND dispensary_id = ?", userID, dispensaryID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Get returns the user's cart for the dispensary.
func (r *GormCartRepository) Get(ctx context.Context, userID, dispensaryID uuid.UUID) (*models.Cart, error) {
	return r.findCart(ctx, userID, dispensaryID)
}

// GetCartSummary joins cart lines with their variants for the snapshot
// fields the checkout engine needs.
func (r *GormCartRepository) GetCartSummary(ctx context.Context, userID, dispensaryID uuid.UUID) (*models.CartSummary, error) {
	cart, err := r.findCart(ctx, userID, dispensaryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &models.CartSummary{}, nil
		}
		return nil, err
	}

	summary := &models.CartSummary{Items: make([]models.CartSummaryItem, 0, len(cart.Items))}
	for _, item := range cart.Items {
		var variant models.ProductVariant
		if err := r.db.WithContext(ctx).First(&variant, "id = ?", item.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		line := models.CartSummaryItem{
			VariantID:      item.VariantID,
			ProductID:      variant.ProductID,
			ProductName:    variant.ProductName,
			VariantName:    variant.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.UnitPriceCents * int64(item.Quantity),
			BatchNumber:    variant.BatchNumber,
			LicenseNumber:  variant.LicenseNumber,
		}
		summary.Items = append(summary.Items, line)
		summary.SubtotalCents += line.LineTotalCents
	}
	return summary, nil
}

// Clear deletes the cart's items. The cart row itself is kept.
func (r *GormCartRepository) Clear(ctx context.Context, userID, dispensaryID uuid.UUID) error {
	cart, err := r.findCart(ctx, userID, dispensaryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Delete(&models.CartItem{}).Error
}

// AddItem creates the cart on first add and upserts the line. An
// existing line keeps its original snapshot price; only quantity grows.
func (r *GormCartRepository) AddItem(ctx context.Context, userID, dispensaryID, variantID uuid.UUID, quantity int, unitPriceCents int64) (*models.Cart, error) {
	cart, err := r.findCart(ctx, userID, dispensaryID)
	if errors.Is(err, ErrNotFound) {
		cart = &models.Cart{UserID: userID, DispensaryID: dispensaryID}
		if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	var existing models.CartItem
	err = r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cart.ID, variantID).
		First(&existing).Error
	switch {
	case err == nil:
		if err := r.db.WithContext(ctx).Model(&existing).
			Update("quantity", existing.Quantity+quantity).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := models.CartItem{
			CartID:         cart.ID,
			VariantID:      variantID,
			Quantity:       quantity,
			UnitPriceCents: unitPriceCents,
		}
		if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return r.findCart(ctx, userID, dispensaryID)
}
