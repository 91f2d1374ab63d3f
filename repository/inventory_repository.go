package repository

import (
	"context"
	"errors"

	"checkout-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryRepository is the single mutation point for variant stock.
type InventoryRepository interface {
	// AdjustQuantity atomically applies quantity = max(0, quantity+delta)
	// and returns the resulting quantity. ErrNotFound if the variant
	// does not exist.
	AdjustQuantity(ctx context.Context, variantID uuid.UUID, delta int) (int, error)
	FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
	ListBelowThreshold(ctx context.Context, dispensaryID uuid.UUID) ([]models.ProductVariant, error)
}

// GormInventoryRepository implements InventoryRepository using GORM.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new instance of GormInventoryRepository.
func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &GormInventoryRepository{db: db}
}

// AdjustQuantity runs the clamp-at-zero adjustment as one UPDATE so
// concurrent adjustments on the same variant never lose writes.
func (r *GormInventoryRepository) AdjustQuantity(ctx context.Context, variantID uuid.UUID, delta int) (int, error) {
	var result struct {
		Quantity int
	}
	res := r.db.WithContext(ctx).Raw(
		`UPDATE product_variants
		 SET quantity = GREATEST(0, quantity + ?), updated_at = NOW()
		 WHERE id = ?
		 RETURNING quantity`,
		delta, variantID,
	).Scan(&result)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return result.Quantity, nil
}

// FindVariant loads a variant for snapshot fields and price.
func (r *GormInventoryRepository) FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).First(&variant, "id = ?", variantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// ListBelowThreshold returns the dispensary's variants at or below their
// low-stock threshold.
func (r *GormInventoryRepository) ListBelowThreshold(ctx context.Context, dispensaryID uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("dispensary_id = ? AND quantity <= low_stock_threshold", dispensaryID).
		Order("quantity ASC").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}
