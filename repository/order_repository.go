package repository

import (
	"context"
	"errors"

	"checkout-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository defines data access for orders and their audit trail.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// FindByIDForUpdate row-locks the order so concurrent transitions
	// on the same order serialize.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindByUserID(ctx context.Context, userID uuid.UUID, status *models.OrderStatus, page, limit int) ([]models.Order, int64, error)
	FindByDispensaryID(ctx context.Context, dispensaryID uuid.UUID, status *models.OrderStatus, page, limit int) ([]models.Order, int64, error)
	HasUserPurchasedProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new instance of GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists an order together with its items.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID retrieves an order with its items and ordered status history.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate retrieves the order with its items under FOR UPDATE.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Update persists mutated status fields. Monetary columns are never
// written here.
func (r *GormOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Model(order).
		Select("status", "payment_status", "confirmed_at", "completed_at", "cancelled_at", "updated_at").
		Updates(order).Error
}

// AppendHistory writes one append-only audit trail entry.
func (r *GormOrderRepository) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByUserID retrieves orders for a user with optional status filter
// and pagination.
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, status *models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.paginate(query, page, limit)
}

// FindByDispensaryID retrieves orders for a dispensary with optional
// status filter and pagination.
func (r *GormOrderRepository) FindByDispensaryID(ctx context.Context, dispensaryID uuid.UUID, status *models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("dispensary_id = ?", dispensaryID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.paginate(query, page, limit)
}

func (r *GormOrderRepository) paginate(query *gorm.DB, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// HasUserPurchasedProduct reports whether the user has a non-cancelled
// order containing the product, for verified-purchase gating downstream.
func (r *GormOrderRepository) HasUserPurchasedProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status <> ?",
			userID, productID, models.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
