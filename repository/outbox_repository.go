package repository

import (
	"context"
	"time"

	"checkout-service/models"

	"gorm.io/gorm"
)

// OutboxRepository persists compliance events durably before they are
// published, so a sink outage never loses a regulatory record.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event *models.ComplianceOutbox) error
	FetchPending(ctx context.Context, limit int) ([]models.ComplianceOutbox, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
}

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new instance of GormOutboxRepository.
func NewGormOutboxRepository(db *gorm.DB) OutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Enqueue inserts a pending outbox row; called inside the transaction
// of the change it records.
func (r *GormOutboxRepository) Enqueue(ctx context.Context, event *models.ComplianceOutbox) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FetchPending returns unsent rows oldest first.
func (r *GormOutboxRepository) FetchPending(ctx context.Context, limit int) ([]models.ComplianceOutbox, error) {
	var events []models.ComplianceOutbox
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// MarkSent stamps a row as delivered.
func (r *GormOutboxRepository) MarkSent(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.ComplianceOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"sent_at": now}).Error
}

// MarkFailed records a delivery failure; the row stays pending and will
// be retried on the next poll.
func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	return r.db.WithContext(ctx).
		Model(&models.ComplianceOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error
}
