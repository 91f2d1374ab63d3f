package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService exposes manual stock adjustments and the low-stock
// report. Checkout and cancellation adjust inventory directly inside
// their own transactions.
type InventoryService struct {
	store repository.Store
	// auditAdjustments enables compliance events for every manual
	// adjustment, for deployments that want that granularity.
	auditAdjustments bool
	logger           *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(store repository.Store, auditAdjustments bool, logger *zap.Logger) *InventoryService {
	return &InventoryService{store: store, auditAdjustments: auditAdjustments, logger: logger}
}

// Adjust applies a signed delta to a variant's on-hand quantity,
// clamped at zero, and returns the new quantity.
func (s *InventoryService) Adjust(ctx context.Context, variantID uuid.UUID, delta int, actor uuid.UUID, reason string) (int, error) {
	var newQuantity int
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		variant, err := tx.Inventory().FindVariant(ctx, variantID)
		if err != nil {
			return err
		}

		newQuantity, err = tx.Inventory().AdjustQuantity(ctx, variantID, delta)
		if err != nil {
			return err
		}

		if !s.auditAdjustments {
			return nil
		}
		event := models.ComplianceAuditEvent{
			EventType:    models.EventInventoryAdjustment,
			DispensaryID: variant.DispensaryID.String(),
			PerformedBy:  actor.String(),
			Details: map[string]string{
				"variant_id":   variantID.String(),
				"delta":        strconv.Itoa(delta),
				"new_quantity": strconv.Itoa(newQuantity),
				"reason":       reason,
			},
			Timestamp: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return tx.Outbox().Enqueue(ctx, &models.ComplianceOutbox{
			EventType:    models.EventInventoryAdjustment,
			DispensaryID: variant.DispensaryID,
			Payload:      payload,
		})
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("inventory adjusted",
		zap.String("variant_id", variantID.String()),
		zap.Int("delta", delta),
		zap.Int("new_quantity", newQuantity),
	)
	return newQuantity, nil
}

// LowStock lists the dispensary's variants at or below their threshold.
func (s *InventoryService) LowStock(ctx context.Context, dispensaryID uuid.UUID) ([]models.ProductVariant, error) {
	return s.store.Inventory().ListBelowThreshold(ctx, dispensaryID)
}
