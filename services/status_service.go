package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStatusService applies lifecycle transitions to orders. It is the
// only path by which inventory is returned to stock.
type OrderStatusService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewOrderStatusService creates a new OrderStatusService.
func NewOrderStatusService(store repository.Store, logger *zap.Logger) *OrderStatusService {
	return &OrderStatusService{store: store, logger: logger}
}

// Transition moves an order to newStatus if the lifecycle table allows
// it. A rejected transition leaves the order and its history untouched.
// The status update, timestamps, cancellation restock, history entry
// and compliance audit row commit as one transaction.
func (s *OrderStatusService) Transition(ctx context.Context, orderID uuid.UUID, newStatus models.OrderStatus, actor uuid.UUID, notes string) (*models.Order, error) {
	if !newStatus.IsValid() {
		return nil, &InvalidTransitionError{To: newStatus}
	}

	var order *models.Order
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		// Row lock: a double-cancel race serializes here and the loser
		// sees the already-cancelled state.
		order, err = tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		from := order.Status
		if !from.CanTransitionTo(newStatus) {
			return &InvalidTransitionError{From: from, To: newStatus}
		}

		now := time.Now().UTC()
		order.Status = newStatus
		switch newStatus {
		case models.StatusConfirmed:
			order.ConfirmedAt = &now
		case models.StatusCompleted:
			order.CompletedAt = &now
		case models.StatusCancelled:
			order.CancelledAt = &now
		case models.StatusRefunded:
			order.PaymentStatus = models.PaymentRefunded
		}

		if newStatus == models.StatusCancelled {
			for _, item := range order.Items {
				if _, err := tx.Inventory().AdjustQuantity(ctx, item.VariantID, item.Quantity); err != nil {
					return fmt.Errorf("restock variant %s: %w", item.VariantID, err)
				}
			}
		}

		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		entry := &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   newStatus,
			ChangedBy:  actor,
			Notes:      notes,
		}
		if err := tx.Orders().AppendHistory(ctx, entry); err != nil {
			return err
		}

		return s.enqueueStatusEvent(ctx, tx, order, from, newStatus, actor, notes)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(newStatus)),
		zap.String("actor", actor.String()),
	)
	return order, nil
}

func (s *OrderStatusService) enqueueStatusEvent(ctx context.Context, tx repository.Store, order *models.Order, from, to models.OrderStatus, actor uuid.UUID, notes string) error {
	event := models.ComplianceAuditEvent{
		EventType:    models.EventStatusChange,
		DispensaryID: order.DispensaryID.String(),
		OrderID:      order.ID.String(),
		PerformedBy:  actor.String(),
		Details: map[string]string{
			"order_number": order.OrderNumber,
			"from_status":  string(from),
			"to_status":    string(to),
			"notes":        notes,
		},
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	orderID := order.ID
	return tx.Outbox().Enqueue(ctx, &models.ComplianceOutbox{
		EventType:    models.EventStatusChange,
		DispensaryID: order.DispensaryID,
		OrderID:      &orderID,
		Payload:      payload,
	})
}
