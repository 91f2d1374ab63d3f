package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkoutAttempts bounds the retry loop around order-number
// uniqueness violations.
const checkoutAttempts = 3

// CheckoutService converts a cart into a durable, tax-computed order
// while decrementing inventory, all as one database transaction.
type CheckoutService struct {
	store   repository.Store
	rates   *RateTable
	numbers *OrderNumberGenerator
	logger  *zap.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(store repository.Store, rates *RateTable, numbers *OrderNumberGenerator, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		store:   store,
		rates:   rates,
		numbers: numbers,
		logger:  logger,
	}
}

// Checkout places an order from the user's cart for the dispensary.
// Either the order, its items, the inventory decrements, the initial
// history entry, the compliance outbox row and the cart clear all
// commit together, or none of them do.
func (s *CheckoutService) Checkout(ctx context.Context, userID, tenantID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {
	if req.FulfillmentType == models.FulfillmentDelivery && req.DeliveryAddress == "" {
		return nil, ErrDeliveryAddressRequired
	}

	var order *models.Order
	var err error
	for attempt := 1; attempt <= checkoutAttempts; attempt++ {
		order, err = s.attemptCheckout(ctx, userID, tenantID, req)
		if err == nil {
			return order, nil
		}
		// A duplicate order number means another checkout for the same
		// dispensary won the race; the sequence moves on, so retrying
		// yields a fresh number.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		s.logger.Warn("order number collision, retrying checkout",
			zap.String("user_id", userID.String()),
			zap.String("dispensary_id", req.DispensaryID.String()),
			zap.Int("attempt", attempt),
		)
	}
	return nil, ErrConcurrencyConflict
}

func (s *CheckoutService) attemptCheckout(ctx context.Context, userID, tenantID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {
	var order *models.Order

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		summary, err := tx.Carts().GetCartSummary(ctx, userID, req.DispensaryID)
		if err != nil {
			return err
		}
		if len(summary.Items) == 0 {
			return ErrEmptyCart
		}

		totals := CalculateTotals(summary.SubtotalCents, s.rates.RatesFor(req.DispensaryID))

		orderNumber, err := s.numbers.Generate(ctx, tx.Sequences(), req.DispensaryID)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(summary.Items))
		for _, line := range summary.Items {
			items = append(items, models.OrderItem{
				VariantID:      line.VariantID,
				ProductID:      line.ProductID,
				ProductName:    line.ProductName,
				VariantName:    line.VariantName,
				UnitPriceCents: line.UnitPriceCents,
				Quantity:       line.Quantity,
				LineTotalCents: line.LineTotalCents,
				BatchNumber:    line.BatchNumber,
				LicenseNumber:  line.LicenseNumber,
			})
		}

		order = &models.Order{
			OrderNumber:     orderNumber,
			UserID:          userID,
			TenantID:        tenantID,
			DispensaryID:    req.DispensaryID,
			SubtotalCents:   totals.SubtotalCents,
			TaxCents:        totals.TaxCents,
			ExciseTaxCents:  totals.ExciseTaxCents,
			DiscountCents:   totals.DiscountCents,
			TotalCents:      totals.TotalCents,
			Status:          models.StatusPending,
			PaymentStatus:   models.PaymentUnpaid,
			FulfillmentType: req.FulfillmentType,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			DeliveryAddress: req.DeliveryAddress,
			Notes:           req.Notes,
			Items:           items,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		for _, line := range summary.Items {
			if _, err := tx.Inventory().AdjustQuantity(ctx, line.VariantID, -line.Quantity); err != nil {
				return err
			}
		}

		initial := &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: nil,
			ToStatus:   models.StatusPending,
			ChangedBy:  userID,
		}
		if err := tx.Orders().AppendHistory(ctx, initial); err != nil {
			return err
		}

		if err := s.enqueueSaleEvent(ctx, tx, order, userID); err != nil {
			return err
		}

		return tx.Carts().Clear(ctx, userID, req.DispensaryID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout committed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.Int64("total_cents", order.TotalCents),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// enqueueSaleEvent writes the compliance sale record into the outbox in
// the same transaction, so the regulatory log can never miss a
// committed sale. The dispatcher publishes it after commit.
func (s *CheckoutService) enqueueSaleEvent(ctx context.Context, tx repository.Store, order *models.Order, performedBy uuid.UUID) error {
	event := models.ComplianceSaleEvent{
		EventType:      models.EventSale,
		OrderID:        order.ID.String(),
		OrderNumber:    order.OrderNumber,
		TenantID:       order.TenantID.String(),
		DispensaryID:   order.DispensaryID.String(),
		PerformedBy:    performedBy.String(),
		SubtotalCents:  order.SubtotalCents,
		TaxCents:       order.TaxCents,
		ExciseTaxCents: order.ExciseTaxCents,
		TotalCents:     order.TotalCents,
		Items:          make([]models.SaleItem, 0, len(order.Items)),
		Timestamp:      time.Now().UTC(),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, models.SaleItem{
			VariantID:      item.VariantID.String(),
			ProductName:    item.ProductName,
			VariantName:    item.VariantName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
			BatchNumber:    item.BatchNumber,
			LicenseNumber:  item.LicenseNumber,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	orderID := order.ID
	return tx.Outbox().Enqueue(ctx, &models.ComplianceOutbox{
		EventType:    models.EventSale,
		DispensaryID: order.DispensaryID,
		OrderID:      &orderID,
		Payload:      payload,
	})
}
