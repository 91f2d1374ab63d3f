package services

import (
	"context"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
)

// OrderListResponse is a paginated page of orders.
type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

// MetaData carries pagination info.
type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderQueryService is the read-only surface for admin and reporting.
type OrderQueryService struct {
	store repository.Store
}

// NewOrderQueryService creates a new OrderQueryService.
func NewOrderQueryService(store repository.Store) *OrderQueryService {
	return &OrderQueryService{store: store}
}

// GetUserOrders retrieves paginated orders for a user, optionally
// filtered by status.
func (s *OrderQueryService) GetUserOrders(ctx context.Context, userID uuid.UUID, status *models.OrderStatus, page, limit int) (*OrderListResponse, error) {
	orders, total, err := s.store.Orders().FindByUserID(ctx, userID, status, page, limit)
	if err != nil {
		return nil, err
	}
	return listResponse(orders, total, page, limit), nil
}

// GetDispensaryOrders retrieves paginated orders for a dispensary,
// optionally filtered by status.
func (s *OrderQueryService) GetDispensaryOrders(ctx context.Context, dispensaryID uuid.UUID, status *models.OrderStatus, page, limit int) (*OrderListResponse, error) {
	orders, total, err := s.store.Orders().FindByDispensaryID(ctx, dispensaryID, status, page, limit)
	if err != nil {
		return nil, err
	}
	return listResponse(orders, total, page, limit), nil
}

// GetOrder fetches one order with its items and ordered status history.
func (s *OrderQueryService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.store.Orders().FindByID(ctx, orderID)
}

// HasUserPurchasedProduct reports whether the user has purchased the
// product, for downstream eligibility checks such as verified-purchase
// review gating.
func (s *OrderQueryService) HasUserPurchasedProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.store.Orders().HasUserPurchasedProduct(ctx, userID, productID)
}

func listResponse(orders []models.Order, total int64, page, limit int) *OrderListResponse {
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
