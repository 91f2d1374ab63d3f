package services

import (
	"context"
	"testing"

	"checkout-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), calculateTotalPages(0, 10))
	assert.Equal(t, int64(1), calculateTotalPages(10, 10))
	assert.Equal(t, int64(2), calculateTotalPages(11, 10))
	assert.Equal(t, int64(0), calculateTotalPages(5, 0))
}

func TestListResponse_Meta(t *testing.T) {
	resp := listResponse(make([]models.Order, 10), 25, 1, 10)
	assert.Equal(t, int64(25), resp.Meta.TotalOrders)
	assert.Equal(t, int64(3), resp.Meta.TotalPages)
	assert.True(t, resp.Meta.HasMore)

	resp = listResponse(make([]models.Order, 5), 25, 3, 10)
	assert.False(t, resp.Meta.HasMore)
}

func TestGetUserOrders_StatusFilter(t *testing.T) {
	store := newMemStore()
	svc := NewOrderQueryService(store)
	userID := uuid.New()
	ctx := context.Background()

	for _, status := range []models.OrderStatus{models.StatusPending, models.StatusCompleted, models.StatusCompleted} {
		order := &models.Order{
			OrderNumber:     "ORD-20260314-" + uuid.NewString()[:4],
			UserID:          userID,
			TenantID:        uuid.New(),
			DispensaryID:    uuid.New(),
			Status:          status,
			PaymentStatus:   models.PaymentPaid,
			FulfillmentType: models.FulfillmentPickup,
			CustomerName:    "Dana Reyes",
		}
		require.NoError(t, store.Orders().Create(ctx, order))
	}

	resp, err := svc.GetUserOrders(ctx, userID, nil, 1, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 3)

	completed := models.StatusCompleted
	resp, err = svc.GetUserOrders(ctx, userID, &completed, 1, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 2)
	assert.Equal(t, int64(2), resp.Meta.TotalOrders)
}

func TestHasUserPurchasedProduct_IgnoresCancelled(t *testing.T) {
	store := newMemStore()
	svc := NewOrderQueryService(store)
	userID := uuid.New()
	productID := uuid.New()
	ctx := context.Background()

	order := &models.Order{
		OrderNumber:     "ORD-20260314-0001",
		UserID:          userID,
		TenantID:        uuid.New(),
		DispensaryID:    uuid.New(),
		Status:          models.StatusCancelled,
		FulfillmentType: models.FulfillmentPickup,
		CustomerName:    "Dana Reyes",
		Items:           []models.OrderItem{{VariantID: uuid.New(), ProductID: productID, Quantity: 1}},
	}
	require.NoError(t, store.Orders().Create(ctx, order))

	purchased, err := svc.HasUserPurchasedProduct(ctx, userID, productID)
	require.NoError(t, err)
	assert.False(t, purchased)

	order2 := &models.Order{
		OrderNumber:     "ORD-20260314-0002",
		UserID:          userID,
		TenantID:        order.TenantID,
		DispensaryID:    order.DispensaryID,
		Status:          models.StatusCompleted,
		FulfillmentType: models.FulfillmentPickup,
		CustomerName:    "Dana Reyes",
		Items:           []models.OrderItem{{VariantID: uuid.New(), ProductID: productID, Quantity: 1}},
	}
	require.NoError(t, store.Orders().Create(ctx, order2))

	purchased, err = svc.HasUserPurchasedProduct(ctx, userID, productID)
	require.NoError(t, err)
	assert.True(t, purchased)
}
