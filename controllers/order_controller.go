package controllers

import (
	"net/http"
	"strconv"

	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderController serves the order query surface and status transitions.
type OrderController struct {
	queryService  *services.OrderQueryService
	statusService *services.OrderStatusService
}

// NewOrderController creates a new OrderController.
func NewOrderController(queryService *services.OrderQueryService, statusService *services.OrderStatusService) *OrderController {
	return &OrderController{queryService: queryService, statusService: statusService}
}

// GetOrders returns paginated orders for the authenticated user.
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	status, ok := parseStatusFilter(ctx)
	if !ok {
		return
	}
	page, limit := parsePaginationParams(ctx)

	result, err := oc.queryService.GetUserOrders(ctx.Request.Context(), userID, status, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetOrderByID returns one order with items and status history.
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	order, err := oc.queryService.GetOrder(ctx.Request.Context(), orderID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	// Owners see their own orders; staff see any.
	if order.UserID != userID && ctx.GetString(middleware.RoleContextKey) == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// GetDispensaryOrders returns paginated orders for a dispensary (staff).
func (oc *OrderController) GetDispensaryOrders(ctx *gin.Context) {
	dispensaryID, err := uuid.Parse(ctx.Query("dispensary_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "dispensary_id is required"})
		return
	}

	status, ok := parseStatusFilter(ctx)
	if !ok {
		return
	}
	page, limit := parsePaginationParams(ctx)

	result, err := oc.queryService.GetDispensaryOrders(ctx.Request.Context(), dispensaryID, status, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// UpdateStatus applies a lifecycle transition to an order (staff).
func (oc *OrderController) UpdateStatus(ctx *gin.Context) {
	actor, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req models.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, err := oc.statusService.Transition(ctx.Request.Context(), orderID, req.Status, actor, req.Notes)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// HasPurchased reports whether the authenticated user has purchased a
// product.
func (oc *OrderController) HasPurchased(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(ctx.Param("productId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	purchased, err := oc.queryService.HasUserPurchasedProduct(ctx.Request.Context(), userID, productID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"purchased": purchased})
}

func parseStatusFilter(ctx *gin.Context) (*models.OrderStatus, bool) {
	raw := ctx.Query("status")
	if raw == "" {
		return nil, true
	}
	status := models.OrderStatus(raw)
	if !status.IsValid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return nil, false
	}
	return &status, true
}

// parsePaginationParams extracts and validates pagination parameters.
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const maxLimit = 100

	page, limit := 1, 10
	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit
}
