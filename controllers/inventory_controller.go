package controllers

import (
	"net/http"

	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryController handles manual stock adjustments and the
// low-stock report.
type InventoryController struct {
	inventoryService *services.InventoryService
}

// NewInventoryController creates a new InventoryController.
func NewInventoryController(inventoryService *services.InventoryService) *InventoryController {
	return &InventoryController{inventoryService: inventoryService}
}

// Adjust applies a signed delta to a variant's quantity (staff).
func (ic *InventoryController) Adjust(ctx *gin.Context) {
	actor, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	variantID, err := uuid.Parse(ctx.Param("variantId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid variant ID format"})
		return
	}

	var req models.AdjustInventoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	newQuantity, err := ic.inventoryService.Adjust(ctx.Request.Context(), variantID, req.Delta, actor, req.Reason)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"variant_id": variantID, "quantity": newQuantity})
}

// LowStock lists variants at or below their low-stock threshold.
func (ic *InventoryController) LowStock(ctx *gin.Context) {
	dispensaryID, err := uuid.Parse(ctx.Query("dispensary_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "dispensary_id is required"})
		return
	}

	variants, err := ic.inventoryService.LowStock(ctx.Request.Context(), dispensaryID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"variants": variants})
}
