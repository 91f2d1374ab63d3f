package controllers

import (
	"net/http"

	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartController handles the cart working set.
type CartController struct {
	cartService *services.CartService
}

// NewCartController creates a new CartController.
func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// AddItem adds a variant to the user's cart.
func (cc *CartController) AddItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AddCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cart, err := cc.cartService.AddItem(ctx.Request.Context(), userID, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cart": cart})
}

// GetCart returns the priced summary of the user's cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	dispensaryID, err := uuid.Parse(ctx.Query("dispensary_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "dispensary_id is required"})
		return
	}

	summary, err := cc.cartService.GetSummary(ctx.Request.Context(), userID, dispensaryID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// ClearCart empties the user's cart for a dispensary.
func (cc *CartController) ClearCart(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	dispensaryID, err := uuid.Parse(ctx.Query("dispensary_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "dispensary_id is required"})
		return
	}

	if err := cc.cartService.Clear(ctx.Request.Context(), userID, dispensaryID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
