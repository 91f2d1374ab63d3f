package controllers

import (
	"errors"
	"net/http"

	"checkout-service/repository"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy to HTTP responses with a
// specific, actionable reason.
func respondError(c *gin.Context, err error) {
	var invalid *services.InvalidTransitionError
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, services.ErrDeliveryAddressRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery address is required for delivery orders"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{
			"error":       "Invalid status transition",
			"from_status": invalid.From,
			"to_status":   invalid.To,
		})
	case errors.Is(err, services.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflicting concurrent update, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
