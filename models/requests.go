package models

import "github.com/google/uuid"

// CheckoutRequest carries the fulfillment details for a checkout; the
// cart contents come from the user's cart for the dispensary.
type CheckoutRequest struct {
	DispensaryID    uuid.UUID       `json:"dispensary_id" binding:"required"`
	FulfillmentType FulfillmentType `json:"fulfillment_type" binding:"required,oneof=pickup delivery"`
	CustomerName    string          `json:"customer_name" binding:"required"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerEmail   string          `json:"customer_email" binding:"omitempty,email"`
	DeliveryAddress string          `json:"delivery_address"`
	Notes           string          `json:"notes"`
}

// TransitionRequest asks the state machine for a status change.
type TransitionRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Notes  string      `json:"notes"`
}

// AddCartItemRequest adds a variant to the user's cart. The unit price
// is snapshotted from the catalog at add time.
type AddCartItemRequest struct {
	DispensaryID uuid.UUID `json:"dispensary_id" binding:"required"`
	VariantID    uuid.UUID `json:"variant_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
}

// AdjustInventoryRequest applies a signed delta to a variant's on-hand
// quantity.
type AdjustInventoryRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// CartSummaryItem is one cart line with its variant snapshot resolved.
type CartSummaryItem struct {
	VariantID      uuid.UUID `json:"variant_id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	VariantName    string    `json:"variant_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
	BatchNumber    string    `json:"batch_number"`
	LicenseNumber  string    `json:"license_number"`
}

// CartSummary is what the checkout engine consumes from the cart store.
type CartSummary struct {
	Items         []CartSummaryItem `json:"items"`
	SubtotalCents int64             `json:"subtotal_cents"`
}
