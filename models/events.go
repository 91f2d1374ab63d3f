package models

import "time"

// Compliance event types published to the regulatory sink.
const (
	EventSale                = "sale"
	EventStatusChange        = "order_status_change"
	EventInventoryAdjustment = "inventory_adjustment"
)

// ComplianceSaleEvent carries the full order graph for the regulatory
// record of a completed checkout.
type ComplianceSaleEvent struct {
	EventType      string     `json:"event_type"`
	OrderID        string     `json:"order_id"`
	OrderNumber    string     `json:"order_number"`
	TenantID       string     `json:"tenant_id"`
	DispensaryID   string     `json:"dispensary_id"`
	PerformedBy    string     `json:"performed_by"`
	SubtotalCents  int64      `json:"subtotal_cents"`
	TaxCents       int64      `json:"tax_cents"`
	ExciseTaxCents int64      `json:"excise_tax_cents"`
	TotalCents     int64      `json:"total_cents"`
	Items          []SaleItem `json:"items"`
	Timestamp      time.Time  `json:"timestamp"`
}

// SaleItem is one compliance line of a sale event.
type SaleItem struct {
	VariantID      string `json:"variant_id"`
	ProductName    string `json:"product_name"`
	VariantName    string `json:"variant_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	BatchNumber    string `json:"batch_number"`
	LicenseNumber  string `json:"license_number"`
}

// ComplianceAuditEvent is the generic audit entry (status changes,
// inventory adjustments when that granularity is enabled).
type ComplianceAuditEvent struct {
	EventType    string            `json:"event_type"`
	DispensaryID string            `json:"dispensary_id"`
	OrderID      string            `json:"order_id,omitempty"`
	PerformedBy  string            `json:"performed_by"`
	Details      map[string]string `json:"details"`
	Timestamp    time.Time         `json:"timestamp"`
}
