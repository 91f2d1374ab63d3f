package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductVariant is the purchasable unit of the catalog (e.g. "3.5g").
// The catalog itself is managed elsewhere; this service only reads the
// snapshot fields and mutates Quantity through the inventory ledger.
type ProductVariant struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DispensaryID      uuid.UUID `gorm:"type:uuid;not null;index" json:"dispensary_id"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName       string    `gorm:"not null" json:"product_name"`
	Name              string    `gorm:"not null" json:"name"`
	PriceCents        int64     `gorm:"not null" json:"price_cents"`
	Quantity          int       `gorm:"not null;default:0" json:"quantity"`
	LowStockThreshold int       `gorm:"not null;default:10" json:"low_stock_threshold"`
	BatchNumber       string    `json:"batch_number"`
	LicenseNumber     string    `json:"license_number"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Cart is a user's working set for a single dispensary. It survives
// checkout: items are deleted, the row stays.
type Cart struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_dispensary" json:"user_id"`
	DispensaryID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_dispensary" json:"dispensary_id"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartItem references a variant with the unit price snapshotted at the
// time the item was added, not the live catalog price.
type CartItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID         uuid.UUID `gorm:"type:uuid;not null;index" json:"cart_id"`
	VariantID      uuid.UUID `gorm:"type:uuid;not null" json:"variant_id"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Order is the durable record of a completed purchase. Monetary fields
// never change after creation; only status-related fields mutate.
type Order struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string               `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"tenant_id"`
	DispensaryID    uuid.UUID            `gorm:"type:uuid;not null;index" json:"dispensary_id"`
	SubtotalCents   int64                `gorm:"not null" json:"subtotal_cents"`
	TaxCents        int64                `gorm:"not null" json:"tax_cents"`
	ExciseTaxCents  int64                `gorm:"not null" json:"excise_tax_cents"`
	DiscountCents   int64                `gorm:"not null;default:0" json:"discount_cents"`
	TotalCents      int64                `gorm:"not null" json:"total_cents"`
	Status          OrderStatus          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus        `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	FulfillmentType FulfillmentType      `gorm:"type:varchar(10);not null" json:"fulfillment_type"`
	CustomerName    string               `gorm:"not null" json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	CustomerEmail   string               `json:"customer_email"`
	DeliveryAddress string               `json:"delivery_address,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	ConfirmedAt     *time.Time           `json:"confirmed_at,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	CancelledAt     *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `gorm:"index" json:"-"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	StatusHistory   []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
}

// OrderItem snapshots product and compliance data as they existed at
// purchase time, so later catalog edits never rewrite order history.
type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	VariantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"variant_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName    string    `gorm:"not null" json:"product_name"`
	VariantName    string    `gorm:"not null" json:"variant_name"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	LineTotalCents int64     `gorm:"not null" json:"line_total_cents"`
	BatchNumber    string    `json:"batch_number"`
	LicenseNumber  string    `json:"license_number"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// OrderStatusHistory is an append-only trail entry. FromStatus is nil
// for the initial entry written at checkout.
type OrderStatusHistory struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus *OrderStatus `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   OrderStatus  `gorm:"type:varchar(20);not null" json:"to_status"`
	ChangedBy  uuid.UUID    `gorm:"type:uuid;not null" json:"changed_by"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// OrderSequence backs per-dispensary-per-day order numbering. The seq
// column is only ever moved by an atomic upsert, never read-then-write.
type OrderSequence struct {
	DispensaryID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SeqDate      string    `gorm:"type:varchar(8);primaryKey"` // YYYYMMDD, UTC
	Seq          int       `gorm:"not null;default:0"`
}

// ComplianceOutbox is the durable queue of regulatory events. Rows are
// written inside the same transaction as the change they describe and
// published to the compliance sink after commit.
type ComplianceOutbox struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventType    string          `gorm:"not null;index" json:"event_type"`
	DispensaryID uuid.UUID       `gorm:"type:uuid;not null" json:"dispensary_id"`
	OrderID      *uuid.UUID      `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Payload      json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	Attempts     int             `gorm:"not null;default:0" json:"attempts"`
	LastError    string          `json:"last_error,omitempty"`
	SentAt       *time.Time      `gorm:"index" json:"sent_at,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
