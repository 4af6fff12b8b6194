package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Business represents an isolated retailer/distributor account.
type Business struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	GSTIN     string    `db:"gstin" json:"gstin"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated user belonging to a business.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	BusinessID   uuid.UUID `db:"business_id" json:"business_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryProduct is a catalog entry. The pricing engine reads it, never
// writes it.
type InventoryProduct struct {
	ID                 uuid.UUID   `db:"id" json:"id"`
	BusinessID         uuid.UUID   `db:"business_id" json:"business_id"`
	SKU                string      `db:"sku" json:"sku"`
	Name               string      `db:"name" json:"name"`
	Brand              string      `db:"brand" json:"brand"`
	Category           string      `db:"category" json:"category"`
	Description        string      `db:"description" json:"description"`
	Unit               string      `db:"unit" json:"unit"`
	PricingMode        PricingMode `db:"pricing_mode" json:"pricing_mode"`
	GSTRate            float64     `db:"gst_rate" json:"gst_rate"`
	MRP                float64     `db:"mrp" json:"mrp"`
	BasePrice          float64     `db:"base_price" json:"base_price"`
	SellingPrice       float64     `db:"selling_price" json:"selling_price"`
	SellingIncludesGST bool        `db:"selling_includes_gst" json:"selling_includes_gst"`
	StockQty           float64     `db:"stock_qty" json:"stock_qty"`
	IsActive           bool        `db:"is_active" json:"is_active"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"`
}

// Customer represents a buyer. Draft customers staged by the voice session
// have a nil ID until they are persisted at finalize.
type Customer struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	Name       string    `db:"name" json:"name"`
	Phone      string    `db:"phone" json:"phone"`
	Email      string    `db:"email" json:"email"`
	Address    string    `db:"address" json:"address"`
	// SearchNeedle is a precomputed lowercase concatenation of name, phone and
	// email used for fuzzy lookup.
	SearchNeedle string    `db:"search_needle" json:"-"`
	IsDraft      bool      `db:"-" json:"is_draft,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice is a finalized bill. Payload carries the full serialized
// {cart lines, settings, customer, totals, payment summary} snapshot;
// the flat columns are denormalized for listing and reporting.
type Invoice struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	BusinessID    uuid.UUID       `db:"business_id" json:"business_id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	InvoiceType   InvoiceType     `db:"invoice_type" json:"invoice_type"`
	CustomerID    *uuid.UUID      `db:"customer_id" json:"customer_id"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	PaymentMode   PaymentMode     `db:"payment_mode" json:"payment_mode"`
	Subtotal      float64         `db:"subtotal" json:"subtotal"`
	TaxTotal      float64         `db:"tax_total" json:"tax_total"`
	GrandTotal    float64         `db:"grand_total" json:"grand_total"`
	Status        InvoiceStatus   `db:"status" json:"status"`
	Payload       json.RawMessage `db:"payload" json:"payload"`
	CreatedBy     uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// MatchCorrection is one entry of the matcher learning log: a user-confirmed
// mapping from a spoken query to a catalog product.
type MatchCorrection struct {
	Query       string    `json:"query"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
