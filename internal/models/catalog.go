package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"sku-reconciliation-service/internal/matching"
)

// ManufacturerProduct is one row of a tenant's manufacturer catalog
type ManufacturerProduct struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID string    `gorm:"type:varchar(255);not null;index:idx_mfr_products_tenant" json:"tenantId"`

	// Position preserves the import order, which is also the output order of a run
	Position  int `gorm:"not null;default:0" json:"position"`
	SourceRow int `gorm:"default:0" json:"sourceRow"`

	SKU string  `gorm:"type:varchar(255);not null;index:idx_mfr_products_sku" json:"manufacturerSku"`
	UPC *string `gorm:"type:varchar(50)" json:"upc,omitempty"`

	// Pricing
	MSRP        decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"msrp"`
	MAP         decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"map"`
	DealerPrice decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"dealerPrice"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ManufacturerProduct
func (ManufacturerProduct) TableName() string {
	return "sku_manufacturer_products"
}

// Item converts the row into the matching engine's input form
func (p ManufacturerProduct) Item() matching.ManufacturerItem {
	item := matching.ManufacturerItem{
		SKU:         p.SKU,
		MSRP:        FloatPtr(p.MSRP),
		MAP:         FloatPtr(p.MAP),
		DealerPrice: FloatPtr(p.DealerPrice),
	}
	if p.UPC != nil {
		item.UPC = *p.UPC
	}
	return item
}

// PlatformListing is one listing in a tenant's catalog for a sales channel
type PlatformListing struct {
	ID       uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID string            `gorm:"type:varchar(255);not null;index:idx_platform_listings_tenant_platform,priority:1" json:"tenantId"`
	Platform matching.Platform `gorm:"type:varchar(50);not null;index:idx_platform_listings_tenant_platform,priority:2" json:"platform"`

	Position  int `gorm:"not null;default:0" json:"position"`
	SourceRow int `gorm:"default:0" json:"sourceRow"`

	SKU       string              `gorm:"type:varchar(255);not null" json:"sku"`
	Price     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price"`
	Cost      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"cost"`
	Condition *string             `gorm:"type:varchar(100)" json:"condition,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for PlatformListing
func (PlatformListing) TableName() string {
	return "sku_platform_listings"
}

// Item converts the listing into the matching engine's input form
func (l PlatformListing) Item() matching.PlatformItem {
	item := matching.PlatformItem{
		SKU:   l.SKU,
		Price: FloatPtr(l.Price),
		Cost:  FloatPtr(l.Cost),
	}
	if l.Condition != nil {
		item.Condition = *l.Condition
	}
	return item
}

// NullMoney converts an optional float amount into a nullable decimal
func NullMoney(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
}

// FloatPtr converts a nullable decimal back into an optional float
func FloatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
