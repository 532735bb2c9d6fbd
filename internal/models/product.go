package models

import (
	"time"

	"github.com/oharel/agencyhub/internal/money"
)

// PricingMode describes how a service line is priced. Informational only:
// arithmetic is always quantity * unit price.
type PricingMode string

const (
	PricingFixed   PricingMode = "fixed"
	PricingHourly  PricingMode = "hourly"
	PricingMonthly PricingMode = "monthly"
)

// Product is a catalog entry (service or deliverable) quote lines can reference.
type Product struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	AgencyID    uint         `gorm:"not null;index" json:"agency_id"`
	Agency      Agency       `gorm:"foreignKey:AgencyID" json:"-"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	UnitPrice   money.Amount `gorm:"not null" json:"unit_price"` // minor units
	PricingMode PricingMode  `gorm:"size:10;default:'fixed'" json:"pricing_mode"`
	Active      bool         `gorm:"default:true" json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
