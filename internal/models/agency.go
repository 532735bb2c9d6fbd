package models

import "time"

// Agency is the tenant root. Every other record hangs off an agency and all
// queries are scoped by its ID.
type Agency struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`

	// Document branding. Template names a quote layout; unknown values fall
	// back to the default at render time.
	LogoPath    string `json:"logo_path,omitempty"`
	Template    string `gorm:"size:20;default:'modern'" json:"template"`
	AccentColor string `gorm:"size:10;default:'#2563eb'" json:"accent_color"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
