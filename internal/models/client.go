package models

import "time"

// Client is a company the agency bills and runs projects for.
type Client struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AgencyID    uint      `gorm:"not null;index" json:"agency_id"`
	Agency      Agency    `gorm:"foreignKey:AgencyID" json:"-"`
	Name        string    `gorm:"not null;index" json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `gorm:"index" json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Website     string    `json:"website,omitempty"`
	Address     string    `json:"address,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"` // registered business number printed on documents
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
