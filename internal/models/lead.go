package models

import "time"

// LeadStatus tracks a lead through the pipeline.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// Lead is a prospect that may be converted into a Client. Quotes can be
// addressed to a lead before any client record exists.
type Lead struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AgencyID    uint       `gorm:"not null;index" json:"agency_id"`
	Agency      Agency     `gorm:"foreignKey:AgencyID" json:"-"`
	Name        string     `gorm:"not null;index" json:"name"`
	ContactName string     `json:"contact_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Source      string     `json:"source,omitempty"` // referral, website, campaign, ...
	Status      LeadStatus `gorm:"size:20;default:'new'" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	// Set when the lead is converted; the lead record is kept for history.
	ConvertedClientID *uint     `json:"converted_client_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
