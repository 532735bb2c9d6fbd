package models

import (
	"time"

	"github.com/oharel/agencyhub/internal/money"
)

// QuoteStatus is the stored quote state. "expired" is never stored: it is a
// read-time overlay computed by DisplayStatus.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"

	// QuoteStatusExpired is display-only, see Quote.DisplayStatus.
	QuoteStatusExpired QuoteStatus = "expired"
)

// RecipientKind discriminates the quote recipient reference.
type RecipientKind string

const (
	RecipientClient RecipientKind = "client"
	RecipientLead   RecipientKind = "lead"
)

// Quote is a financial proposal with computed totals and an approval lifecycle.
type Quote struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	AgencyID uint `gorm:"not null;index:idx_quote_agency_number,unique,priority:1" json:"agency_id"`
	// Number is sequential per agency and immutable once assigned.
	Number int `gorm:"not null;index:idx_quote_agency_number,unique,priority:2" json:"number"`
	// PublicToken addresses the unauthenticated approval endpoint.
	PublicToken string `gorm:"size:36;not null;uniqueIndex" json:"-"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	RecipientKind RecipientKind `gorm:"size:10;not null" json:"recipient_kind"`
	ClientID      *uint         `gorm:"index" json:"client_id,omitempty"`
	LeadID        *uint         `gorm:"index" json:"lead_id,omitempty"`
	// Denormalized at creation so the issued document stays stable even if the
	// client/lead record changes later.
	RecipientName  string `gorm:"not null" json:"recipient_name"`
	RecipientEmail string `json:"recipient_email,omitempty"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID" json:"items,omitempty"`

	Subtotal  money.Amount `gorm:"not null" json:"subtotal"`
	VATAmount money.Amount `gorm:"not null" json:"vat_amount"`
	Total     money.Amount `gorm:"not null" json:"total"`

	ValidUntil   time.Time `gorm:"not null" json:"valid_until"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	EmailMessage string    `gorm:"type:text" json:"email_message,omitempty"`

	Status QuoteStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	SentAt        *time.Time `json:"sent_at,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	FirstViewedAt *time.Time `json:"first_viewed_at,omitempty"`
	LastViewedAt  *time.Time `json:"last_viewed_at,omitempty"`
	ViewCount     int        `gorm:"default:0" json:"view_count"`

	Signature *QuoteSignature `gorm:"foreignKey:QuoteID" json:"signature,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the quote reached approved or rejected.
func (q *Quote) IsTerminal() bool {
	return q.Status == QuoteStatusApproved || q.Status == QuoteStatusRejected
}

// IsExpired reports whether the validity date has passed while the quote is
// still awaiting a decision. Drafts and terminal quotes are never expired.
func (q *Quote) IsExpired(now time.Time) bool {
	if q.Status != QuoteStatusSent {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return q.ValidUntil.Before(today)
}

// DisplayStatus is the stored status with the expired overlay applied.
func (q *Quote) DisplayStatus(now time.Time) QuoteStatus {
	if q.IsExpired(now) {
		return QuoteStatusExpired
	}
	return q.Status
}

// QuoteItem is one priced row of a quote. Total is always recomputed from
// Quantity * UnitPrice when the quote is assembled.
type QuoteItem struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	QuoteID     uint         `gorm:"not null;index" json:"quote_id"`
	ProductID   *uint        `gorm:"index" json:"product_id,omitempty"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	UnitPrice   money.Amount `gorm:"not null" json:"unit_price"`
	PricingMode PricingMode  `gorm:"size:10;default:'fixed'" json:"pricing_mode"`
	Total       money.Amount `gorm:"not null" json:"total"`
	Position    int          `gorm:"default:0" json:"position"`
}

// QuoteSignature is the immutable proof of consent captured at approval.
type QuoteSignature struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	QuoteID      uint      `gorm:"not null;uniqueIndex" json:"quote_id"`
	ImageDataURI string    `gorm:"type:text;not null" json:"image_data_uri"`
	SignedAt     time.Time `gorm:"not null" json:"signed_at"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	UserAgent    string    `gorm:"size:512" json:"user_agent"`
}

// QuoteSequence serializes per-agency quote numbering. LastNumber is the most
// recently allocated number; a new number is claimed with a single
// UPDATE ... RETURNING inside the creation transaction.
type QuoteSequence struct {
	AgencyID   uint `gorm:"primaryKey"`
	LastNumber int  `gorm:"not null;default:0"`
}
