package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/mail"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/money"
	"github.com/oharel/agencyhub/internal/pdf"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// QuoteService owns the quote lifecycle: assembly, numbering, delivery and the
// public approval state machine.
type QuoteService struct {
	DB         *gorm.DB
	Dispatcher mail.Dispatcher
	BaseURL    string
	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func NewQuoteService(db *gorm.DB, dispatcher mail.Dispatcher, baseURL string) *QuoteService {
	return &QuoteService{DB: db, Dispatcher: dispatcher, BaseURL: strings.TrimRight(baseURL, "/"), Now: time.Now}
}

// QuoteItemInput is one line of a quote creation request.
type QuoteItemInput struct {
	ProductID   *uint  `json:"product_id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"min=1"`
	UnitPrice   int64  `json:"unit_price" validate:"min=0"` // minor units
	PricingMode string `json:"pricing_mode" validate:"omitempty,oneof=fixed hourly monthly"`
}

// CreateQuoteInput is the validated shape of a quote creation request.
type CreateQuoteInput struct {
	Title         string           `json:"title" validate:"required"`
	Description   string           `json:"description"`
	RecipientKind string           `json:"recipient_kind" validate:"required,oneof=client lead"`
	RecipientID   uint             `json:"recipient_id" validate:"required"`
	ValidUntil    string           `json:"valid_until" validate:"required"` // YYYY-MM-DD
	Notes         string           `json:"notes"`
	EmailMessage  string           `json:"email_message"`
	Items         []QuoteItemInput `json:"items" validate:"min=1,dive"`
}

// Create validates the input, computes totals, allocates the agency-scoped
// quote number and persists the aggregate in draft status.
func (s *QuoteService) Create(agencyID uint, in CreateQuoteInput) (*models.Quote, error) {
	if err := validate.Struct(in); err != nil {
		return nil, asValidationError(err)
	}
	validUntil, err := time.Parse("2006-01-02", in.ValidUntil)
	if err != nil {
		return nil, newValidationError("valid_until", "invalid_date")
	}

	name, email, err := s.resolveRecipient(agencyID, models.RecipientKind(in.RecipientKind), in.RecipientID)
	if err != nil {
		return nil, err
	}

	items := make([]models.QuoteItem, 0, len(in.Items))
	lineTotals := make([]money.Amount, 0, len(in.Items))
	for i, it := range in.Items {
		total, lineErr := money.Line(it.Quantity, money.Amount(it.UnitPrice))
		if lineErr != nil {
			if errors.Is(lineErr, money.ErrInvalidLineItem) {
				return nil, newValidationError(fmt.Sprintf("items[%d]", i), "invalid_line_item")
			}
			return nil, lineErr
		}
		mode := models.PricingMode(it.PricingMode)
		if mode == "" {
			mode = models.PricingFixed
		}
		items = append(items, models.QuoteItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   money.Amount(it.UnitPrice),
			PricingMode: mode,
			Total:       total,
			Position:    i,
		})
		lineTotals = append(lineTotals, total)
	}
	subtotal, err := money.Sum(lineTotals)
	if err != nil {
		return nil, err
	}
	vat, err := money.Percent(subtotal, money.VATPercent)
	if err != nil {
		return nil, err
	}
	total, err := money.Add(subtotal, vat)
	if err != nil {
		return nil, err
	}

	q := &models.Quote{
		AgencyID:       agencyID,
		PublicToken:    uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		RecipientKind:  models.RecipientKind(in.RecipientKind),
		RecipientName:  name,
		RecipientEmail: email,
		Subtotal:       subtotal,
		VATAmount:      vat,
		Total:          total,
		ValidUntil:     validUntil,
		Notes:          in.Notes,
		EmailMessage:   in.EmailMessage,
		Status:         models.QuoteStatusDraft,
	}
	if q.RecipientKind == models.RecipientClient {
		q.ClientID = &in.RecipientID
	} else {
		q.LeadID = &in.RecipientID
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		n, numErr := nextQuoteNumber(tx, agencyID)
		if numErr != nil {
			return numErr
		}
		q.Number = n
		if createErr := tx.Create(q).Error; createErr != nil {
			return createErr
		}
		for i := range items {
			items[i].QuoteID = q.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	q.Items = items
	return q, nil
}

// nextQuoteNumber claims the next per-agency number. The UPDATE..RETURNING is
// the serialization point: concurrent creations block on the sequence row and
// never see the same value.
func nextQuoteNumber(tx *gorm.DB, agencyID uint) (int, error) {
	if err := tx.Exec(
		"INSERT INTO quote_sequences (agency_id, last_number) VALUES (?, 0) ON CONFLICT (agency_id) DO NOTHING",
		agencyID,
	).Error; err != nil {
		return 0, err
	}
	var n int
	err := tx.Raw(
		"UPDATE quote_sequences SET last_number = last_number + 1 WHERE agency_id = ? RETURNING last_number",
		agencyID,
	).Scan(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *QuoteService) resolveRecipient(agencyID uint, kind models.RecipientKind, id uint) (name, email string, err error) {
	switch kind {
	case models.RecipientClient:
		var c models.Client
		if err := s.DB.Where("agency_id = ?", agencyID).First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", ErrRecipientNotFound
			}
			return "", "", err
		}
		return c.Name, c.Email, nil
	case models.RecipientLead:
		var l models.Lead
		if err := s.DB.Where("agency_id = ?", agencyID).First(&l, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", ErrRecipientNotFound
			}
			return "", "", err
		}
		return l.Name, l.Email, nil
	}
	return "", "", newValidationError("recipient_kind", "invalid")
}

// Get loads an agency's quote with items and signature.
func (s *QuoteService) Get(agencyID, id uint) (*models.Quote, error) {
	var q models.Quote
	err := s.DB.Where("agency_id = ?", agencyID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Signature").
		First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns an agency's quotes, newest first.
func (s *QuoteService) List(agencyID uint, limit, offset int) ([]models.Quote, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var total int64
	if err := s.DB.Model(&models.Quote{}).Where("agency_id = ?", agencyID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var quotes []models.Quote
	err := s.DB.Where("agency_id = ?", agencyID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("id desc").Limit(limit).Offset(offset).Find(&quotes).Error
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// RenderPDF produces the quote document with the agency's branding.
func (s *QuoteService) RenderPDF(agencyID, id uint) ([]byte, *models.Quote, error) {
	q, err := s.Get(agencyID, id)
	if err != nil {
		return nil, nil, err
	}
	var agency models.Agency
	if err := s.DB.First(&agency, agencyID).Error; err != nil {
		return nil, nil, err
	}
	data, err := pdf.Render(q, pdf.BrandingFor(&agency))
	if err != nil {
		return nil, nil, err
	}
	return data, q, nil
}

// PublicLink is the unauthenticated approval URL for a quote.
func (s *QuoteService) PublicLink(q *models.Quote) string {
	return s.BaseURL + "/public/quotes/" + q.PublicToken
}

// SendEmail renders the document, dispatches it to the recipient and only then
// transitions draft -> sent. A failed dispatch leaves the quote untouched.
func (s *QuoteService) SendEmail(ctx context.Context, agencyID, id uint) (*models.Quote, error) {
	q, err := s.Get(agencyID, id)
	if err != nil {
		return nil, err
	}
	if q.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	if q.RecipientEmail == "" {
		return nil, newValidationError("recipient_email", "missing")
	}
	var agency models.Agency
	if err := s.DB.First(&agency, agencyID).Error; err != nil {
		return nil, err
	}
	doc, err := pdf.Render(q, pdf.BrandingFor(&agency))
	if err != nil {
		return nil, err
	}

	link := s.PublicLink(q)
	html := quoteEmailHTML(q, &agency, link)
	msg := mail.Message{
		To:       q.RecipientEmail,
		Subject:  mail.SubjectFor(agency.Name, q.Number),
		HTMLBody: html,
		TextBody: fmt.Sprintf("Quote #%d from %s. Review and respond: %s", q.Number, agency.Name, link),
		Attachments: []mail.Attachment{{
			Filename:    fmt.Sprintf("quote-%d.pdf", q.Number),
			ContentType: "application/pdf",
			Data:        doc,
		}},
	}
	if sendErr := s.Dispatcher.Send(ctx, msg); sendErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, sendErr)
	}
	return s.markSent(q)
}

// MarkSent is the manual fallback when the quote was delivered out of band.
func (s *QuoteService) MarkSent(agencyID, id uint) (*models.Quote, error) {
	q, err := s.Get(agencyID, id)
	if err != nil {
		return nil, err
	}
	if q.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	return s.markSent(q)
}

func (s *QuoteService) markSent(q *models.Quote) (*models.Quote, error) {
	if q.Status == models.QuoteStatusSent {
		return q, nil // re-send of an already sent quote keeps its state
	}
	now := s.Now()
	res := s.DB.Model(&models.Quote{}).
		Where("id = ? AND status = ?", q.ID, models.QuoteStatusDraft).
		Updates(map[string]interface{}{"status": models.QuoteStatusSent, "sent_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// lost a race with a terminal transition
		return nil, ErrAlreadyProcessed
	}
	q.Status = models.QuoteStatusSent
	q.SentAt = &now
	return q, nil
}

func quoteEmailHTML(q *models.Quote, agency *models.Agency, link string) string {
	var b strings.Builder
	b.WriteString("<p>Hello " + q.RecipientName + ",</p>")
	if q.EmailMessage != "" {
		b.WriteString("<p>" + q.EmailMessage + "</p>")
	}
	b.WriteString(fmt.Sprintf("<p>%s has sent you quote #%d: <strong>%s</strong>, totaling %s.</p>",
		agency.Name, q.Number, q.Title, money.FormatILS(q.Total)))
	b.WriteString(fmt.Sprintf(`<p><a href="%s">Review, approve or decline the quote</a> (valid until %s).</p>`,
		link, q.ValidUntil.Format("02/01/2006")))
	b.WriteString("<p>The full document is attached as a PDF.</p>")
	return b.String()
}

// asValidationError flattens validator violations into field -> tag codes.
func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}
