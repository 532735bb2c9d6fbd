package handlers

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/i18n"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/money"
	"github.com/oharel/agencyhub/internal/services"
	"github.com/oharel/agencyhub/internal/signature"
)

// PublicHandler serves the unauthenticated quote portal. Everything here is
// addressed by opaque token; any lookup failure collapses to the same 404.
type PublicHandler struct {
	Quotes *services.QuoteService
}

func NewPublicHandler(quotes *services.QuoteService) *PublicHandler {
	return &PublicHandler{Quotes: quotes}
}

func (h *PublicHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /public/quotes/{token}", h.view)
	mux.HandleFunc("POST /public/quotes/{token}/track-view", h.trackView)
	mux.HandleFunc("POST /public/quotes/{token}/approve", h.approve)
	mux.HandleFunc("POST /public/quotes/{token}/reject", h.reject)
}

type publicItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`
}

// publicQuote is the client-facing projection. No internal ids, no recipient
// email, no view counters.
type publicQuote struct {
	Number        int          `json:"number"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	AgencyName    string       `json:"agency_name"`
	AgencyLogo    string       `json:"agency_logo,omitempty"`
	AccentColor   string       `json:"accent_color"`
	RecipientName string       `json:"recipient_name"`
	Items         []publicItem `json:"items"`
	Subtotal      int64        `json:"subtotal"`
	VATAmount     int64        `json:"vat_amount"`
	Total         int64        `json:"total"`
	TotalDisplay  string       `json:"total_display"`
	ValidUntil    string       `json:"valid_until"`
	Notes         string       `json:"notes,omitempty"`
	Status        string       `json:"status"`
	StatusLabel   string       `json:"status_label"`
	Notice        string       `json:"notice,omitempty"`
	SignedAt      *time.Time   `json:"signed_at,omitempty"`
}

func (h *PublicHandler) project(q *models.Quote, lang string) publicQuote {
	var agency models.Agency
	_ = h.Quotes.DB.First(&agency, q.AgencyID).Error

	items := make([]publicItem, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, publicItem{
			Name: it.Name, Description: it.Description,
			Quantity: it.Quantity, UnitPrice: int64(it.UnitPrice), Total: int64(it.Total),
		})
	}

	status := h.Quotes.DisplayStatusNow(q)
	out := publicQuote{
		Number:        q.Number,
		Title:         q.Title,
		Description:   q.Description,
		AgencyName:    agency.Name,
		AgencyLogo:    agency.LogoPath,
		AccentColor:   agency.AccentColor,
		RecipientName: q.RecipientName,
		Items:         items,
		Subtotal:      int64(q.Subtotal),
		VATAmount:     int64(q.VATAmount),
		Total:         int64(q.Total),
		TotalDisplay:  money.FormatILS(q.Total),
		ValidUntil:    q.ValidUntil.Format("2006-01-02"),
		Notes:         q.Notes,
		Status:        string(status),
		StatusLabel:   i18n.T(lang, "quote.status."+string(status)),
	}
	switch status {
	case models.QuoteStatusApproved:
		out.Notice = i18n.T(lang, "quote.approved_notice")
		if q.Signature != nil {
			out.SignedAt = &q.Signature.SignedAt
		}
	case models.QuoteStatusRejected:
		out.Notice = i18n.T(lang, "quote.rejected_notice")
	case models.QuoteStatusExpired:
		out.Notice = i18n.T(lang, "quote.expired_notice")
	}
	return out
}

func (h *PublicHandler) view(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quotes.PublicView(r.PathValue("token"))
	if err != nil {
		publicError(w, err)
		return
	}
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	httpx.JSON(w, http.StatusOK, h.project(q, lang))
}

func (h *PublicHandler) trackView(w http.ResponseWriter, r *http.Request) {
	if err := h.Quotes.TrackView(r.PathValue("token")); err != nil {
		publicError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type approveRequest struct {
	Signature string `json:"signature"` // data URI
}

func (h *PublicHandler) approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := h.Quotes.Approve(r.PathValue("token"), req.Signature, clientIP(r), r.UserAgent())
	if err != nil {
		publicError(w, err)
		return
	}
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	httpx.JSON(w, http.StatusOK, h.project(q, lang))
}

func (h *PublicHandler) reject(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quotes.Reject(r.PathValue("token"))
	if err != nil {
		publicError(w, err)
		return
	}
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	httpx.JSON(w, http.StatusOK, h.project(q, lang))
}

// publicError never distinguishes unknown tokens from malformed ones, and
// never leaks internals to anonymous callers.
func publicError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrAlreadyProcessed):
		httpx.JSONError(w, http.StatusConflict, "already_processed", nil)
	case errors.Is(err, services.ErrExpired):
		httpx.JSONError(w, http.StatusConflict, "expired", nil)
	case errors.Is(err, signature.ErrEmptySignature):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "signature_required", nil)
	case errors.Is(err, signature.ErrInvalidSignature):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "signature_invalid", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "could_not_complete", nil)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
