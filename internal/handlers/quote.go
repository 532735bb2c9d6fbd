package handlers

import (
	"fmt"
	"net/http"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/services"
)

type QuoteHandler struct {
	Quotes *services.QuoteService
}

func NewQuoteHandler(quotes *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{Quotes: quotes}
}

func (h *QuoteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quotes", h.list)
	mux.HandleFunc("POST /api/quotes", h.create)
	mux.HandleFunc("GET /api/quotes/{id}", h.get)
	mux.HandleFunc("GET /api/quotes/{id}/pdf", h.downloadPDF)
	mux.HandleFunc("POST /api/quotes/{id}/send-email", h.sendEmail)
	mux.HandleFunc("POST /api/quotes/{id}/mark-sent", h.markSent)
}

func (h *QuoteHandler) list(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.Quotes.DB, w, r)
	if !ok {
		return
	}
	limit, offset := listParams(r)
	quotes, total, err := h.Quotes.List(agencyID, limit, offset)
	if err != nil {
		serviceError(w, err)
		return
	}
	// listings carry the derived status so expired quotes read as expired
	items := make([]map[string]any, 0, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		items = append(items, map[string]any{
			"quote":          q,
			"display_status": h.Quotes.DisplayStatusNow(q),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotes": items, "total": total})
}

func (h *QuoteHandler) create(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.Quotes.DB, w, r)
	if !ok {
		return
	}
	var in services.CreateQuoteInput
	if !decodeJSON(w, r, &in) {
		return
	}
	q, err := h.Quotes.Create(agencyID, in)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *QuoteHandler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.Quotes.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := h.Quotes.Get(agencyID, id)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quote":          q,
		"display_status": h.Quotes.DisplayStatusNow(q),
		"public_link":    h.Quotes.PublicLink(q),
	})
}

func (h *QuoteHandler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.Quotes.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	data, q, err := h.Quotes.RenderPDF(agencyID, id)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.PDF(w, fmt.Sprintf("quote-%d.pdf", q.Number), data)
}

func (h *QuoteHandler) sendEmail(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.Quotes.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := h.Quotes.SendEmail(r.Context(), agencyID, id)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) markSent(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.Quotes.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := h.Quotes.MarkSent(agencyID, id)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}
