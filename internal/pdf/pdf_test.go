package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/oharel/agencyhub/internal/models"
)

func sampleQuote() *models.Quote {
	return &models.Quote{
		ID:             1,
		Number:         42,
		Title:          "Website redesign",
		Description:    "Full redesign of the marketing site",
		RecipientKind:  models.RecipientClient,
		RecipientName:  "Acme Ltd",
		RecipientEmail: "billing@acme.test",
		Items: []models.QuoteItem{
			{Name: "Design sprint", Description: "Two week discovery sprint", Quantity: 2, UnitPrice: 10000, Total: 20000, PricingMode: models.PricingFixed},
			{Name: "Development", Quantity: 1, UnitPrice: 5000, Total: 5000, PricingMode: models.PricingHourly},
		},
		Subtotal:   25000,
		VATAmount:  4500,
		Total:      29500,
		ValidUntil: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		Notes:      "50% due on approval.",
		Status:     models.QuoteStatusDraft,
		CreatedAt:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderAllTemplates(t *testing.T) {
	for _, name := range []string{"modern", "classic", "minimal"} {
		b := Branding{Name: "Studio North", Template: name, AccentColor: "#2563eb", Email: "hello@studionorth.test"}
		out, err := Render(sampleQuote(), b)
		if err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF")) {
			t.Fatalf("%s: output is not a PDF (first bytes %q)", name, out[:min(8, len(out))])
		}
	}
}

func TestRenderUnknownTemplateFallsBack(t *testing.T) {
	b := Branding{Name: "Studio North", Template: "holographic", AccentColor: "nope"}
	out, err := Render(sampleQuote(), b)
	if err != nil {
		t.Fatalf("render with unknown template should fall back: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty document")
	}
}

func TestRenderLongItemList(t *testing.T) {
	q := sampleQuote()
	q.Items = nil
	for i := 0; i < 80; i++ {
		q.Items = append(q.Items, models.QuoteItem{
			Name: "Recurring retainer hours", Description: "Monthly allocation of production hours",
			Quantity: 3, UnitPrice: 1500, Total: 4500,
		})
	}
	out, err := Render(q, Branding{Name: "Studio North", Template: "classic", AccentColor: "#0f766e"})
	if err != nil {
		t.Fatalf("render long list: %v", err)
	}
	if len(out) < 2000 {
		t.Fatalf("suspiciously small document: %d bytes", len(out))
	}
}

func TestParseAccent(t *testing.T) {
	c := parseAccent("#ff8000")
	if c.Red != 255 || c.Green != 128 || c.Blue != 0 {
		t.Fatalf("parseAccent = %+v", c)
	}
	fb := parseAccent("")
	if fb.Red != 37 || fb.Green != 99 || fb.Blue != 235 {
		t.Fatalf("fallback = %+v", fb)
	}
	if bad := parseAccent("#zzzzzz"); bad != fb {
		t.Fatalf("malformed hex should fall back, got %+v", bad)
	}
}
