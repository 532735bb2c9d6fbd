package pdf

import (
	"fmt"
	"os"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/money"
)

var (
	white    = props.Color{Red: 255, Green: 255, Blue: 255}
	ink      = props.Color{Red: 31, Green: 41, Blue: 55}
	grayText = props.Color{Red: 107, Green: 114, Blue: 128}
	grayBg   = props.Color{Red: 243, Green: 244, Blue: 246}
)

// tableStyle tunes the shared item table per template variant.
type tableStyle struct {
	headerBg   *props.Color
	headerText props.Color
	striped    bool
	rowLines   bool
}

// logoCol returns an image column when the agency logo exists on disk,
// otherwise an empty column so layouts stay aligned.
func logoCol(size int, path string) core.Col {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return image.NewFromFileCol(size, path, props.Rect{Percent: 90})
		}
	}
	return col.New(size)
}

// metaRows emits the quote number and issue date lines.
func metaRows(m core.Maroto, q *models.Quote, alignment align.Type) {
	m.AddRow(5, text.NewCol(12, fmt.Sprintf("Quote #%d", q.Number),
		props.Text{Size: 11, Style: fontstyle.Bold, Align: alignment, Color: &ink}))
	m.AddRow(5, text.NewCol(12, "Issued "+formatDate(q.CreatedAt),
		props.Text{Size: 9, Align: alignment, Color: &grayText}))
}

// titleBlock renders the quote title and optional description.
func titleBlock(m core.Maroto, q *models.Quote) {
	m.AddRow(8, text.NewCol(12, q.Title,
		props.Text{Size: 14, Style: fontstyle.Bold, Top: 2, Color: &ink}))
	if q.Description != "" {
		m.AddRow(8, text.NewCol(12, q.Description,
			props.Text{Size: 9, Top: 1, Color: &grayText}))
	}
}

// recipientBlock renders the denormalized recipient details plus the validity
// date. Validity gets its own emphasized line: it is legally relevant.
func recipientBlock(m core.Maroto, q *models.Quote, accent props.Color) {
	m.AddRow(5, text.NewCol(6, "Prepared for",
		props.Text{Size: 8, Style: fontstyle.Bold, Color: &grayText}))
	m.AddRow(5, text.NewCol(6, q.RecipientName,
		props.Text{Size: 10, Style: fontstyle.Bold, Color: &ink}))
	if q.RecipientEmail != "" {
		m.AddRow(4, text.NewCol(6, q.RecipientEmail,
			props.Text{Size: 8, Color: &grayText}))
	}
	m.AddRow(8, text.NewCol(12, "Valid until "+formatDate(q.ValidUntil),
		props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Color: &accent}))
}

// itemsTable renders the line item table: name, description, quantity, unit
// price and computed total per row. Long item lists flow across pages.
func itemsTable(m core.Maroto, q *models.Quote, style tableStyle) {
	headerProps := func(a align.Type) props.Text {
		return props.Text{Size: 8, Style: fontstyle.Bold, Align: a, Color: &style.headerText, Top: 1.5}
	}
	header := row.New(7).Add(
		text.NewCol(5, "Item", headerProps(align.Left)),
		text.NewCol(2, "Qty", headerProps(align.Center)),
		text.NewCol(2, "Unit price", headerProps(align.Right)),
		text.NewCol(3, "Total", headerProps(align.Right)),
	)
	if style.headerBg != nil {
		header.WithStyle(&props.Cell{BackgroundColor: style.headerBg})
	}
	m.AddRows(header)

	for i, it := range q.Items {
		label := it.Name
		if it.PricingMode == models.PricingHourly {
			label += " (hourly)"
		} else if it.PricingMode == models.PricingMonthly {
			label += " (monthly)"
		}
		r := row.New(6).Add(
			text.NewCol(5, label, props.Text{Size: 9, Color: &ink, Top: 1}),
			text.NewCol(2, fmt.Sprintf("%d", it.Quantity), props.Text{Size: 9, Align: align.Center, Color: &ink, Top: 1}),
			text.NewCol(2, money.Format(it.UnitPrice), props.Text{Size: 9, Align: align.Right, Color: &ink, Top: 1}),
			text.NewCol(3, money.Format(it.Total), props.Text{Size: 9, Align: align.Right, Color: &ink, Top: 1}),
		)
		if style.striped && i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: &grayBg})
		}
		m.AddRows(r)
		if it.Description != "" {
			d := row.New(5).Add(text.NewCol(12, it.Description,
				props.Text{Size: 7.5, Color: &grayText}))
			if style.striped && i%2 == 1 {
				d.WithStyle(&props.Cell{BackgroundColor: &grayBg})
			}
			m.AddRows(d)
		}
		if style.rowLines {
			m.AddRows(line.NewRow(1, props.Line{Color: &grayBg, Thickness: 0.2, SizePercent: 100}))
		}
	}
}

// totalsBlock renders subtotal, VAT and total using document money formatting.
func totalsBlock(m core.Maroto, q *models.Quote, accent props.Color) {
	label := props.Text{Size: 9, Align: align.Right, Color: &grayText, Top: 1}
	value := props.Text{Size: 9, Align: align.Right, Color: &ink, Top: 1}
	m.AddRow(6,
		col.New(7),
		text.NewCol(2, "Subtotal", label),
		text.NewCol(3, money.FormatILS(q.Subtotal), value),
	)
	m.AddRow(6,
		col.New(7),
		text.NewCol(2, fmt.Sprintf("VAT (%d%%)", money.VATPercent), label),
		text.NewCol(3, money.FormatILS(q.VATAmount), value),
	)
	m.AddRow(8,
		col.New(7),
		text.NewCol(2, "Total", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Color: &accent, Top: 1}),
		text.NewCol(3, money.FormatILS(q.Total), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Color: &accent, Top: 1}),
	)
}

// notesBlock renders free-text notes when present.
func notesBlock(m core.Maroto, q *models.Quote) {
	if q.Notes == "" {
		return
	}
	m.AddRow(6, text.NewCol(12, "Notes",
		props.Text{Size: 8, Style: fontstyle.Bold, Top: 3, Color: &grayText}))
	m.AddRow(10, text.NewCol(12, q.Notes,
		props.Text{Size: 8.5, Color: &ink}))
}

// footerBlock closes the document with agency contact details.
func footerBlock(m core.Maroto, b Branding, accent props.Color) {
	m.AddRows(line.NewRow(2, props.Line{Color: &accent, Thickness: 0.3, SizePercent: 100}))
	contact := b.Name
	if b.Email != "" {
		contact += "  |  " + b.Email
	}
	if b.Phone != "" {
		contact += "  |  " + b.Phone
	}
	if b.Website != "" {
		contact += "  |  " + b.Website
	}
	m.AddRow(6, text.NewCol(12, contact,
		props.Text{Size: 7.5, Align: align.Center, Color: &grayText, Top: 1}))
	m.AddRow(5, text.NewCol(12, "Thank you for your business.",
		props.Text{Size: 7.5, Align: align.Center, Style: fontstyle.Italic, Color: &grayText}))
}
