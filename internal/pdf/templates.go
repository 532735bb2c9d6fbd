package pdf

import (
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/oharel/agencyhub/internal/models"
)

// modernTemplate: full-width accent band header, striped item table.
func modernTemplate(m core.Maroto, q *models.Quote, b Branding, accent props.Color) {
	m.AddRows(row.New(14).WithStyle(&props.Cell{BackgroundColor: &accent}).Add(
		logoCol(2, b.LogoPath),
		text.NewCol(10, b.Name, props.Text{
			Size: 16, Style: fontstyle.Bold, Color: &white, Top: 4,
		}),
	))
	m.AddRow(4, col.New(12))
	metaRows(m, q, align.Left)
	titleBlock(m, q)
	recipientBlock(m, q, accent)
	m.AddRow(3, col.New(12))
	itemsTable(m, q, tableStyle{headerBg: &accent, headerText: white, striped: true})
	m.AddRow(3, col.New(12))
	totalsBlock(m, q, accent)
	notesBlock(m, q)
	footerBlock(m, b, accent)
}

// classicTemplate: centered letterhead, rule under the header, lined table rows.
func classicTemplate(m core.Maroto, q *models.Quote, b Branding, accent props.Color) {
	m.AddRows(row.New(12).Add(
		logoCol(3, b.LogoPath),
		text.NewCol(6, b.Name, props.Text{
			Size: 15, Style: fontstyle.Bold, Align: align.Center, Color: &ink, Top: 3,
		}),
		col.New(3),
	))
	if b.Address != "" {
		m.AddRow(4, text.NewCol(12, b.Address,
			props.Text{Size: 8, Align: align.Center, Color: &grayText}))
	}
	m.AddRows(line.NewRow(3, props.Line{Color: &accent, Thickness: 0.6, SizePercent: 100}))
	metaRows(m, q, align.Center)
	titleBlock(m, q)
	recipientBlock(m, q, accent)
	m.AddRow(3, col.New(12))
	itemsTable(m, q, tableStyle{headerBg: &grayBg, headerText: ink, rowLines: true})
	m.AddRow(3, col.New(12))
	totalsBlock(m, q, accent)
	notesBlock(m, q)
	footerBlock(m, b, accent)
}

// minimalTemplate: no banding at all, accent used only for the validity line
// and the grand total.
func minimalTemplate(m core.Maroto, q *models.Quote, b Branding, accent props.Color) {
	m.AddRows(row.New(10).Add(
		text.NewCol(8, b.Name, props.Text{
			Size: 13, Style: fontstyle.Bold, Color: &ink, Top: 2,
		}),
		logoCol(4, b.LogoPath),
	))
	metaRows(m, q, align.Left)
	titleBlock(m, q)
	recipientBlock(m, q, accent)
	m.AddRow(3, col.New(12))
	itemsTable(m, q, tableStyle{headerText: ink})
	m.AddRow(3, col.New(12))
	totalsBlock(m, q, accent)
	notesBlock(m, q)
	footerBlock(m, b, accent)
}
