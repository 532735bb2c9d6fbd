package pdf

import (
	"errors"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/oharel/agencyhub/internal/models"
)

// ErrRenderFailed wraps any failure inside document generation. Rendering is
// pure, so the caller may retry the whole operation from scratch.
var ErrRenderFailed = errors.New("render_failed")

// Branding carries the agency fields the renderer needs.
type Branding struct {
	Name        string
	LogoPath    string
	Template    string
	AccentColor string
	Email       string
	Phone       string
	Website     string
	Address     string
}

// BrandingFor extracts renderer branding from an agency record.
func BrandingFor(a *models.Agency) Branding {
	return Branding{
		Name:        a.Name,
		LogoPath:    a.LogoPath,
		Template:    a.Template,
		AccentColor: a.AccentColor,
		Email:       a.Email,
		Phone:       a.Phone,
		Website:     a.Website,
		Address:     a.Address,
	}
}

// template lays out a full quote document on m. Variants differ in visuals
// only; the section order is fixed for all of them.
type template func(m core.Maroto, q *models.Quote, b Branding, accent props.Color)

var templates = map[string]template{
	"modern":  modernTemplate,
	"classic": classicTemplate,
	"minimal": minimalTemplate,
}

const defaultTemplate = "modern"

// resolve picks the template for a stored preference, falling back to the
// default for empty or unrecognized names. Never fails.
func resolve(name string) template {
	if t, ok := templates[name]; ok {
		return t
	}
	return templates[defaultTemplate]
}

// KnownTemplate reports whether name is a selectable template.
func KnownTemplate(name string) bool {
	_, ok := templates[name]
	return ok
}

// Render produces the quote PDF for the agency's chosen template. It is a pure
// function of its inputs; a partial document is never returned.
func Render(q *models.Quote, b Branding) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrRenderFailed, r)
		}
	}()

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	resolve(b.Template)(m, q, b, parseAccent(b.AccentColor))

	doc, genErr := m.Generate()
	if genErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, genErr)
	}
	return doc.GetBytes(), nil
}

// parseAccent converts "#rrggbb" to a maroto color, defaulting to a blue when
// the stored value is malformed.
func parseAccent(hex string) props.Color {
	fallback := props.Color{Red: 37, Green: 99, Blue: 235}
	if len(hex) != 7 || hex[0] != '#' {
		return fallback
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return props.Color{Red: r, Green: g, Blue: b}
}

// formatDate renders dates in day/month/year order as printed on documents.
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
