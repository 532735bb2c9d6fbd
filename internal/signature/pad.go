package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"
)

var (
	// ErrEmptySignature is returned when exporting or submitting a signature
	// with no drawn content.
	ErrEmptySignature = errors.New("empty_signature")
	// ErrInvalidSignature is returned for payloads that are not a decodable image.
	ErrInvalidSignature = errors.New("invalid_signature")
)

// Point is a normalized pointer position. Mouse and touch sources are mapped
// to the same representation before reaching the pad.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is an ordered freehand path.
type Stroke []Point

// Pad accumulates freehand strokes (idle -> drawing -> idle) and rasterizes
// them on export. It is not safe for concurrent use; one pad serves one
// signing interaction.
type Pad struct {
	width, height int
	strokeWidth   float64
	strokes       []Stroke
	current       Stroke
	drawing       bool
}

const (
	defaultWidth       = 400
	defaultHeight      = 160
	defaultStrokeWidth = 2.5
)

// NewPad returns a pad with the given canvas size in pixels.
func NewPad(width, height int) *Pad {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &Pad{width: width, height: height, strokeWidth: defaultStrokeWidth}
}

// StartStroke begins a new stroke at p. An unfinished stroke is committed first.
func (p *Pad) StartStroke(pt Point) {
	if p.drawing {
		p.EndStroke()
	}
	p.drawing = true
	p.current = Stroke{p.clamp(pt)}
}

// ContinueStroke extends the active stroke. Ignored while idle, so stray move
// events before a press cannot draw.
func (p *Pad) ContinueStroke(pt Point) {
	if !p.drawing {
		return
	}
	p.current = append(p.current, p.clamp(pt))
}

// EndStroke commits the active stroke and returns the pad to idle.
func (p *Pad) EndStroke() {
	if !p.drawing {
		return
	}
	if len(p.current) > 0 {
		p.strokes = append(p.strokes, p.current)
	}
	p.current = nil
	p.drawing = false
}

// Clear discards all strokes, including an active one.
func (p *Pad) Clear() {
	p.strokes = nil
	p.current = nil
	p.drawing = false
}

// IsEmpty reports whether nothing has been drawn. A single tap (one point)
// counts as content: it renders as a dot.
func (p *Pad) IsEmpty() bool {
	return len(p.strokes) == 0 && len(p.current) == 0
}

// Export rasterizes the drawing to a PNG data URI on a white background.
// An empty pad refuses to export.
func (p *Pad) Export() (string, error) {
	if p.IsEmpty() {
		return "", ErrEmptySignature
	}
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	ink := image.NewUniform(color.RGBA{0x1f, 0x29, 0x37, 0xff})
	all := p.strokes
	if len(p.current) > 0 {
		all = append(append([]Stroke{}, p.strokes...), p.current)
	}
	for _, s := range all {
		rasterizeStroke(img, s, p.strokeWidth, ink)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (p *Pad) clamp(pt Point) Point {
	pt.X = math.Min(math.Max(pt.X, 0), float64(p.width))
	pt.Y = math.Min(math.Max(pt.Y, 0), float64(p.height))
	return pt
}

// rasterizeStroke fills each segment as an oriented quad (plus square dots for
// single points) using the x/image vector rasterizer.
func rasterizeStroke(dst *image.RGBA, s Stroke, width float64, src image.Image) {
	if len(s) == 0 {
		return
	}
	r := vector.NewRasterizer(dst.Bounds().Dx(), dst.Bounds().Dy())
	half := width / 2
	if len(s) == 1 {
		pt := s[0]
		r.MoveTo(float32(pt.X-half), float32(pt.Y-half))
		r.LineTo(float32(pt.X+half), float32(pt.Y-half))
		r.LineTo(float32(pt.X+half), float32(pt.Y+half))
		r.LineTo(float32(pt.X-half), float32(pt.Y+half))
		r.ClosePath()
	}
	for i := 0; i+1 < len(s); i++ {
		a, b := s[i], s[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// unit normal scaled to half the stroke width
		nx, ny := -dy/length*half, dx/length*half
		r.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		r.LineTo(float32(b.X+nx), float32(b.Y+ny))
		r.LineTo(float32(b.X-nx), float32(b.Y-ny))
		r.LineTo(float32(a.X-nx), float32(a.Y-ny))
		r.ClosePath()
	}
	r.Draw(dst, dst.Bounds(), src, image.Point{})
}
