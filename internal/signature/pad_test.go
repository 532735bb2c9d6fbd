package signature

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"bytes"
	"strings"
	"testing"
)

func TestExportEmptyPad(t *testing.T) {
	p := NewPad(200, 100)
	if _, err := p.Export(); err != ErrEmptySignature {
		t.Fatalf("expected ErrEmptySignature, got %v", err)
	}
	// moves without a press must not draw
	p.ContinueStroke(Point{X: 50, Y: 50})
	if !p.IsEmpty() {
		t.Fatal("pad should stay empty after move without press")
	}
}

func TestExportDecodeRoundTrip(t *testing.T) {
	p := NewPad(200, 100)
	p.StartStroke(Point{X: 20, Y: 50})
	p.ContinueStroke(Point{X: 80, Y: 40})
	p.ContinueStroke(Point{X: 150, Y: 60})
	p.EndStroke()

	uri, err := p.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}
	img, err := Decode(uri)
	if err != nil {
		t.Fatalf("decode exported signature: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestClearDiscardsStrokes(t *testing.T) {
	p := NewPad(0, 0) // defaults
	p.StartStroke(Point{X: 10, Y: 10})
	p.ContinueStroke(Point{X: 30, Y: 30})
	p.EndStroke()
	p.Clear()
	if _, err := p.Export(); err != ErrEmptySignature {
		t.Fatalf("expected ErrEmptySignature after clear, got %v", err)
	}
}

func TestSingleTapCountsAsContent(t *testing.T) {
	p := NewPad(100, 100)
	p.StartStroke(Point{X: 50, Y: 50})
	p.EndStroke()
	if _, err := p.Export(); err != nil {
		t.Fatalf("single tap should export: %v", err)
	}
}

func TestDecodeRejectsBlankImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	if _, err := Decode(uri); err != ErrEmptySignature {
		t.Fatalf("expected ErrEmptySignature for blank image, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not a data uri",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,!!!notbase64!!!",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text payload")),
	}
	for _, c := range cases {
		if _, err := Decode(c); err == nil {
			t.Errorf("Decode(%.30q) unexpectedly succeeded", c)
		}
	}
}
