package signature

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"
)

// MaxEncodedBytes bounds the accepted signature payload (base64 portion).
const MaxEncodedBytes = 1 << 20

var allowedMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Decode validates a signature submitted as a data URI. The format is sniffed
// from the decoded bytes rather than the URI prefix. A decodable image with no
// visible ink is rejected with ErrEmptySignature, so a blank canvas can never
// become proof of consent.
func Decode(dataURI string) (image.Image, error) {
	dataURI = strings.TrimSpace(dataURI)
	if dataURI == "" {
		return nil, ErrEmptySignature
	}
	idx := strings.Index(dataURI, ",")
	if !strings.HasPrefix(dataURI, "data:image/") || idx < 0 {
		return nil, ErrInvalidSignature
	}
	if !strings.Contains(dataURI[:idx], ";base64") {
		return nil, ErrInvalidSignature
	}
	encoded := dataURI[idx+1:]
	if len(encoded) > MaxEncodedBytes {
		return nil, ErrInvalidSignature
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if detected := http.DetectContentType(raw); !allowedMIME[detected] {
		return nil, ErrInvalidSignature
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if isBlank(img) {
		return nil, ErrEmptySignature
	}
	return img, nil
}

// isBlank reports whether every pixel is fully transparent or near-white.
func isBlank(img image.Image) bool {
	b := img.Bounds()
	const nearWhite = 0xf000 // 16-bit channel threshold
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			if r < nearWhite || g < nearWhite || bl < nearWhite {
				return false
			}
		}
	}
	return true
}

func init() {
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
}
