package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrorFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrorFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

const (
	// DefaultSize is the size in pixels used when no size is specified
	DefaultSize = 256
	// DefaultMargin is the quiet zone in modules recommended by ISO/IEC 18004.
	DefaultMargin = 4
)

// Generate creates a QR code image in PNG format with the library's default quiet zone.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}
	return png, nil
}

// GenerateWithMargin renders a size x size PNG with a quiet zone of margin modules.
// A negative margin selects DefaultMargin. When size is too small to fit one pixel
// per module the image grows to the smallest size that does.
func GenerateWithMargin(content string, size, margin int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	if margin < 0 {
		margin = DefaultMargin
	}

	q, err := skipqrcode.New(content, skipqrcode.Medium)
	if err != nil {
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	modules := len(bitmap) + 2*margin
	scale := max(size/modules, 1)
	side := max(size, modules*scale)
	offset := (side-modules*scale)/2 + margin*scale

	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{color.White, color.Black})
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			for dy := range scale {
				for dx := range scale {
					img.SetColorIndex(offset+x*scale+dx, offset+y*scale+dy, 1)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}
	return buf.Bytes(), nil
}

// GenerateBase64Image creates a data URI of a QR code image with the given content.
//
// Use the result directly in an HTML template:
//
//	<img src="{{.QrCode}}">
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return DataURI(png), nil
}

// DataURI wraps PNG bytes into a data:image/png;base64 URI.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
