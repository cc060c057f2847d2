// Package statement turns raw statement input into the single text blob the
// parsers scan.
package statement

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned for file types that cannot be decoded to text.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n")

// Normalize collapses line endings and page breaks to newlines. It does not validate.
func Normalize(text string) string {
	return newlineReplacer.Replace(text)
}

// NormalizePages joins page-by-page text into one blob.
func NormalizePages(pages []string) string {
	normalized := make([]string, len(pages))
	for i, p := range pages {
		normalized[i] = Normalize(p)
	}
	return strings.Join(normalized, "\n")
}

// FromFile decodes file bytes by extension and normalizes the result.
func FromFile(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".csv", ".ofx", ".qfx", "":
		return Normalize(string(bytes.TrimPrefix(data, utf8BOM))), nil
	case ".pdf":
		pages, err := pdfPages(data)
		if err != nil {
			return "", fmt.Errorf("FromFile: %s: %w", name, err)
		}
		return NormalizePages(pages), nil
	default:
		return "", fmt.Errorf("FromFile: %s: %w", name, ErrUnsupportedFormat)
	}
}

// IsImage reports whether name looks like a receipt photo rather than a statement.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic":
		return true
	}
	return false
}

// ImageMIMEType maps an image file name to its MIME type.
func ImageMIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

func pdfPages(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdfPages: open: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdfPages: page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
