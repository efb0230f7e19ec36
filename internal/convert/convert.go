// Package convert turns non-readable originals (images, PDFs, DOCX,
// spreadsheets) into plain-text or markdown renditions under the
// derived-output subtree. Conversion is per-file and best-effort: one
// bad file is logged and skipped, the batch continues.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Converter produces a text rendition of one source file.
type Converter interface {
	Convert(ctx context.Context, src string) ([]byte, error)
}

// ForFile returns the converter for a filename, or false when the
// format needs no conversion (already readable) or is unsupported.
func ForFile(filename string) (Converter, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tiff":
		return &OCRConverter{}, true
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: true}, true
	case ".docx", ".doc":
		return &DOCXConverter{}, true
	case ".xlsx":
		return &XLSXConverter{}, true
	default:
		return nil, false
	}
}

// OutputName maps an original filename to its derived artifact name:
// image and spreadsheet dumps become <stem>.txt, document extractions
// become <stem>.md.
func OutputName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".doc":
		return stem + ".md"
	default:
		return stem + ".txt"
	}
}

// IsConvertible reports whether the convert stage handles this file.
func IsConvertible(filename string) bool {
	_, ok := ForFile(filename)
	return ok
}

func emptyOutputErr(src string) error {
	return fmt.Errorf("conversion produced no text for %s", filepath.Base(src))
}
