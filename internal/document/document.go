// Package document turns an input file into page-ordered text.
package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// Extractor reads one document file.
type Extractor interface {
	Extract(ctx context.Context, path string) (models.RawDocumentText, error)
}

// NewExtractor picks an Extractor by file extension. pdftotextPath may be empty.
func NewExtractor(path string, pdftotextPath string) (Extractor, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return NewPdfToText(pdftotextPath, nil), nil
	case ".txt", ".text", "":
		return NewPlainText(), nil
	default:
		return nil, fmt.Errorf("document: unsupported file type %q", ext)
	}
}

// splitPages splits on form feed and drops the empty tail left by a trailing separator.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	return pages
}
