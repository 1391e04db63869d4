package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainText reads text files. Content that is not valid UTF-8 is decoded as Windows-1252,
// the usual encoding of text exported by older German office tools.
type PlainText struct{}

// NewPlainText creates a PlainText extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

func (PlainText) Extract(_ context.Context, path string) (models.RawDocumentText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawDocumentText{}, fmt.Errorf("document: failed to read %s: %w", path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		if data, err = charmap.Windows1252.NewDecoder().Bytes(data); err != nil {
			return models.RawDocumentText{}, fmt.Errorf("document: failed to decode %s: %w", path, err)
		}
	}

	return models.NewRawDocumentText(splitPages(string(data))...), nil
}
