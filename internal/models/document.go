package models

import "strings"

// RawDocumentText is the page-ordered text of one imported document.
type RawDocumentText struct {
	Pages []string
}

// NewRawDocumentText wraps the given pages.
func NewRawDocumentText(pages ...string) RawDocumentText {
	return RawDocumentText{Pages: pages}
}

// Text concatenates all pages, one line break between pages.
func (d RawDocumentText) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Empty reports whether the document carries no printable text at all.
func (d RawDocumentText) Empty() bool {
	for _, page := range d.Pages {
		if strings.TrimSpace(page) != "" {
			return false
		}
	}

	return true
}

// ExtractionResult holds the facts pulled out of a document. An empty string means the field was not found.
type ExtractionResult struct {
	Address       string // Delivery address, the only field required for geocoding.
	ReferenceCode string // Digits of the ZRD reference, without the prefix.
	DeviceID      string // Serial or device number.
	ReasonText    string // Reason for the work order.
}

// HasAddress reports whether an address was found.
func (r ExtractionResult) HasAddress() bool {
	return r.Address != ""
}
