package extractor

import "regexp"

var referenceCode = regexp.MustCompile(`(?i)\bZRD[ \t]*[:\-]?[ \t]*(\d{3,})`)

// deviceLabels are tried in order; the first label present in the text wins.
var deviceLabels = func() []*regexp.Regexp {
	const token = `([0-9A-Za-z][0-9A-Za-z_\-/]*)`

	labels := []string{
		"Gerätenummer",
		"Geräte-Nr.",
		"Seriennummer",
		"Serien-Nr.",
		"Device number",
		"Serial number",
		"Gerät",
		"S/N",
		"SN",
	}
	patterns := make([]*regexp.Regexp, 0, len(labels))
	for _, label := range labels {
		patterns = append(patterns, labelPattern(token, label))
	}

	return patterns
}()

var reasonLabel = labelPattern(restOfLine,
	"Grund der Meldung",
	"Grund der Arbeit",
	"Grund",
	"Meldung",
	"Reason for report",
	"Reason for work",
	"Reason",
)

// ReferenceCode returns the digits of a "ZRD 123456" style reference; the prefix is dropped.
func ReferenceCode(text string) (string, bool) {
	return firstSubmatch(referenceCode, text)
}

// DeviceID returns the token following the first device or serial number label found.
func DeviceID(text string) (string, bool) {
	for _, re := range deviceLabels {
		if id, ok := firstSubmatch(re, text); ok {
			return id, true
		}
	}

	return "", false
}

// ReasonText returns the rest of the line after a reason label.
func ReasonText(text string) (string, bool) {
	return firstSubmatch(reasonLabel, text)
}
