// Package extractor pulls delivery address, reference code, device identifier and reason
// out of work-order text. All functions are pure: they never fail, a missing field is
// reported as ("", false).
package extractor

import (
	"regexp"
	"strings"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/text/unicode/norm"
)

// labelStart anchors a label so that it cannot begin in the middle of a word.
const labelStart = `(?:^|[^\p{L}\p{N}])`

// labelSep is the separator between a label and its value: a colon (or '#') or plain
// whitespace. It never crosses a line break.
const labelSep = `(?:[ \t]*[:#][ \t]*|[ \t]+)`

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u00a0", " ")

// Normalize prepares document text for matching: NFC composition (PDF text often carries
// decomposed umlauts), unix line endings and plain spaces instead of NBSP.
func Normalize(text string) string {
	return lineBreaks.Replace(norm.NFC.String(text))
}

// Extract runs every field extractor over the normalized text.
func Extract(text string) models.ExtractionResult {
	text = Normalize(text)

	var result models.ExtractionResult
	result.Address, _ = Address(text)
	result.ReferenceCode, _ = ReferenceCode(text)
	result.DeviceID, _ = DeviceID(text)
	result.ReasonText, _ = ReasonText(text)

	return result
}

// labelPattern compiles a case-insensitive matcher for one of the given labels followed by
// a value expression. Spaces inside a label match any run of blanks.
func labelPattern(value string, labels ...string) *regexp.Regexp {
	quoted := make([]string, 0, len(labels))
	for _, label := range labels {
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(label), " ", `[ \t]+`))
	}

	return regexp.MustCompile(`(?i)` + labelStart + `(?:` + strings.Join(quoted, "|") + `)` + labelSep + value)
}

// restOfLine captures everything up to, but not including, the next line break.
const restOfLine = `([^\r\n]+)`

// firstSubmatch returns the trimmed first capture group of re in text.
func firstSubmatch(re *regexp.Regexp, text string) (string, bool) {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	value := strings.TrimSpace(match[1])

	return value, value != ""
}
