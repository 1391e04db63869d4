package extractor

import (
	"regexp"
	"strings"
)

var (
	addressLabel = labelPattern(restOfLine, "Lieferadresse", "Lieferanschrift", "Delivery address")

	// city is one or more words of letters separated by single blanks ("Frankfurt am Main").
	city = `\p{L}[\p{L}\-]+(?:[ \t][\p{L}\-]+)*`

	// streetAddress: street run, house number, optional comma, postal code, city.
	streetAddress = regexp.MustCompile(
		`\p{L}[\p{L}\p{N}.,'/\- \t]*[\p{L}.][ \t]*\d{1,4}[a-zA-Z]?\b[ \t]*,?[ \t]*\b\d{5}\b[ \t]+` + city,
	)

	postalCodeCity = regexp.MustCompile(`\b\d{5}[ \t]+` + city)
)

// addressChain lists the address heuristics from most to least specific.
var addressChain = []func(string) (string, bool){
	AddressFromLabel,
	AddressFromStreet,
	AddressFromPostalCode,
}

// Address returns the first match of the address heuristics.
func Address(text string) (string, bool) {
	for _, find := range addressChain {
		if addr, ok := find(text); ok {
			return addr, true
		}
	}

	return "", false
}

// AddressFromLabel returns the rest of the line following a "Lieferadresse:" style label.
func AddressFromLabel(text string) (string, bool) {
	return firstSubmatch(addressLabel, text)
}

// AddressFromStreet returns the first "<street> <no>, <postal code> <city>" run.
func AddressFromStreet(text string) (string, bool) {
	return trimmedMatch(streetAddress, text)
}

// AddressFromPostalCode returns the first "<postal code> <city>" substring, ignoring any street before it.
// With several postal codes in one document (sender and recipient) the first one wins.
func AddressFromPostalCode(text string) (string, bool) {
	return trimmedMatch(postalCodeCity, text)
}

func trimmedMatch(re *regexp.Regexp, text string) (string, bool) {
	value := strings.Trim(re.FindString(text), " \t,-")

	return value, value != ""
}
