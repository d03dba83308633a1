// Package phone validates and formats SMS recipient numbers.
package phone

import (
	"net/url"
	"regexp"
	"strings"
)

// e164 accepts an optional leading + followed by 2 to 15 digits, no
// leading zero.
var e164 = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

func Valid(number string) bool {
	return e164.MatchString(number)
}

// ValidateNumbers reports whether every number in the list is a plausible
// recipient. An empty list is vacuously valid.
func ValidateNumbers(numbers []string) bool {
	for _, n := range numbers {
		if !e164.MatchString(n) {
			return false
		}
	}
	return true
}

func Format(number string) string {
	if strings.HasPrefix(number, "+") {
		return number
	}
	return "+" + number
}

// LinkURI builds the deep link a gateway device scans to pair with an API key.
func LinkURI(apiKey string) string {
	return "smsbridge://link?key=" + url.QueryEscape(apiKey)
}
