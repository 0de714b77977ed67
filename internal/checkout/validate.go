package checkout

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

var (
	houseRe = regexp.MustCompile(`^[A-Za-z0-9\s\-]{1,12}$`)
	// UK postcode: 1-2 letters, digit, optional alphanumeric, optional
	// space, digit, 2 letters. Normalized to uppercase before matching.
	postcodeRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9][0-9A-Z]?\s?[0-9][A-Z]{2}$`)
)

// Validate checks raw input against the field's rule and returns the
// normalized value to store. Postcodes are stored uppercased.
func Validate(field domain.Field, raw string) (string, bool) {
	t := strings.TrimSpace(raw)
	switch field {
	case domain.FieldName:
		return t, len(t) >= 3 && strings.Contains(t, " ")
	case domain.FieldHouse:
		return t, houseRe.MatchString(t)
	case domain.FieldStreet:
		return t, len(t) >= 3 && hasLetter(t)
	case domain.FieldCity:
		return t, len(t) >= 2 && hasLetter(t)
	case domain.FieldPostcode:
		up := strings.ToUpper(t)
		return up, postcodeRe.MatchString(up)
	}
	return t, false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
