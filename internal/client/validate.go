package client

// validate.go provides field-level validation and normalization for the
// values that arrive from spreadsheet cells or grid edits.
//
// These functions handle the messy reality of hand-maintained client lists:
//   - Phone numbers with spaces, dashes, parentheses, or a missing country code
//   - Dates in half a dozen formats, with or without zero padding
//   - Postal codes with stray non-digit characters
//
// All of them report failures as plain errors; callers decide whether a
// failure skips a row (bulk import) or rejects an edit (grid).

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	digitsOnlyRegex = regexp.MustCompile(`^\d+$`)
	nonDigitRegex   = regexp.MustCompile(`\D`)
	phoneRegex      = regexp.MustCompile(`^\+7\d{10}$`)
)

// birthdayLayouts is the ordered list of accepted date formats.
// The first layout that parses wins. Dotted dates are zero-padded by
// fixDottedDate before this list is consulted, so for "." input the
// dd.MM.yyyy layout normally decides.
var birthdayLayouts = []string{
	"02.01.2006", // dd.MM.yyyy
	"2.1.2006",   // d.M.yyyy
	"1.2.2006",   // M.d.yyyy
	"2006-01-02", // yyyy-MM-dd
	"2/01/2006",  // d/MM/yyyy
	"01/02/2006", // MM/dd/yyyy
	"2006/01/02", // yyyy/MM/dd
}

// ValidateCardCode checks that a card code is non-empty and all digits.
// This is the rule enforced at grid-edit time; imported codes only need to
// be non-empty, matching what historical imports accepted.
func ValidateCardCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("card code must not be empty")
	}
	if !digitsOnlyRegex.MatchString(code) {
		return errors.New("card code must contain only digits")
	}
	return nil
}

// NormalizePhone strips everything except digits and returns the number in
// canonical +7XXXXXXXXXX form.
//
// An 11-digit number starting with 7 gets a "+" prefix; a 10-digit number
// gets "+7". Any other digit count fails. The result is re-checked against
// the canonical pattern so a bad rewrite can never slip through.
func NormalizePhone(raw string) (string, error) {
	cleaned := nonDigitRegex.ReplaceAllString(raw, "")

	switch {
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "7"):
		cleaned = "+" + cleaned
	case len(cleaned) == 10:
		cleaned = "+7" + cleaned
	default:
		return "", fmt.Errorf("invalid phone number %q", raw)
	}

	if !phoneRegex.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number %q", cleaned)
	}
	return cleaned, nil
}

// ParseBirthday parses a birthday from one of the accepted textual formats.
func ParseBirthday(raw string) (time.Time, error) {
	raw = fixDottedDate(raw)

	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// fixDottedDate zero-pads the day and month segments of a D.M.YYYY-shaped
// string. An empty day segment (after stripping leading zeros) becomes "01".
// Anything that does not split into exactly three dot-separated parts is
// returned unchanged.
func fixDottedDate(date string) string {
	parts := strings.Split(date, ".")
	if len(parts) != 3 {
		return date
	}

	day := strings.TrimLeft(parts[0], "0")
	if day == "" {
		day = "01"
	}
	if len(day) == 1 {
		day = "0" + day
	}

	month := strings.TrimLeft(parts[1], "0")
	if len(month) == 1 {
		month = "0" + month
	}

	return day + "." + month + "." + parts[2]
}

// ParseOptionalInt parses an optional integer field. Blank input yields nil
// without error; non-blank input must parse.
func ParseOptionalInt(raw string) (*int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return &v, nil
}

// ParsePostalCode strips all non-digit characters before parsing, so inputs
// like "101 000" or "RU-101000" still resolve. A value with no digits at
// all normalizes to blank and yields nil, not an error.
func ParsePostalCode(raw string) (*int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return ParseOptionalInt(nonDigitRegex.ReplaceAllString(raw, ""))
}
