package pii

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"capi-event-relay/internal/events/core/domain"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	countryPattern = regexp.MustCompile(`^[a-z]{2}$`)
	zipPlus4       = regexp.MustCompile(`^[0-9]{5}-[0-9]{4}$`)
)

// NormalizeError is a field that is present but cannot be brought into the
// provider's canonical form. It never carries the raw value.
type NormalizeError struct {
	Field  domain.PIIField
	Reason string
}

func (e *NormalizeError) Error() string {
	return e.Field.InputName() + ": " + e.Reason
}

type normalizeFunc func(s string) (string, string)

var rules = map[domain.PIIField]normalizeFunc{
	domain.FieldEmail:       normalizeEmail,
	domain.FieldPhone:       normalizePhone,
	domain.FieldFirstName:   normalizeName,
	domain.FieldLastName:    normalizeName,
	domain.FieldGender:      normalizeGender,
	domain.FieldDateOfBirth: normalizeDateOfBirth,
	domain.FieldCity:        normalizeLetters,
	domain.FieldState:       normalizeLetters,
	domain.FieldZip:         normalizeZip,
	domain.FieldCountry:     normalizeCountry,
	domain.FieldExternalID:  normalizeExternalID,
}

// Normalize returns the canonical form of raw for field. present is false
// when raw is nil or blank; such fields must not be hashed or sent.
func Normalize(field domain.PIIField, raw *string) (value string, present bool, err error) {
	if raw == nil {
		return "", false, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return "", false, nil
	}

	rule, ok := rules[field]
	if !ok {
		return "", false, &NormalizeError{Field: field, Reason: "is not a supported field"}
	}

	value, reason := rule(s)
	if reason != "" {
		return "", false, &NormalizeError{Field: field, Reason: reason}
	}
	return value, true, nil
}

// NormalizeAll normalizes every PII field of u. Absent fields are left out of
// the result; fields that fail are reported as violations.
func NormalizeAll(u domain.UserData) (domain.NormalizedPII, domain.Violations) {
	out := make(domain.NormalizedPII)
	var violations domain.Violations

	raw := u.PII()
	for _, field := range fieldOrder {
		value, present, err := Normalize(field, raw[field])
		if err != nil {
			var ne *NormalizeError
			if errors.As(err, &ne) {
				violations.Add(field.InputName(), ne.Reason)
			}
			continue
		}
		if present {
			out[field] = value
		}
	}

	return out, violations
}

// fieldOrder keeps violation lists stable across runs.
var fieldOrder = []domain.PIIField{
	domain.FieldEmail,
	domain.FieldPhone,
	domain.FieldFirstName,
	domain.FieldLastName,
	domain.FieldGender,
	domain.FieldDateOfBirth,
	domain.FieldCity,
	domain.FieldState,
	domain.FieldZip,
	domain.FieldCountry,
	domain.FieldExternalID,
}

func normalizeEmail(s string) (string, string) {
	s = strings.ToLower(s)

	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return "", "must be a valid email address"
	}
	host := s[at+1:]
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return "", "must be a valid email address"
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", "must be a valid email address"
	}
	return s, ""
}

func normalizePhone(s string) (string, string) {
	digits := keepASCIIDigits(s)
	digits = strings.TrimLeft(digits, "0")

	switch {
	case len(digits) < minPhoneDigits:
		return "", "must contain at least 7 digits including country code"
	case len(digits) > maxPhoneDigits:
		return "", "must contain at most 15 digits"
	}
	return digits, ""
}

func normalizeName(s string) (string, string) {
	s = norm.NFC.String(strings.ToLower(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return "", "must contain letters"
	}
	return out, ""
}

// normalizeLetters is used for city and state: lowercase with no spaces or
// punctuation.
func normalizeLetters(s string) (string, string) {
	s = norm.NFC.String(strings.ToLower(s))

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", "must contain letters"
	}
	return b.String(), ""
}

func normalizeZip(s string) (string, string) {
	s = strings.ToLower(s)
	if zipPlus4.MatchString(s) {
		return s[:5], ""
	}

	s = strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", "must contain a postal code"
	}
	return s, ""
}

func normalizeCountry(s string) (string, string) {
	s = strings.ToLower(s)
	if !countryPattern.MatchString(s) {
		return "", "must be a 2-letter ISO 3166-1 alpha-2 code"
	}
	return s, ""
}

func normalizeGender(s string) (string, string) {
	switch strings.ToLower(s) {
	case "f", "female":
		return "f", ""
	case "m", "male":
		return "m", ""
	}
	return "", "must be f or m"
}

func normalizeDateOfBirth(s string) (string, string) {
	digits := keepASCIIDigits(s)
	if len(digits) != 8 {
		return "", "must be a date in YYYYMMDD format"
	}
	if _, err := time.Parse("20060102", digits); err != nil {
		return "", "must be a date in YYYYMMDD format"
	}
	return digits, ""
}

func normalizeExternalID(s string) (string, string) {
	return strings.ToLower(s), ""
}

func keepASCIIDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
