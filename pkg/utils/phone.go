package utils

import (
	"strings"
)

// PhoneRules describes a national numbering plan for mobile numbers
type PhoneRules struct {
	CountryCode    string
	TrunkPrefix    string
	MobilePrefixes []string
	MinDigits      int
	MaxDigits      int
}

// MalaysianMobile is the numbering plan used for restaurant contacts and
// customer phone numbers: 01X-XXX XXXX locally, +60 1X-XXX XXXX abroad.
var MalaysianMobile = PhoneRules{
	CountryCode:    "60",
	TrunkPrefix:    "0",
	MobilePrefixes: []string{"10", "11", "12", "13", "14", "15", "16", "17", "18", "19"},
	MinDigits:      10,
	MaxDigits:      12,
}

// DigitsOnly strips every non-digit rune from s
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize converts a local or international number to country-code
// prefixed digits, e.g. "+60 12-345 6789" and "0123456789" both become
// "60123456789".
func (p PhoneRules) Normalize(phone string) string {
	cleaned := DigitsOnly(phone)

	if p.TrunkPrefix != "" && strings.HasPrefix(cleaned, p.TrunkPrefix) {
		cleaned = p.CountryCode + strings.TrimPrefix(cleaned, p.TrunkPrefix)
	}

	if !strings.HasPrefix(cleaned, p.CountryCode) {
		cleaned = p.CountryCode + cleaned
	}

	return cleaned
}

// IsValidMobile is a syntactic plausibility check. It does not consult any
// carrier registry.
func (p PhoneRules) IsValidMobile(phone string) bool {
	cleaned := DigitsOnly(phone)
	if len(cleaned) < p.MinDigits || len(cleaned) > p.MaxDigits {
		return false
	}

	significant := cleaned
	switch {
	case strings.HasPrefix(cleaned, p.CountryCode):
		significant = strings.TrimPrefix(cleaned, p.CountryCode)
	case p.TrunkPrefix != "" && strings.HasPrefix(cleaned, p.TrunkPrefix):
		significant = strings.TrimPrefix(cleaned, p.TrunkPrefix)
	}

	for _, prefix := range p.MobilePrefixes {
		if strings.HasPrefix(significant, prefix) {
			return true
		}
	}
	return false
}

// NormalizePhone normalizes a Malaysian number
func NormalizePhone(phone string) string {
	return MalaysianMobile.Normalize(phone)
}

// IsValidMobile validates a Malaysian mobile number
func IsValidMobile(phone string) bool {
	return MalaysianMobile.IsValidMobile(phone)
}
