// Package phone canonicalizes the wildly inconsistent caller ID formats
// telephony providers hand us. The same restaurant number can arrive as
// "+919876543210", "919876543210", "09876543210" or "98765 43210" depending
// on the trunk, so lookups always go through a normalized form plus a fixed
// set of variations.
package phone

import "strings"

// DefaultCountryCode is the domestic country code assumed for bare
// 10-digit numbers.
const DefaultCountryCode = "91"

// Normalizer converts raw phone strings into canonical and lookup forms.
// The zero value uses DefaultCountryCode.
type Normalizer struct {
	CountryCode string
}

func (n Normalizer) countryCode() string {
	if n.CountryCode == "" {
		return DefaultCountryCode
	}
	return n.CountryCode
}

// Digits strips everything but digits from raw.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical E.164-like form of raw and whether any
// digits were found at all. It never fails on garbage input; the worst
// case is a best-effort guess built from the last ten digits.
func (n Normalizer) Normalize(raw string) (string, bool) {
	digits := Digits(raw)
	if digits == "" {
		return "", false
	}

	cc := n.countryCode()
	switch {
	case strings.HasPrefix(digits, cc) && len(digits) == len(cc)+10:
		return "+" + digits, true
	case len(digits) == 10:
		return "+" + cc + digits, true
	case strings.HasPrefix(digits, "1") && len(digits) == 11:
		// Already carries the North American country code.
		return "+" + digits, true
	default:
		if len(digits) > 10 {
			digits = digits[len(digits)-10:]
		}
		return "+" + cc + digits, true
	}
}

// Local10 returns the last ten digits of raw, or all of them when fewer.
func Local10(raw string) string {
	digits := Digits(raw)
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// Variations returns the lookup forms for raw in resolver priority order:
// as-dialed with a plus, bare digits with the domestic prefix stripped,
// with the domestic country code, and with a leading 1. Callers try each
// in turn because upstream caller ID formatting is inconsistent.
func (n Normalizer) Variations(raw string) []string {
	digits := Digits(raw)
	if digits == "" {
		return nil
	}

	cc := n.countryCode()
	candidates := []string{
		"+" + digits,
		strings.TrimPrefix(digits, cc),
	}
	if strings.HasPrefix(digits, cc) {
		candidates = append(candidates, "+"+digits)
	} else {
		candidates = append(candidates, "+"+cc+digits)
	}
	if strings.HasPrefix(digits, "1") {
		candidates = append(candidates, "+"+digits)
	} else {
		candidates = append(candidates, "+1"+digits)
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
