package everify

import (
	"regexp"
	"strings"
)

var (
	digitOnlyPattern   = regexp.MustCompile(`^\d{12,20}$`)
	ephilPrefixPattern = regexp.MustCompile(`(?i)^(PH[A-Z]|PHL|PHX):`)
	bareTokenPattern   = regexp.MustCompile(`^[A-Z0-9]{16,40}$`)
)

// IsCandidate reports whether a scanned value belongs to the public eVerify
// registry rather than one of the QR-embedded credential formats. The check
// order is load-bearing: JSON payloads, known credential prefixes, and
// anything colon-bearing must never be classified as an eVerify token.
func IsCandidate(raw string) bool {
	value := strings.TrimSpace(raw)
	if value == "" {
		return false
	}

	// Purely numeric PCNs or shortened tokens map to the public verifier.
	if digitOnlyPattern.MatchString(value) {
		return true
	}

	isLikelyJSON := strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}")
	if isLikelyJSON || ephilPrefixPattern.MatchString(value) {
		return false
	}

	// ePhilID CBOR strings always carry a colon in the prefix.
	if strings.Contains(value, ":") {
		return false
	}

	// Fallback: moderately sized uppercase + digit tokens.
	return bareTokenPattern.MatchString(value)
}
