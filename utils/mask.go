package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxCardMaskLen is 16 digits plus 3 group separators.
const maxCardMaskLen = 19

func digitsOf(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// MaskCardNumber normalizes raw card-number input: non-digits are
// stripped, a single space is inserted every 4 digits, and the result is
// truncated to 19 characters.
func MaskCardNumber(raw string) string {
	digits := digitsOf(raw)

	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(digits[i])
	}

	masked := b.String()
	if len(masked) > maxCardMaskLen {
		masked = masked[:maxCardMaskLen]
	}
	return masked
}

// MaskExpiry normalizes raw expiry input to MM/YY: non-digits stripped,
// "/" inserted after the second digit, truncated to 5 characters.
func MaskExpiry(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// MaskCVV normalizes raw CVV input: non-digits stripped, truncated to 3
// characters.
func MaskCVV(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}

// CardLast4 returns the trailing four digits of a (possibly masked) card
// number, or all of its digits when fewer than four were entered.
func CardLast4(number string) string {
	digits := digitsOf(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// CardFingerprint returns a stable SHA-256 token of the card number's
// digits. The raw number never leaves the process.
func CardFingerprint(number string) string {
	sum := sha256.Sum256([]byte(digitsOf(number)))
	return hex.EncodeToString(sum[:])
}
