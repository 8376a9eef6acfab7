package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// lookupAlphabet avoids ambiguous characters (0/O, 1/I/L) so lookup codes
// survive being read out over the phone.
const lookupAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateLookupCode produces a public, human-shareable booking code like
// "BK-7FQ2MD8C".
func GenerateLookupCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lookup code: %w", err)
	}
	code := make([]byte, len(b))
	for i, v := range b {
		code[i] = lookupAlphabet[int(v)%len(lookupAlphabet)]
	}
	return "BK-" + string(code), nil
}

// GenerateVerificationToken produces the booking's private secret: 256 bits
// of randomness, hex encoded. This is what the scannable ticket artifact
// encodes; it is never shown to the customer directly.
func GenerateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
