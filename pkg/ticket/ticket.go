// Package ticket encodes booking verification tokens into signed scannable
// artifacts. The artifact is what ends up inside the QR code on a ticket;
// because it is signed, a scanner can verify it without trusting the
// shareable lookup code, which anyone can guess or forward.
package ticket

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a ticket artifact. The verification token is the
// booking's private secret; the lookup code rides along for display at the
// gate.
type Claims struct {
	VerificationToken string `json:"vt"`
	LookupCode        string `json:"lc"`
	jwt.RegisteredClaims
}

// Codec signs and verifies ticket artifacts.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec creates a codec with the given signing secret.
func NewCodec(secret, issuer string) *Codec {
	return &Codec{secret: []byte(secret), issuer: issuer}
}

// Encode produces the signed artifact for a verification token. Artifacts
// carry no expiry: a ticket stays scannable until the trip departs and the
// surrounding system stops honouring it.
func (c *Codec) Encode(verificationToken, lookupCode string) (string, error) {
	if verificationToken == "" {
		return "", fmt.Errorf("verification token is required")
	}

	claims := Claims{
		VerificationToken: verificationToken,
		LookupCode:        lookupCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   c.issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	artifact, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket artifact: %w", err)
	}
	return artifact, nil
}

// Decode verifies an artifact's signature and recovers the claims. A
// tampered or foreign artifact fails verification.
func (c *Codec) Decode(artifact string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(artifact, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify ticket artifact: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("ticket artifact is not valid")
	}
	return claims, nil
}
