// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Generator mints tokens the Verifier accepts. Production tokens come from the
// identity service; this is used by tests and local tooling.
type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Generate creates a signed token for userID and returns it with its jti.
func (g *Generator) Generate(userID, email, purpose string, isTemp bool) (string, string, error) {
	if g.priv == nil {
		return "", "", fmt.Errorf("jwt generator has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		Email:          email,
		SessionPurpose: purpose,
		IsTemp:         isTemp,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   userID,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(g.priv)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, jti, nil
}

func (g *Generator) GenerateAccessToken(userID, email string) (string, string, error) {
	return g.Generate(userID, email, PurposeAccess, false)
}
