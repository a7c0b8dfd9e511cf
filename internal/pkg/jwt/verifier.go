// internal/pkg/jwt/verifier.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// clockSkew tolerated on exp/nbf between us and the identity service.
const clockSkew = 30 * time.Second

// Verifier checks RS256 tokens minted by the identity service. It never signs.
type Verifier struct {
	pub    *rsa.PublicKey
	parser *jwt.Parser
}

func NewVerifier(pub *rsa.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{
		pub: pub,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// LoadVerifier reads the public key at path and builds a Verifier from it.
func LoadVerifier(path, issuer, audience string) (*Verifier, error) {
	pub, err := LoadRSAPublicKeyFromPEM(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key from %s: %w", path, err)
	}
	return NewVerifier(pub, issuer, audience), nil
}

// Verify checks signature, issuer, audience and lifetime. Failures wrap ErrUnauthorized.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if v.pub == nil {
		return nil, fmt.Errorf("jwt verifier has nil public key")
	}

	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.pub, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrUnauthorized, err)
	}
	return claims, nil
}

// VerifyAccessToken additionally requires a non-temporary access token with a subject.
func (v *Verifier) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	switch {
	case claims.SessionPurpose != PurposeAccess:
		return nil, fmt.Errorf("%w: token purpose %q is not access", xerrors.ErrUnauthorized, claims.SessionPurpose)
	case claims.IsTemp:
		return nil, fmt.Errorf("%w: temporary token", xerrors.ErrUnauthorized)
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: token has no subject", xerrors.ErrUnauthorized)
	}
	return claims, nil
}
