// internal/pkg/jwt/keys.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// LoadRSAPublicKeyFromPEM reads the identity service's signing key from disk.
func LoadRSAPublicKeyFromPEM(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return ParseRSAPublicKeyPEM(b)
}

// ParseRSAPublicKeyPEM accepts PKIX, PKCS1 and certificate blocks.
func ParseRSAPublicKeyPEM(b []byte) (*rsa.PublicKey, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}
	return pub, nil
}
