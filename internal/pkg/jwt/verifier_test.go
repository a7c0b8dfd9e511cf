package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestVerifyAccessToken(t *testing.T) {
	key := newKey(t)
	gen := NewGenerator(key, "identity", "billing", time.Hour)
	ver := NewVerifier(&key.PublicKey, "identity", "billing")

	token, jti, err := gen.GenerateAccessToken("user_1", "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := ver.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID())
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, jti, claims.ID)
}

func TestVerifyAccessToken_Rejects(t *testing.T) {
	key := newKey(t)
	ver := NewVerifier(&key.PublicKey, "identity", "billing")

	tests := []struct {
		name  string
		token func() string
	}{
		{"wrong purpose", func() string {
			tok, _, err := NewGenerator(key, "identity", "billing", time.Hour).Generate("user_1", "", "refresh", false)
			require.NoError(t, err)
			return tok
		}},
		{"temporary", func() string {
			tok, _, err := NewGenerator(key, "identity", "billing", time.Hour).Generate("user_1", "", PurposeAccess, true)
			require.NoError(t, err)
			return tok
		}},
		{"wrong issuer", func() string {
			tok, _, err := NewGenerator(key, "someone-else", "billing", time.Hour).GenerateAccessToken("user_1", "")
			require.NoError(t, err)
			return tok
		}},
		{"wrong audience", func() string {
			tok, _, err := NewGenerator(key, "identity", "other", time.Hour).GenerateAccessToken("user_1", "")
			require.NoError(t, err)
			return tok
		}},
		{"expired", func() string {
			tok, _, err := NewGenerator(key, "identity", "billing", -time.Minute).GenerateAccessToken("user_1", "")
			require.NoError(t, err)
			return tok
		}},
		{"other key", func() string {
			tok, _, err := NewGenerator(newKey(t), "identity", "billing", time.Hour).GenerateAccessToken("user_1", "")
			require.NoError(t, err)
			return tok
		}},
		{"no subject", func() string {
			tok, _, err := NewGenerator(key, "identity", "billing", time.Hour).GenerateAccessToken("", "")
			require.NoError(t, err)
			return tok
		}},
		{"garbage", func() string { return "not.a.token" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ver.VerifyAccessToken(tt.token())
			assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
		})
	}
}

func TestParseRSAPublicKeyPEM(t *testing.T) {
	key := newKey(t)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pkix := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	pub, err := ParseRSAPublicKeyPEM(pkix)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(pub))

	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})
	pub, err = ParseRSAPublicKeyPEM(pkcs1)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(pub))

	_, err = ParseRSAPublicKeyPEM([]byte("nope"))
	assert.Error(t, err)
}
