// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// PurposeAccess marks tokens that may call the API.
const PurposeAccess = "access"

// Claims issued by the identity service. The subject is the user account id.
type Claims struct {
	Email          string `json:"email,omitempty"`
	SessionPurpose string `json:"session_purpose"` // access, refresh, password_reset, ...
	IsTemp         bool   `json:"is_temp"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}
