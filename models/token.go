package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set of session tokens issued by the development
// backend. Subject holds the identity id.
type TokenClaims struct {
	jwt.RegisteredClaims

	// PhoneNumber is the verified phone handle the token was issued for.
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Token is a parsed session token.
type Token struct {
	// Claims are the validated claims.
	Claims TokenClaims `json:"-"`

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// IdentityID is a cached copy of the subject claim.
	IdentityID string `json:"-"`
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t Token) String() string {
	return t.SignedString
}
