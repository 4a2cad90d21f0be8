package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// IdentityClaims is the verified tuple the external identity provider hands
// us per sign-in. Role is opaque here; authorization math lives in the
// permission records, never in the claim itself.
type IdentityClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	BrandID string `json:"brand_id,omitempty"`
	StoreID string `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateIdentityToken mints a provider-shaped token. Used by the helper CLI
// and tests; production tokens come from the identity provider.
func GenerateIdentityToken(userID, email, role, brandID, storeID string) (string, error) {
	claims := IdentityClaims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		BrandID: brandID,
		StoreID: storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// ParseIdentityToken parses and validates an identity token.
func ParseIdentityToken(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}
