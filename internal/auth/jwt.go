package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/launchlift/launchlift/internal/models"
)

// Claims carries the principal id and role alongside the registered set.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// GenerateToken mints an HS256 token for the given user id and role.
func GenerateToken(userID string, role models.Role, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	})
	return token.SignedString(secret)
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
