package auth

import (
	"fmt"

	"github.com/createconomy/cemvp/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionVerifier validates access tokens issued by the identity provider
type SessionVerifier struct {
	secret   []byte
	audience string
}

// NewSessionVerifier creates a new SessionVerifier for HS256 tokens signed with secret
func NewSessionVerifier(secret string) *SessionVerifier {
	return &SessionVerifier{
		secret:   []byte(secret),
		audience: models.SessionAudience,
	}
}

// ValidateToken verifies a token and returns its claims
func (sv *SessionVerifier) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return sv.secret, nil
	},
		jwt.WithAudience(sv.audience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	return claims, nil
}
