package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionAudience is the audience the identity provider stamps on user access tokens
const SessionAudience = "authenticated"

// SessionClaims are the claims carried by an identity provider access token
type SessionClaims struct {
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Role         string         `json:"role,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the identity provider user id (the subject)
func (c *SessionClaims) UserID() string {
	return c.Subject
}

// Session is the result of a successful code exchange with the identity provider
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         *Identity
}
