package models

import (
	"strings"
	"time"
)

// Role is the application role assigned to a profile at creation
type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole returns the matching role, or false when s names no known role
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleSeller:
		return RoleSeller, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// DefaultAdminPermissions are granted to every newly provisioned admin
var DefaultAdminPermissions = []string{"manage_templates", "manage_users", "manage_sellers"}

// Profile is the application's own user record, keyed by the identity provider user id
type Profile struct {
	ID            string
	UserID        string // Identity provider user id
	Email         string
	Username      *string
	FullName      *string
	FirstName     *string
	LastName      *string
	AvatarURL     *string
	Phone         *string
	Role          Role
	MFAEnabled    bool
	MFAVerified   bool
	MFAPin        *string
	MFAPinExpires *time.Time
	PasswordSet   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfilePatch is a partial profile update. Nil fields keep the stored value.
type ProfilePatch struct {
	Email     *string
	Username  *string
	FullName  *string
	FirstName *string
	LastName  *string
	AvatarURL *string
	Phone     *string
}

// IsEmpty reports whether the patch carries no field at all
func (p ProfilePatch) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.FullName == nil &&
		p.FirstName == nil && p.LastName == nil && p.AvatarURL == nil && p.Phone == nil
}

// OAuthProvider enumerates the external providers an OAuthAccount can link to
type OAuthProvider string

const (
	OAuthProviderGoogle OAuthProvider = "GOOGLE"
	OAuthProviderGitHub OAuthProvider = "GITHUB"
	OAuthProviderAzure  OAuthProvider = "AZURE"
	OAuthProviderApple  OAuthProvider = "APPLE"
)

// OAuthProviderFromName maps an identity provider name onto the stored enum.
// Unknown providers fall back to GOOGLE.
func OAuthProviderFromName(name string) OAuthProvider {
	switch strings.ToUpper(name) {
	case "GITHUB":
		return OAuthProviderGitHub
	case "AZURE", "MICROSOFT":
		return OAuthProviderAzure
	case "APPLE":
		return OAuthProviderApple
	default:
		return OAuthProviderGoogle
	}
}

// OAuthAccount links a profile to one external provider account
type OAuthAccount struct {
	ID               string
	ProfileID        string
	Provider         OAuthProvider
	ProviderID       string
	ProviderEmail    *string
	ProviderUsername *string
	ProviderData     map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SellerInfo is the seller extension record
type SellerInfo struct {
	ID        string
	ProfileID string
	CreatedAt time.Time
}

// AdminInfo is the admin extension record
type AdminInfo struct {
	ID          string
	ProfileID   string
	Permissions []string
	CreatedAt   time.Time
}
