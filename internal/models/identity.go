package models

import "strings"

// ProviderEmail is the provider name used for password and magic-link sign-ins
const ProviderEmail = "email"

// Identity is an authenticated user as reported by the identity provider
type Identity struct {
	ID           string
	Email        string
	Phone        string
	AppMetadata  map[string]any
	UserMetadata map[string]any
}

// Provider returns the provider that authenticated this identity, "email" when unknown
func (i *Identity) Provider() string {
	if p := metaString(i.AppMetadata, "provider"); p != "" {
		return p
	}
	return ProviderEmail
}

// ProviderUserID returns the provider-side account id, falling back to the identity id
func (i *Identity) ProviderUserID() string {
	if id := metaString(i.AppMetadata, "provider_id"); id != "" {
		return id
	}
	return i.ID
}

func (i *Identity) Username() string {
	return metaString(i.UserMetadata, "preferred_username", "user_name", "username")
}

func (i *Identity) FullName() string {
	return metaString(i.UserMetadata, "full_name", "name")
}

func (i *Identity) FirstName() string {
	return metaString(i.UserMetadata, "given_name", "first_name")
}

func (i *Identity) LastName() string {
	return metaString(i.UserMetadata, "family_name", "last_name")
}

func (i *Identity) AvatarURL() string {
	return metaString(i.UserMetadata, "avatar_url", "picture", "photoURL")
}

func (i *Identity) PhoneNumber() string {
	if p := metaString(i.UserMetadata, "phone"); p != "" {
		return p
	}
	return i.Phone
}

// ProfilePatch builds the merge patch for this identity: only non-empty values are set
func (i *Identity) ProfilePatch() ProfilePatch {
	return ProfilePatch{
		Email:     nonEmpty(i.Email),
		Username:  nonEmpty(i.Username()),
		FullName:  nonEmpty(i.FullName()),
		FirstName: nonEmpty(i.FirstName()),
		LastName:  nonEmpty(i.LastName()),
		AvatarURL: nonEmpty(i.AvatarURL()),
		Phone:     nonEmpty(i.PhoneNumber()),
	}
}

// metaString returns the first non-empty string value among keys
func metaString(meta map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := meta[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
