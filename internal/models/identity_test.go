package models

import (
	"testing"
)

func TestIdentity_ProviderDefaults(t *testing.T) {
	i := &Identity{ID: "user-1"}

	if got := i.Provider(); got != ProviderEmail {
		t.Errorf("Provider() = %q, want %q", got, ProviderEmail)
	}
	if got := i.ProviderUserID(); got != "user-1" {
		t.Errorf("ProviderUserID() = %q, want identity id fallback", got)
	}
}

func TestIdentity_MetadataFallbacks(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		get  func(*Identity) string
		want string
	}{
		{"preferred username first", map[string]any{"preferred_username": "a", "user_name": "b"}, (*Identity).Username, "a"},
		{"user_name second", map[string]any{"user_name": "b", "username": "c"}, (*Identity).Username, "b"},
		{"username last", map[string]any{"username": "c"}, (*Identity).Username, "c"},
		{"full_name over name", map[string]any{"full_name": "Full", "name": "Name"}, (*Identity).FullName, "Full"},
		{"name fallback", map[string]any{"name": "Name"}, (*Identity).FullName, "Name"},
		{"given_name", map[string]any{"given_name": "G", "first_name": "F"}, (*Identity).FirstName, "G"},
		{"family_name", map[string]any{"last_name": "L"}, (*Identity).LastName, "L"},
		{"avatar_url", map[string]any{"avatar_url": "a", "picture": "p"}, (*Identity).AvatarURL, "a"},
		{"picture", map[string]any{"picture": "p", "photoURL": "u"}, (*Identity).AvatarURL, "p"},
		{"photoURL", map[string]any{"photoURL": "u"}, (*Identity).AvatarURL, "u"},
		{"blank values skipped", map[string]any{"full_name": "  ", "name": "Name"}, (*Identity).FullName, "Name"},
		{"non-string values skipped", map[string]any{"username": 42}, (*Identity).Username, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Identity{UserMetadata: tt.meta}
			if got := tt.get(i); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentity_ProfilePatch_OnlyNonEmpty(t *testing.T) {
	i := &Identity{
		Email:        "dev@example.com",
		UserMetadata: map[string]any{"name": "Dev"},
	}

	patch := i.ProfilePatch()

	if patch.Email == nil || *patch.Email != "dev@example.com" {
		t.Errorf("Email = %v, want dev@example.com", patch.Email)
	}
	if patch.FullName == nil || *patch.FullName != "Dev" {
		t.Errorf("FullName = %v, want Dev", patch.FullName)
	}
	if patch.Username != nil || patch.AvatarURL != nil || patch.Phone != nil {
		t.Error("absent provider values must not be part of the patch")
	}
	if patch.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !(ProfilePatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
}

func TestOAuthProviderFromName(t *testing.T) {
	tests := map[string]OAuthProvider{
		"github":    OAuthProviderGitHub,
		"azure":     OAuthProviderAzure,
		"microsoft": OAuthProviderAzure,
		"apple":     OAuthProviderApple,
		"google":    OAuthProviderGoogle,
		"discord":   OAuthProviderGoogle,
	}

	for name, want := range tests {
		if got := OAuthProviderFromName(name); got != want {
			t.Errorf("OAuthProviderFromName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestMFAStatus_Gate(t *testing.T) {
	tests := []struct {
		name   string
		status MFAStatus
		want   Gate
	}{
		{"cleared user", MFAStatus{Role: RoleUser}, GateCleared},
		{"pin takes precedence", MFAStatus{RequiresMFA: true, NeedsPasswordSetup: true}, GateNeedsMFA},
		{"password after pin", MFAStatus{MFAVerified: true, NeedsPasswordSetup: true}, GateNeedsPassword},
		{"cleared admin", MFAStatus{MFAEnabled: true, MFAVerified: true, Role: RoleAdmin}, GateCleared},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Gate(); got != tt.want {
				t.Errorf("Gate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" admin "); !ok || r != RoleAdmin {
		t.Errorf("ParseRole(admin) = %q, %v", r, ok)
	}
	if _, ok := ParseRole("owner"); ok {
		t.Error("ParseRole(owner) should fail")
	}
}
