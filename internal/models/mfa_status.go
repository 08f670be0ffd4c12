package models

// Gate is the per-request onboarding decision for an authenticated session
type Gate string

const (
	GateNeedsMFA      Gate = "NEEDS_MFA"
	GateNeedsPassword Gate = "NEEDS_PASSWORD"
	GateCleared       Gate = "CLEARED"
)

// MFAStatus is the derived onboarding state of a profile
type MFAStatus struct {
	MFAEnabled         bool `json:"mfaEnabled"`
	MFAVerified        bool `json:"mfaVerified"`
	RequiresMFA        bool `json:"requiresMfa"`
	PinExpired         bool `json:"pinExpired"`
	NeedsPasswordSetup bool `json:"needsPasswordSetup"`
	Role               Role `json:"role"`
}

// Gate returns the outstanding onboarding step. PIN verification comes before password setup.
func (s *MFAStatus) Gate() Gate {
	if s.RequiresMFA {
		return GateNeedsMFA
	}
	if s.NeedsPasswordSetup {
		return GateNeedsPassword
	}
	return GateCleared
}
