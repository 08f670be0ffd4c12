package models

import "time"

// WaitlistEntry is a single waitlist signup
type WaitlistEntry struct {
	ID        string
	Email     string
	IPAddress *string
	CreatedAt time.Time
}
