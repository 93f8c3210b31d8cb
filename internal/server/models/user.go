package models

import "time"

// User is the account record resolved during listing enrichment and by the
// identity endpoints. The file core treats it as a read-only lookup table
// keyed by ID and AccountID.
type User struct {
	ID        string
	AccountID string
	FullName  string
	Email     string
	Avatar    string
	CreatedAt time.Time
}
