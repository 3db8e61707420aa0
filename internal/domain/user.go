package domain

import "time"

// User is a registered participant of the ledger.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	MiddleName   *string
	LastName     string
	MobileNumber string
	JoinedAt     time.Time
	UpdatedAt    time.Time
}
