package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitMethod selects how an expense amount is distributed among participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitExact      SplitMethod = "exact"
	SplitPercentage SplitMethod = "percentage"
)

// IsValid reports whether m is one of the supported split methods.
func (m SplitMethod) IsValid() bool {
	switch m {
	case SplitEqual, SplitExact, SplitPercentage:
		return true
	}
	return false
}

// ParticipantInput is a participant entry exactly as the client sent it.
// SplitValue is nil when the client did not send one.
type ParticipantInput struct {
	ParticipantID string
	SplitValue    *string
}

// ExpenseRequest is an unvalidated expense submission. Empty strings and a
// nil Participants slice mean the field was not provided.
type ExpenseRequest struct {
	CreatorID    string
	Amount       string
	Title        string
	Description  *string
	OccurredAt   string
	Method       string
	Participants []ParticipantInput
}

// Share is a validated participant entry handed to the split engine.
// Value is the exact amount or the percentage; it is ignored for equal splits.
type Share struct {
	ParticipantID int64
	Value         decimal.Decimal
}

// Participation is the amount one participant owes for an expense.
type Participation struct {
	ParticipantID int64 `json:"participant_id"`
	Amount        Money `json:"amount_owed"`
}

// Expense is an accepted expense together with its computed participations.
type Expense struct {
	ID             int64
	CreatorID      int64
	Title          string
	Description    *string
	OccurredAt     time.Time
	Method         SplitMethod
	Amount         Money
	Participations []Participation
	CreatedAt      time.Time
}

// TotalOwed sums the participation amounts.
func (e *Expense) TotalOwed() Money {
	var total Money
	for _, p := range e.Participations {
		total += p.Amount
	}
	return total
}
