package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeExpenseCreated = "expense.created"
	EventTypeUserCreated    = "user.created"
)

// Aggregate types
const (
	AggregateTypeExpense = "expense"
	AggregateTypeUser    = "user"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ExpenseCreatedEvent is the payload of expense.created.
type ExpenseCreatedEvent struct {
	ExpenseID      int64           `json:"expense_id"`
	CreatorID      int64           `json:"creator_id"`
	Title          string          `json:"title"`
	SplitMethod    SplitMethod     `json:"split_method"`
	TotalAmount    string          `json:"total_amount"`
	ExpenseDate    string          `json:"expense_date"`
	Participations []Participation `json:"participations"`
}

// UserCreatedEvent is the payload of user.created.
type UserCreatedEvent struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

func (e ExpenseCreatedEvent) Payload() (map[string]any, error) { return toPayload(e) }

func (e UserCreatedEvent) Payload() (map[string]any, error) { return toPayload(e) }

// toPayload converts an event struct into the generic outbox payload using its
// JSON field names. Numbers stay json.Number so amounts are not rounded
// through float64.
func toPayload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
