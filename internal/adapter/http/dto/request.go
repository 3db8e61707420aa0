package dto

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

var errNotScalar = errors.New("expected a string or a number")

// FlexibleString accepts a JSON string or number and keeps its literal text.
// Numbers keep their exact spelling so amounts never pass through float64.
// null decodes to the empty string.
type FlexibleString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexibleString(str)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return errNotScalar
		}
		*s = FlexibleString(num)
	}
	return nil
}

// CreateUserRequest represents a request to register a user.
type CreateUserRequest struct {
	Email        string         `json:"email"`
	FirstName    string         `json:"first_name"`
	MiddleName   *string        `json:"middle_name"`
	LastName     string         `json:"last_name"`
	MobileNumber FlexibleString `json:"mobile_number"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:        r.Email,
		FirstName:    r.FirstName,
		MiddleName:   r.MiddleName,
		LastName:     r.LastName,
		MobileNumber: string(r.MobileNumber),
	}
}

// ParticipantRequest is one entry of CreateExpenseRequest.Participants.
type ParticipantRequest struct {
	ParticipantID FlexibleString  `json:"participant_id"`
	SplitValue    *FlexibleString `json:"split_value"`
}

// CreateExpenseRequest represents a request to record an expense.
// A missing participants key decodes to nil, an empty array to a non-nil
// empty slice; validation reports them differently.
type CreateExpenseRequest struct {
	UserID          FlexibleString       `json:"user_id"`
	ExpenseAmount   FlexibleString       `json:"expenseAmount"`
	Title           string               `json:"title"`
	Description     *string              `json:"description"`
	ExpenseDateTime string               `json:"expense_date_time"`
	SplitMethod     string               `json:"split_method"`
	Participants    []ParticipantRequest `json:"participants"`
}

// ToDomain converts to the domain request.
func (r *CreateExpenseRequest) ToDomain() domain.ExpenseRequest {
	var participants []domain.ParticipantInput
	if r.Participants != nil {
		participants = make([]domain.ParticipantInput, len(r.Participants))
		for i, p := range r.Participants {
			participants[i] = domain.ParticipantInput{ParticipantID: string(p.ParticipantID)}
			if p.SplitValue != nil {
				v := string(*p.SplitValue)
				participants[i].SplitValue = &v
			}
		}
	}

	return domain.ExpenseRequest{
		CreatorID:    string(r.UserID),
		Amount:       string(r.ExpenseAmount),
		Title:        r.Title,
		Description:  r.Description,
		OccurredAt:   r.ExpenseDateTime,
		Method:       r.SplitMethod,
		Participants: participants,
	}
}
