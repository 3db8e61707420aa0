package dto

import (
	"github.com/iho/splitledger/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// CreateUserResponse is returned after registering a user.
type CreateUserResponse struct {
	ID int64 `json:"id"`
}

// CreateExpenseResponse is returned after recording an expense.
type CreateExpenseResponse struct {
	ExpenseID int64 `json:"ExpenseID"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	MiddleName   *string `json:"middle_name"`
	LastName     string  `json:"last_name"`
	MobileNumber string  `json:"mobile_number"`
	Joining      string  `json:"Joining"`
	LastUpdate   string  `json:"Last_update"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		MiddleName:   u.MiddleName,
		LastName:     u.LastName,
		MobileNumber: u.MobileNumber,
		Joining:      u.JoinedAt.UTC().Format(domain.DateTimeLayout),
		LastUpdate:   u.UpdatedAt.UTC().Format(domain.DateTimeLayout),
	}
}

// UserExpenseResponse is one expense in a user's expense list.
type UserExpenseResponse struct {
	ExpenseID   int64        `json:"expense_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	ExpenseDate string       `json:"expense_date"`
	SplitMethod string       `json:"split_method"`
	TotalAmount domain.Money `json:"total_amount"`
	AmountOwed  domain.Money `json:"amount_owed"`
}

// UserExpensesFromDomain converts a user's expenses to responses.
func UserExpensesFromDomain(expenses []*domain.UserExpense) []*UserExpenseResponse {
	result := make([]*UserExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = &UserExpenseResponse{
			ExpenseID:   e.ExpenseID,
			Title:       e.Title,
			Description: e.Description,
			ExpenseDate: e.ExpenseDate.Format(domain.DateTimeLayout),
			SplitMethod: string(e.SplitMethod),
			TotalAmount: e.TotalAmount,
			AmountOwed:  e.AmountOwed,
		}
	}
	return result
}

// ExpenseSummaryResponse is an expense without its participations.
type ExpenseSummaryResponse struct {
	ExpenseID   int64        `json:"expense_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	ExpenseDate string       `json:"expense_date"`
	TotalAmount domain.Money `json:"total_amount"`
	SplitMethod string       `json:"split_method"`
}

// UserBalanceResponse is the amount one user owes.
type UserBalanceResponse struct {
	UserID          int64        `json:"user_id"`
	Email           string       `json:"email"`
	TotalAmountOwed domain.Money `json:"total_amount_owed"`
}

// OverallSummaryResponse holds the totals of OverallExpensesResponse.
type OverallSummaryResponse struct {
	TotalExpenses    int          `json:"total_expenses"`
	TotalAmountSpent domain.Money `json:"total_amount_spent"`
}

// OverallExpensesResponse is the body of the overall expenses report.
type OverallExpensesResponse struct {
	OverallSummary OverallSummaryResponse    `json:"overall_summary"`
	Expenses       []*ExpenseSummaryResponse `json:"expenses"`
	UserSummary    []*UserBalanceResponse    `json:"user_summary"`
}

// OverallFromDomain converts the overall summary to a response.
func OverallFromDomain(s *domain.OverallSummary) *OverallExpensesResponse {
	resp := &OverallExpensesResponse{
		OverallSummary: OverallSummaryResponse{
			TotalExpenses:    s.TotalExpenses,
			TotalAmountSpent: s.TotalAmountSpent,
		},
		Expenses:    make([]*ExpenseSummaryResponse, len(s.Expenses)),
		UserSummary: make([]*UserBalanceResponse, len(s.UserSummary)),
	}

	for i, e := range s.Expenses {
		resp.Expenses[i] = &ExpenseSummaryResponse{
			ExpenseID:   e.ExpenseID,
			Title:       e.Title,
			Description: e.Description,
			ExpenseDate: e.ExpenseDate.Format(domain.DateTimeLayout),
			TotalAmount: e.TotalAmount,
			SplitMethod: string(e.SplitMethod),
		}
	}
	for i, b := range s.UserSummary {
		resp.UserSummary[i] = &UserBalanceResponse{
			UserID:          b.UserID,
			Email:           b.Email,
			TotalAmountOwed: b.TotalAmountOwed,
		}
	}

	return resp
}
