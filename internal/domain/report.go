package domain

import "time"

// ReportFilter narrows expense reads. Nil fields are not applied.
type ReportFilter struct {
	Date   *time.Time
	UserID *int64
}

// UserExpense is one expense as seen by a participant.
type UserExpense struct {
	ExpenseID   int64
	Title       string
	Description *string
	ExpenseDate time.Time
	SplitMethod SplitMethod
	TotalAmount Money
	AmountOwed  Money
}

// ExpenseSummary is an expense without its participations.
type ExpenseSummary struct {
	ExpenseID   int64
	Title       string
	Description *string
	ExpenseDate time.Time
	TotalAmount Money
	SplitMethod SplitMethod
}

// UserBalance is the total a user owes across the selected expenses.
type UserBalance struct {
	UserID          int64
	Email           string
	TotalAmountOwed Money
}

// IndividualExpense is one participation row joined with its user and expense.
type IndividualExpense struct {
	UserID      int64
	Email       string
	ExpenseID   int64
	Title       string
	Description *string
	ExpenseDate time.Time
	AmountOwed  Money
}

// OverallSummary aggregates every expense in the selected window.
type OverallSummary struct {
	TotalExpenses    int
	TotalAmountSpent Money
	Expenses         []*ExpenseSummary
	UserSummary      []*UserBalance
}

// BalanceSheet is the data behind the downloadable balance sheet.
type BalanceSheet struct {
	Date       *time.Time
	UserID     *int64
	Individual []*IndividualExpense
	Overall    []*ExpenseSummary
}

// FileName returns the download name of the sheet.
func (b *BalanceSheet) FileName() string {
	if b.Date == nil {
		return "balance-sheet.xlsx"
	}
	return "balance-sheet-for-" + b.Date.Format(DateLayout) + ".xlsx"
}
