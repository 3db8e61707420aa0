package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/export/xlsx"
	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	CreateExpense(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error)
	ListUserExpenses(ctx context.Context, input usecase.ListUserExpensesInput) ([]*domain.UserExpense, error)
	OverallExpenses(ctx context.Context, date string) (*domain.OverallSummary, error)
	BalanceSheet(ctx context.Context, input usecase.BalanceSheetInput) (*domain.BalanceSheet, error)
}

// ExpenseHandler handles expense-related HTTP requests.
type ExpenseHandler struct {
	expenseUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseUC: expenseUC}
}

// Create records a new expense.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	expense, err := h.expenseUC.CreateExpense(r.Context(), req.ToDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateExpenseResponse{ExpenseID: expense.ID})
}

// ListByUser lists the expenses a user participates in.
func (h *ExpenseHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseUC.ListUserExpenses(r.Context(), usecase.ListUserExpensesInput{
		UserID: chi.URLParam(r, "user_id"),
		Date:   r.URL.Query().Get("date"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserExpensesFromDomain(expenses))
}

// Overall summarizes all expenses, optionally for a single day.
func (h *ExpenseHandler) Overall(w http.ResponseWriter, r *http.Request) {
	summary, err := h.expenseUC.OverallExpenses(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OverallFromDomain(summary))
}

// BalanceSheet streams the balance sheet workbook as an attachment.
func (h *ExpenseHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sheet, err := h.expenseUC.BalanceSheet(r.Context(), usecase.BalanceSheetInput{
		Date:   q.Get("date"),
		UserID: q.Get("id"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Render fully before writing headers so failures still produce JSON.
	var buf bytes.Buffer
	if err := xlsx.WriteBalanceSheet(&buf, sheet); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+sheet.FileName())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
