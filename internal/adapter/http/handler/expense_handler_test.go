package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/iho/splitledger/internal/adapter/export/xlsx"
	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

type expenseServiceStub struct {
	createFn  func(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error)
	listFn    func(ctx context.Context, input usecase.ListUserExpensesInput) ([]*domain.UserExpense, error)
	overallFn func(ctx context.Context, date string) (*domain.OverallSummary, error)
	sheetFn   func(ctx context.Context, input usecase.BalanceSheetInput) (*domain.BalanceSheet, error)
}

func (s *expenseServiceStub) CreateExpense(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
	return s.createFn(ctx, req)
}

func (s *expenseServiceStub) ListUserExpenses(ctx context.Context, input usecase.ListUserExpensesInput) ([]*domain.UserExpense, error) {
	return s.listFn(ctx, input)
}

func (s *expenseServiceStub) OverallExpenses(ctx context.Context, date string) (*domain.OverallSummary, error) {
	return s.overallFn(ctx, date)
}

func (s *expenseServiceStub) BalanceSheet(ctx context.Context, input usecase.BalanceSheetInput) (*domain.BalanceSheet, error) {
	return s.sheetFn(ctx, input)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestExpenseHandler_Create_Success(t *testing.T) {
	var captured domain.ExpenseRequest
	handler := NewExpenseHandler(&expenseServiceStub{
		createFn: func(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
			captured = req
			return &domain.Expense{ID: 42}, nil
		},
	})

	body := `{
		"user_id": 1,
		"expenseAmount": "100",
		"title": "Dinner",
		"expense_date_time": "2024-06-01T19:30:00",
		"split_method": "equal",
		"participants": [{"participant_id": 1}, {"participant_id": 2}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/expense/add", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.CreatorID != "1" || captured.Method != "equal" || len(captured.Participants) != 2 {
		t.Fatalf("unexpected request %+v", captured)
	}
	if rec.Body.String() != "{\"ExpenseID\":42}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestExpenseHandler_Create_ValidationError(t *testing.T) {
	handler := NewExpenseHandler(&expenseServiceStub{
		createFn: func(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
			return nil, domain.ErrFutureDateTimeNotAllowed
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/expense/add", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assertErrorBody(t, rec, http.StatusUnprocessableEntity, "FUTURE_DATE_TIME_NOT_ALLOWED")
}

func TestExpenseHandler_Create_InternalError(t *testing.T) {
	handler := NewExpenseHandler(&expenseServiceStub{
		createFn: func(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
			return nil, errors.New("deadlock detected")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/expense/add", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assertErrorBody(t, rec, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")
}

func TestExpenseHandler_ListByUser(t *testing.T) {
	var captured usecase.ListUserExpensesInput
	handler := NewExpenseHandler(&expenseServiceStub{
		listFn: func(ctx context.Context, input usecase.ListUserExpensesInput) ([]*domain.UserExpense, error) {
			captured = input
			return []*domain.UserExpense{{ExpenseID: 1, Title: "Dinner", AmountOwed: 33_334}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/expense/user/5?date=2024-06-01", nil)
	req = withURLParam(req, "user_id", "5")
	rec := httptest.NewRecorder()

	handler.ListByUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.UserID != "5" || captured.Date != "2024-06-01" {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp []dto.UserExpenseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].AmountOwed != 33_334 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestExpenseHandler_Overall(t *testing.T) {
	handler := NewExpenseHandler(&expenseServiceStub{
		overallFn: func(ctx context.Context, date string) (*domain.OverallSummary, error) {
			if date != "" {
				return nil, domain.ErrInvalidDateFormat
			}
			return &domain.OverallSummary{TotalExpenses: 2, TotalAmountSpent: 150_500}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Overall(rec, httptest.NewRequest(http.MethodGet, "/expense/overall", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.OverallExpensesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OverallSummary.TotalExpenses != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.Overall(rec, httptest.NewRequest(http.MethodGet, "/expense/overall?date=06-01-2024", nil))
	assertErrorBody(t, rec, http.StatusUnprocessableEntity, "INVALID_DATE_FORMAT")
}

func TestExpenseHandler_BalanceSheet(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var captured usecase.BalanceSheetInput
	handler := NewExpenseHandler(&expenseServiceStub{
		sheetFn: func(ctx context.Context, input usecase.BalanceSheetInput) (*domain.BalanceSheet, error) {
			captured = input
			return &domain.BalanceSheet{
				Date: &day,
				Overall: []*domain.ExpenseSummary{
					{ExpenseID: 1, Title: "Rent", ExpenseDate: day, TotalAmount: 900_000, SplitMethod: domain.SplitPercentage},
				},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/expense/balance-sheet?date=2024-06-01&id=3", nil)
	rec := httptest.NewRecorder()

	handler.BalanceSheet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Date != "2024-06-01" || captured.UserID != "3" {
		t.Fatalf("unexpected input %+v", captured)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsx.ContentType {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=balance-sheet-for-2024-06-01.xlsx" {
		t.Fatalf("unexpected content disposition %s", cd)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsx.OverallSheet)
	if err != nil || len(rows) != 2 {
		t.Fatalf("unexpected overall rows %v (%v)", rows, err)
	}
}

func TestExpenseHandler_BalanceSheetUnknownUser(t *testing.T) {
	handler := NewExpenseHandler(&expenseServiceStub{
		sheetFn: func(ctx context.Context, input usecase.BalanceSheetInput) (*domain.BalanceSheet, error) {
			return nil, domain.ErrUserNotFound
		},
	})

	rec := httptest.NewRecorder()
	handler.BalanceSheet(rec, httptest.NewRequest(http.MethodGet, "/expense/balance-sheet?id=99", nil))

	assertErrorBody(t, rec, http.StatusNotFound, "USER_NOT_FOUND")
}
