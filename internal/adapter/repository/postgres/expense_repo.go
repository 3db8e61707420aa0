package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// Optional filters are passed as typed NULLs so every query stays static.
const (
	listByUserQuery = `
		SELECT e.id, e.title, e.description, e.date, e.split_method, e.total_amount, p.amount_owed
		FROM expenses e
		JOIN participations p ON e.id = p.expense_id
		WHERE p.user_id = $1
		  AND ($2::date IS NULL OR e.date::date = $2::date)
		ORDER BY e.date ASC, e.id ASC
	`

	listSummariesQuery = `
		SELECT e.id, e.title, e.description, e.date, e.total_amount, e.split_method
		FROM expenses e
		WHERE ($1::date IS NULL OR e.date::date = $1::date)
		  AND ($2::bigint IS NULL OR EXISTS (
		        SELECT 1 FROM participations p WHERE p.expense_id = e.id AND p.user_id = $2::bigint))
		ORDER BY e.date ASC, e.id ASC
	`

	userBalancesQuery = `
		SELECT u.id, u.email, COALESCE(SUM(p.amount_owed), 0)
		FROM users u
		LEFT JOIN participations p ON u.id = p.user_id
		LEFT JOIN expenses e ON p.expense_id = e.id
		WHERE ($1::date IS NULL OR e.date::date = $1::date)
		GROUP BY u.id, u.email
		ORDER BY u.id
	`

	listIndividualQuery = `
		SELECT u.id, u.email, e.id, e.title, e.description, e.date, p.amount_owed
		FROM users u
		JOIN participations p ON u.id = p.user_id
		JOIN expenses e ON p.expense_id = e.id
		WHERE ($1::date IS NULL OR e.date::date = $1::date)
		  AND ($2::bigint IS NULL OR p.user_id = $2::bigint)
		ORDER BY u.id, e.date ASC, e.id ASC
	`
)

var participationColumns = []string{"user_id", "expense_id", "amount_owed"}

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	db querier
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: pool}
}

// Create inserts the expense row and returns its id.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) (int64, error) {
	query := `
		INSERT INTO expenses (title, description, date, split_method, total_amount, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := pgxTx(tx).QueryRow(ctx, query,
		expense.Title,
		ptrToText(expense.Description),
		timeToPgTimestamp(expense.OccurredAt),
		string(expense.Method),
		moneyToNumeric(expense.Amount),
		expense.CreatorID,
		timeToPgTimestamptz(expense.CreatedAt),
	).Scan(&id)

	return id, err
}

// CreateParticipations bulk-inserts the participation rows with COPY.
func (r *ExpenseRepository) CreateParticipations(ctx context.Context, tx usecase.Transaction, expenseID int64, parts []domain.Participation) error {
	rows := make([][]any, len(parts))
	for i, p := range parts {
		rows[i] = []any{p.ParticipantID, expenseID, moneyToNumeric(p.Amount)}
	}

	_, err := pgxTx(tx).CopyFrom(ctx, pgx.Identifier{"participations"}, participationColumns, pgx.CopyFromRows(rows))
	return err
}

// ListByUser lists the expenses userID participates in, oldest first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64, date *time.Time) ([]*domain.UserExpense, error) {
	rows, err := r.db.Query(ctx, listByUserQuery, userID, dateToPgDate(date))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.UserExpense, error) {
		var (
			e           domain.UserExpense
			description pgtype.Text
			occurred    pgtype.Timestamp
			method      string
			total, owed pgtype.Numeric
		)
		if err := row.Scan(&e.ExpenseID, &e.Title, &description, &occurred, &method, &total, &owed); err != nil {
			return nil, err
		}

		var err error
		if e.TotalAmount, err = numericToMoney(total); err != nil {
			return nil, err
		}
		if e.AmountOwed, err = numericToMoney(owed); err != nil {
			return nil, err
		}
		e.Description = textToPtr(description)
		e.ExpenseDate = occurred.Time
		e.SplitMethod = domain.SplitMethod(method)

		return &e, nil
	})
}

// ListSummaries lists expenses matching filter, oldest first.
func (r *ExpenseRepository) ListSummaries(ctx context.Context, filter domain.ReportFilter) ([]*domain.ExpenseSummary, error) {
	rows, err := r.db.Query(ctx, listSummariesQuery, dateToPgDate(filter.Date), userFilter(filter.UserID))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanExpenseSummary)
}

func scanExpenseSummary(row pgx.CollectableRow) (*domain.ExpenseSummary, error) {
	var (
		e           domain.ExpenseSummary
		description pgtype.Text
		occurred    pgtype.Timestamp
		total       pgtype.Numeric
		method      string
	)
	if err := row.Scan(&e.ExpenseID, &e.Title, &description, &occurred, &total, &method); err != nil {
		return nil, err
	}

	amount, err := numericToMoney(total)
	if err != nil {
		return nil, err
	}
	e.TotalAmount = amount
	e.Description = textToPtr(description)
	e.ExpenseDate = occurred.Time
	e.SplitMethod = domain.SplitMethod(method)

	return &e, nil
}

// UserBalances sums what every user owes. Users without participations in
// the window are reported only when no date is given.
func (r *ExpenseRepository) UserBalances(ctx context.Context, date *time.Time) ([]*domain.UserBalance, error) {
	rows, err := r.db.Query(ctx, userBalancesQuery, dateToPgDate(date))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.UserBalance, error) {
		var (
			b     domain.UserBalance
			total pgtype.Numeric
		)
		if err := row.Scan(&b.UserID, &b.Email, &total); err != nil {
			return nil, err
		}

		owed, err := numericToMoney(total)
		if err != nil {
			return nil, err
		}
		b.TotalAmountOwed = owed

		return &b, nil
	})
}

// ListIndividual lists participation rows joined with users and expenses,
// grouped by user.
func (r *ExpenseRepository) ListIndividual(ctx context.Context, filter domain.ReportFilter) ([]*domain.IndividualExpense, error) {
	rows, err := r.db.Query(ctx, listIndividualQuery, dateToPgDate(filter.Date), userFilter(filter.UserID))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.IndividualExpense, error) {
		var (
			e           domain.IndividualExpense
			description pgtype.Text
			occurred    pgtype.Timestamp
			owed        pgtype.Numeric
		)
		if err := row.Scan(&e.UserID, &e.Email, &e.ExpenseID, &e.Title, &description, &occurred, &owed); err != nil {
			return nil, err
		}

		amount, err := numericToMoney(owed)
		if err != nil {
			return nil, err
		}
		e.AmountOwed = amount
		e.Description = textToPtr(description)
		e.ExpenseDate = occurred.Time

		return &e, nil
	})
}

func userFilter(id *int64) pgtype.Int8 {
	if id == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *id, Valid: true}
}
