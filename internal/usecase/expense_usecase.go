package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iho/splitledger/internal/domain"
)

// ExpenseUseCase handles expense business logic.
type ExpenseUseCase struct {
	txManager   TransactionManager
	expenseRepo ExpenseRepository
	outboxRepo  OutboxRepository
	users       UserLookup
	validator   *ExpenseValidator
	retrier     Retrier
	idGen       IDGenerator
	clock       Clock
	metrics     MetricsRecorder
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	expenseRepo ExpenseRepository,
	outboxRepo OutboxRepository,
	users UserLookup,
	retrier Retrier,
	idGen IDGenerator,
	clock Clock,
	metrics MetricsRecorder,
) *ExpenseUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ExpenseUseCase{
		txManager:   txManager,
		expenseRepo: expenseRepo,
		outboxRepo:  outboxRepo,
		users:       users,
		validator:   NewExpenseValidator(users, clock),
		retrier:     retrier,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// CreateExpense validates req, splits the amount and persists the expense
// with its participations and an expense.created event in one transaction.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
	v, err := uc.validator.Validate(ctx, req)
	if err != nil {
		uc.reject(err)
		return nil, err
	}

	parts, err := domain.ComputeSplit(v.Method, v.Amount, v.Shares)
	if err != nil {
		uc.reject(err)
		return nil, err
	}

	expense := &domain.Expense{
		CreatorID:      v.CreatorID,
		Title:          v.Title,
		Description:    v.Description,
		OccurredAt:     v.OccurredAt,
		Method:         v.Method,
		Amount:         v.Amount,
		Participations: parts,
		CreatedAt:      uc.clock.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	err = uc.retrier.Retry(ctx, func() error {
		return uc.persist(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ExpenseCreated(expense.Method, expense.Amount, len(expense.Participations))

	return expense, nil
}

func (uc *ExpenseUseCase) persist(ctx context.Context, expense *domain.Expense) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	id, err := uc.expenseRepo.Create(ctx, tx, expense)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	if err := uc.expenseRepo.CreateParticipations(ctx, tx, id, expense.Participations); err != nil {
		return fmt.Errorf("insert participations: %w", err)
	}

	payload, err := domain.ExpenseCreatedEvent{
		ExpenseID:      id,
		CreatorID:      expense.CreatorID,
		Title:          expense.Title,
		SplitMethod:    expense.Method,
		TotalAmount:    expense.Amount.String(),
		ExpenseDate:    expense.OccurredAt.Format(domain.DateTimeLayout),
		Participations: expense.Participations,
	}.Payload()
	if err != nil {
		return fmt.Errorf("encode expense event: %w", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   strconv.FormatInt(id, 10),
		AggregateType: domain.AggregateTypeExpense,
		EventType:     domain.EventTypeExpenseCreated,
		Payload:       payload,
		CreatedAt:     expense.CreatedAt,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	expense.ID = id
	return nil
}

func (uc *ExpenseUseCase) reject(err error) {
	if de, ok := domain.AsError(err); ok {
		uc.metrics.ExpenseRejected(de.Code)
	}
}

// ListUserExpensesInput represents input for listing a user's expenses.
type ListUserExpensesInput struct {
	UserID string
	Date   string
}

// ListUserExpenses returns the expenses userID participates in, oldest first.
func (uc *ExpenseUseCase) ListUserExpenses(ctx context.Context, input ListUserExpensesInput) ([]*domain.UserExpense, error) {
	if input.UserID == "" {
		return nil, domain.ErrMissingUserID
	}

	userID, err := uc.requireUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	date, err := uc.parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	return uc.expenseRepo.ListByUser(ctx, userID, date)
}

// OverallExpenses summarizes every expense, optionally restricted to one day.
func (uc *ExpenseUseCase) OverallExpenses(ctx context.Context, dateRaw string) (*domain.OverallSummary, error) {
	date, err := uc.parseDate(dateRaw)
	if err != nil {
		return nil, err
	}

	var (
		expenses []*domain.ExpenseSummary
		balances []*domain.UserBalance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = uc.expenseRepo.ListSummaries(gctx, domain.ReportFilter{Date: date})
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = uc.expenseRepo.UserBalances(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total domain.Money
	for _, e := range expenses {
		total += e.TotalAmount
	}

	return &domain.OverallSummary{
		TotalExpenses:    len(expenses),
		TotalAmountSpent: total,
		Expenses:         expenses,
		UserSummary:      balances,
	}, nil
}

// BalanceSheetInput represents input for building a balance sheet.
type BalanceSheetInput struct {
	Date   string
	UserID string
}

// BalanceSheet collects the individual and overall rows of the balance sheet.
func (uc *ExpenseUseCase) BalanceSheet(ctx context.Context, input BalanceSheetInput) (*domain.BalanceSheet, error) {
	date, err := uc.parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	filter := domain.ReportFilter{Date: date}
	if input.UserID != "" {
		userID, err := uc.requireUser(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		filter.UserID = &userID
	}

	sheet := &domain.BalanceSheet{Date: date, UserID: filter.UserID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sheet.Individual, err = uc.expenseRepo.ListIndividual(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		sheet.Overall, err = uc.expenseRepo.ListSummaries(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sheet, nil
}

func (uc *ExpenseUseCase) requireUser(ctx context.Context, raw string) (int64, error) {
	id, ok := domain.ParseID(raw)
	if !ok {
		return 0, domain.ErrUserNotFound
	}

	exists, err := uc.users.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrUserNotFound
	}

	return id, nil
}

func (uc *ExpenseUseCase) parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	d, err := domain.ParseFilterDate(raw, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	return &d, nil
}
