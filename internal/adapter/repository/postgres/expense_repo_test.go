package postgres

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/splitledger/internal/domain"
)

func numeric(milli int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(milli), Exp: -3, Valid: true}
}

func timestamp(t time.Time) pgtype.Timestamp {
	return pgtype.Timestamp{Time: t, Valid: true}
}

func TestExpenseRepositoryCreateWithParticipations(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(writeTxOptions)
	mockPool.ExpectQuery("INSERT INTO expenses").
		WithArgs("Dinner", pgxmock.AnyArg(), pgxmock.AnyArg(), "equal", pgxmock.AnyArg(), int64(1), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mockPool.ExpectCopyFrom(pgx.Identifier{"participations"}, participationColumns).
		WillReturnResult(2)
	mockPool.ExpectCommit()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	repo := &ExpenseRepository{db: mockPool}
	id, err := repo.Create(ctx, tx, &domain.Expense{
		CreatorID:  1,
		Title:      "Dinner",
		OccurredAt: time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC),
		Method:     domain.SplitEqual,
		Amount:     domain.Money(100_000),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	err = repo.CreateParticipations(ctx, tx, id, []domain.Participation{
		{ParticipantID: 1, Amount: 50_000},
		{ParticipantID: 2, Amount: 50_000},
	})
	if err != nil {
		t.Fatalf("participations: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestExpenseRepositoryListByUser(t *testing.T) {
	mockPool := newMockPool(t)
	occurred := time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC)

	mockPool.ExpectQuery("WHERE p.user_id = \\$1").
		WithArgs(int64(2), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "date", "split_method", "total_amount", "amount_owed"}).
			AddRow(int64(7), "Dinner", pgtype.Text{}, timestamp(occurred), "equal", numeric(100_000), numeric(33_333)).
			AddRow(int64(9), "Taxi", pgtype.Text{String: "airport", Valid: true}, timestamp(occurred.Add(time.Hour)), "exact", numeric(40_500), numeric(20_250)))

	repo := &ExpenseRepository{db: mockPool}
	got, err := repo.ListByUser(context.Background(), 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(got))
	}
	if got[0].Description != nil || got[0].AmountOwed != 33_333 || got[0].SplitMethod != domain.SplitEqual {
		t.Fatalf("unexpected first row %+v", got[0])
	}
	if got[1].Description == nil || *got[1].Description != "airport" || got[1].TotalAmount != 40_500 {
		t.Fatalf("unexpected second row %+v", got[1])
	}
	if !got[0].ExpenseDate.Equal(occurred) {
		t.Fatalf("unexpected date %v", got[0].ExpenseDate)
	}

	assertExpectations(t, mockPool)
}

func TestExpenseRepositoryReports(t *testing.T) {
	mockPool := newMockPool(t)
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	userID := int64(3)
	filter := domain.ReportFilter{Date: &day, UserID: &userID}

	mockPool.ExpectQuery("FROM expenses e\\s+WHERE").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "date", "total_amount", "split_method"}).
			AddRow(int64(1), "Rent", pgtype.Text{}, timestamp(day), numeric(900_000), "percentage"))
	mockPool.ExpectQuery("COALESCE\\(SUM\\(p.amount_owed\\), 0\\)").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "sum"}).
			AddRow(int64(3), "c@example.com", numeric(300_000)).
			AddRow(int64(4), "d@example.com", numeric(0)))
	mockPool.ExpectQuery("SELECT u.id, u.email, e.id").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "expense_id", "title", "description", "date", "amount_owed"}).
			AddRow(int64(3), "c@example.com", int64(1), "Rent", pgtype.Text{}, timestamp(day), numeric(300_000)))

	repo := &ExpenseRepository{db: mockPool}
	ctx := context.Background()

	summaries, err := repo.ListSummaries(ctx, filter)
	if err != nil || len(summaries) != 1 || summaries[0].TotalAmount != 900_000 || summaries[0].SplitMethod != domain.SplitPercentage {
		t.Fatalf("unexpected summaries %+v (%v)", summaries, err)
	}

	balances, err := repo.UserBalances(ctx, &day)
	if err != nil || len(balances) != 2 || balances[0].TotalAmountOwed != 300_000 || balances[1].TotalAmountOwed != 0 {
		t.Fatalf("unexpected balances %+v (%v)", balances, err)
	}

	individual, err := repo.ListIndividual(ctx, filter)
	if err != nil || len(individual) != 1 || individual[0].Email != "c@example.com" || individual[0].AmountOwed != 300_000 {
		t.Fatalf("unexpected individual rows %+v (%v)", individual, err)
	}

	assertExpectations(t, mockPool)
}

func TestUserFilter(t *testing.T) {
	if userFilter(nil).Valid {
		t.Fatal("nil user id must be a NULL parameter")
	}
	id := int64(5)
	if f := userFilter(&id); !f.Valid || f.Int64 != 5 {
		t.Fatalf("unexpected filter %+v", f)
	}
	if dateToPgDate(nil).Valid {
		t.Fatal("nil date must be a NULL parameter")
	}
}
