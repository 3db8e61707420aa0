package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/splitledger/internal/domain"
)

func TestOutboxRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(writeTxOptions)
	mockPool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("evt-1", "42", domain.AggregateTypeExpense, domain.EventTypeExpenseCreated, pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectRollback()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	repo := &OutboxRepository{db: mockPool}
	err = repo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "42",
		AggregateType: domain.AggregateTypeExpense,
		EventType:     domain.EventTypeExpenseCreated,
		Payload:       map[string]any{"expense_id": 42},
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestOutboxRepositoryGetUnpublishedAndMark(t *testing.T) {
	mockPool := newMockPool(t)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("FROM outbox_events").
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("evt-1", "7", domain.AggregateTypeUser, domain.EventTypeUserCreated,
				[]byte(`{"user_id":7,"email":"a@b.com"}`), pgtype.Timestamptz{Time: created, Valid: true}, pgtype.Timestamptz{}, false))
	mockPool.ExpectExec("UPDATE outbox_events SET published = TRUE").
		WithArgs("evt-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := &OutboxRepository{db: mockPool}
	ctx := context.Background()

	events, err := repo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.EventType != domain.EventTypeUserCreated || event.PublishedAt != nil || event.Payload["email"] != "a@b.com" {
		t.Fatalf("unexpected event %+v", event)
	}
	if !event.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at %v", event.CreatedAt)
	}

	if err := repo.MarkPublished(ctx, "evt-1", time.Now()); err != nil {
		t.Fatalf("mark published: %v", err)
	}

	assertExpectations(t, mockPool)
}
