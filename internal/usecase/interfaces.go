package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

// UserLookup answers existence questions about users.
type UserLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
	// ExistingIDs returns the subset of ids that belong to registered users.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	UserLookup
	Create(ctx context.Context, tx Transaction, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	MobileExists(ctx context.Context, mobile string) (bool, error)
}

// ExpenseRepository defines data access for expenses and their participations.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.Expense) (int64, error)
	CreateParticipations(ctx context.Context, tx Transaction, expenseID int64, parts []domain.Participation) error
	ListByUser(ctx context.Context, userID int64, date *time.Time) ([]*domain.UserExpense, error)
	ListSummaries(ctx context.Context, filter domain.ReportFilter) ([]*domain.ExpenseSummary, error)
	UserBalances(ctx context.Context, date *time.Time) ([]*domain.UserBalance, error)
	ListIndividual(ctx context.Context, filter domain.ReportFilter) ([]*domain.IndividualExpense, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs fn while it fails with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, fn func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock is the source of the current instant.
type Clock interface {
	Now() time.Time
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key whose request did not succeed.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder receives business counters.
type MetricsRecorder interface {
	ExpenseCreated(method domain.SplitMethod, amount domain.Money, participants int)
	ExpenseRejected(code domain.Code)
	UserCreated()
}
