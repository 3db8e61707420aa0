package usecase

import (
	"time"

	"github.com/iho/splitledger/internal/domain"
)

const (
	// DefaultTransactionTimeout bounds a single expense write, retries included.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultUserCacheTTL is how long a positive user existence check is cached.
	DefaultUserCacheTTL = 10 * time.Minute
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) ExpenseCreated(domain.SplitMethod, domain.Money, int) {}
func (NopMetrics) ExpenseRejected(domain.Code) {}
func (NopMetrics) UserCreated() {}
