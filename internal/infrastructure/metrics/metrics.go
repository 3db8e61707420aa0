package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/splitledger/internal/domain"
)

const namespace = "splitledger"

// Metrics holds the business Prometheus metrics. HTTP metrics live in the
// HTTP middleware.
type Metrics struct {
	// Expense metrics
	ExpensesCreated     *prometheus.CounterVec
	ExpenseAmount       prometheus.Histogram
	ExpenseParticipants prometheus.Histogram
	ExpenseRejections   *prometheus.CounterVec

	// User metrics
	UsersCreated prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventFailures   *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ExpensesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expenses_created_total",
				Help:      "Total number of expenses created",
			},
			[]string{"split_method"},
		),
		ExpenseAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expense_amount",
			Help:      "Expense totals",
			Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		ExpenseParticipants: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expense_participants",
			Help:      "Number of participants per expense",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		ExpenseRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expense_rejections_total",
				Help:      "Total number of rejected expense requests by error code",
			},
			[]string{"code"},
		),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Total number of users created",
		}),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_published_total",
				Help:      "Total number of outbox events published",
			},
			[]string{"event_type"},
		),
		EventFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_event_failures_total",
				Help:      "Total number of outbox events that failed to publish",
			},
			[]string{"event_type"},
		),
	}
}

// ExpenseCreated records a persisted expense.
func (m *Metrics) ExpenseCreated(method domain.SplitMethod, amount domain.Money, participants int) {
	m.ExpensesCreated.WithLabelValues(string(method)).Inc()
	m.ExpenseAmount.Observe(amount.Decimal().InexactFloat64())
	m.ExpenseParticipants.Observe(float64(participants))
}

// ExpenseRejected records a validation or split failure.
func (m *Metrics) ExpenseRejected(code domain.Code) {
	m.ExpenseRejections.WithLabelValues(string(code)).Inc()
}

// UserCreated records a registered user.
func (m *Metrics) UserCreated() {
	m.UsersCreated.Inc()
}

// EventPublished records an outbox event handed to the broker.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// EventFailed records an outbox event that could not be published.
func (m *Metrics) EventFailed(eventType string) {
	m.EventFailures.WithLabelValues(eventType).Inc()
}
