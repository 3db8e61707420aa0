package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

// ValidatedExpense is an expense request that passed every check and is
// ready for the split engine.
type ValidatedExpense struct {
	CreatorID   int64
	Amount      domain.Money
	Title       string
	Description *string
	OccurredAt  time.Time
	Method      domain.SplitMethod
	Shares      []domain.Share
}

// ExpenseValidator runs the ordered expense checks. The first failing check
// determines the returned error.
type ExpenseValidator struct {
	users UserLookup
	clock Clock
}

// NewExpenseValidator creates a new ExpenseValidator.
func NewExpenseValidator(users UserLookup, clock Clock) *ExpenseValidator {
	return &ExpenseValidator{users: users, clock: clock}
}

type requiredField struct {
	missing bool
	err     *domain.Error
}

// Validate checks req and converts it into a ValidatedExpense.
func (v *ExpenseValidator) Validate(ctx context.Context, req domain.ExpenseRequest) (*ValidatedExpense, error) {
	if err := checkRequired([]requiredField{
		{missing: req.CreatorID == "", err: domain.ErrMissingCreatorID},
		{missing: req.Amount == "", err: domain.ErrMissingExpenseAmount},
		{missing: req.Title == "", err: domain.ErrMissingTitle},
		{missing: req.Method == "", err: domain.ErrMissingSplitMethod},
		{missing: req.Participants == nil, err: domain.ErrMissingParticipantList},
		{missing: req.OccurredAt == "", err: domain.ErrMissingExpenseDateTime},
	}); err != nil {
		return nil, err
	}

	if len(req.Participants) == 0 {
		return nil, domain.ErrMissingParticipants
	}

	method := domain.SplitMethod(req.Method)
	if !method.IsValid() {
		return nil, domain.ErrInvalidSplitMethod
	}

	creatorID, err := v.creator(ctx, req.CreatorID)
	if err != nil {
		return nil, err
	}

	amount, err := domain.ParseMoney(req.Amount)
	if err != nil || amount == 0 {
		return nil, domain.ErrInvalidExpenseAmount
	}

	creatorKey := participantKey(req.CreatorID)
	seen := make(map[string]struct{}, len(req.Participants))
	creatorFound := false
	for _, p := range req.Participants {
		key := participantKey(p.ParticipantID)
		if key == creatorKey {
			creatorFound = true
		}
		seen[key] = struct{}{}
	}
	if !creatorFound {
		return nil, domain.ErrCreatorMustParticipate
	}
	if len(seen) != len(req.Participants) {
		return nil, domain.ErrDuplicateParticipants
	}

	occurredAt, err := domain.ParseExpenseDateTime(req.OccurredAt, v.clock.Now())
	if err != nil {
		return nil, err
	}

	shares, err := v.shares(ctx, method, req.Participants)
	if err != nil {
		return nil, err
	}

	return &ValidatedExpense{
		CreatorID:   creatorID,
		Amount:      amount,
		Title:       req.Title,
		Description: req.Description,
		OccurredAt:  occurredAt,
		Method:      method,
		Shares:      shares,
	}, nil
}

func checkRequired(fields []requiredField) error {
	var first *domain.Error
	missing := 0
	for _, f := range fields {
		if !f.missing {
			continue
		}
		if first == nil {
			first = f.err
		}
		missing++
	}

	switch {
	case missing >= 2:
		return domain.ErrMissingFields
	case missing == 1:
		return first
	}
	return nil
}

func (v *ExpenseValidator) creator(ctx context.Context, raw string) (int64, error) {
	id, ok := domain.ParseID(raw)
	if !ok {
		return 0, domain.ErrUserNotFound
	}

	exists, err := v.users.Exists(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("lookup creator %d: %w", id, err)
	}
	if !exists {
		return 0, domain.ErrUserNotFound
	}

	return id, nil
}

// shares validates each participant in order, then resolves all of them in
// one batch lookup.
func (v *ExpenseValidator) shares(ctx context.Context, method domain.SplitMethod, participants []domain.ParticipantInput) ([]domain.Share, error) {
	out := make([]domain.Share, len(participants))
	ids := make([]int64, len(participants))

	for i, p := range participants {
		id, ok := domain.ParseID(p.ParticipantID)
		if !ok {
			return nil, domain.ErrInvalidParticipantID
		}
		ids[i] = id
		out[i].ParticipantID = id

		switch method {
		case domain.SplitEqual:
			if p.SplitValue != nil {
				return nil, domain.ErrUnwantedSplitValue
			}
		case domain.SplitExact:
			if p.SplitValue == nil {
				return nil, domain.ErrInvalidExactSplitAmount
			}
			m, err := domain.ParseMoney(*p.SplitValue)
			if err != nil {
				return nil, domain.ErrInvalidExactSplitAmount
			}
			out[i].Value = m.Decimal()
		case domain.SplitPercentage:
			if p.SplitValue == nil {
				return nil, domain.ErrInvalidSplitPercentage
			}
			pct, err := domain.ParsePercentage(*p.SplitValue)
			if err != nil {
				return nil, err
			}
			out[i].Value = pct
		}
	}

	existing, err := v.users.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup participants: %w", err)
	}
	if len(existing) != len(ids) {
		return nil, domain.ErrParticipantNotFound
	}

	return out, nil
}

// participantKey normalizes numeric ids so "007" and "7" compare equal.
func participantKey(raw string) string {
	if id, ok := domain.ParseID(raw); ok {
		return strconv.FormatInt(id, 10)
	}
	return raw
}
