package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
	"github.com/iho/splitledger/internal/usecase/mocks"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func participants(ids ...string) []domain.ParticipantInput {
	out := make([]domain.ParticipantInput, len(ids))
	for i, id := range ids {
		out[i] = domain.ParticipantInput{ParticipantID: id}
	}
	return out
}

func withValues(ps []domain.ParticipantInput, values ...string) []domain.ParticipantInput {
	for i, v := range values {
		ps[i].SplitValue = strPtr(v)
	}
	return ps
}

func validRequest() domain.ExpenseRequest {
	return domain.ExpenseRequest{
		CreatorID:    "1",
		Amount:       "100",
		Title:        "Dinner",
		Method:       "equal",
		OccurredAt:   "2024-06-01T19:30:00",
		Participants: participants("1", "2", "3"),
	}
}

func creatorExists(u *mocks.MockUserLookup) {
	u.EXPECT().Exists(gomock.Any(), int64(1)).Return(true, nil)
}

func TestExpenseValidator_Validate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(r *domain.ExpenseRequest)
		setupMocks func(u *mocks.MockUserLookup)
		wantErr    error
	}{
		{
			name: "two fields missing",
			modify: func(r *domain.ExpenseRequest) {
				r.Title = ""
				r.OccurredAt = ""
			},
			wantErr: domain.ErrMissingFields,
		},
		{
			name:    "missing creator",
			modify:  func(r *domain.ExpenseRequest) { r.CreatorID = "" },
			wantErr: domain.ErrMissingCreatorID,
		},
		{
			name:    "missing amount",
			modify:  func(r *domain.ExpenseRequest) { r.Amount = "" },
			wantErr: domain.ErrMissingExpenseAmount,
		},
		{
			name:    "missing title",
			modify:  func(r *domain.ExpenseRequest) { r.Title = "" },
			wantErr: domain.ErrMissingTitle,
		},
		{
			name:    "missing method",
			modify:  func(r *domain.ExpenseRequest) { r.Method = "" },
			wantErr: domain.ErrMissingSplitMethod,
		},
		{
			name:    "missing participants array",
			modify:  func(r *domain.ExpenseRequest) { r.Participants = nil },
			wantErr: domain.ErrMissingParticipantList,
		},
		{
			name:    "missing date time",
			modify:  func(r *domain.ExpenseRequest) { r.OccurredAt = "" },
			wantErr: domain.ErrMissingExpenseDateTime,
		},
		{
			name:    "empty participants",
			modify:  func(r *domain.ExpenseRequest) { r.Participants = []domain.ParticipantInput{} },
			wantErr: domain.ErrMissingParticipants,
		},
		{
			name:    "unknown method",
			modify:  func(r *domain.ExpenseRequest) { r.Method = "weighted" },
			wantErr: domain.ErrInvalidSplitMethod,
		},
		{
			name:    "non numeric creator",
			modify:  func(r *domain.ExpenseRequest) { r.CreatorID = "abc" },
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:   "creator not registered",
			modify: func(r *domain.ExpenseRequest) {},
			setupMocks: func(u *mocks.MockUserLookup) {
				u.EXPECT().Exists(gomock.Any(), int64(1)).Return(false, nil)
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:       "malformed amount",
			modify:     func(r *domain.ExpenseRequest) { r.Amount = "12.3456" },
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidExpenseAmount,
		},
		{
			name:       "zero amount",
			modify:     func(r *domain.ExpenseRequest) { r.Amount = "0.000" },
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidExpenseAmount,
		},
		{
			name:       "eleven integer digits",
			modify:     func(r *domain.ExpenseRequest) { r.Amount = "10000000000" },
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidExpenseAmount,
		},
		{
			name:       "creator not participating",
			modify:     func(r *domain.ExpenseRequest) { r.Participants = participants("2", "3") },
			setupMocks: creatorExists,
			wantErr:    domain.ErrCreatorMustParticipate,
		},
		{
			name:       "duplicate participants",
			modify:     func(r *domain.ExpenseRequest) { r.Participants = participants("1", "2", "02") },
			setupMocks: creatorExists,
			wantErr:    domain.ErrDuplicateParticipants,
		},
		{
			name: "duplicate checked before participant id format",
			modify: func(r *domain.ExpenseRequest) {
				r.Participants = participants("1", "x", "x")
			},
			setupMocks: creatorExists,
			wantErr:    domain.ErrDuplicateParticipants,
		},
		{
			name:       "bad date time format",
			modify:     func(r *domain.ExpenseRequest) { r.OccurredAt = "2024-06-01 19:30" },
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidDateTimeFormat,
		},
		{
			name:       "future date time",
			modify:     func(r *domain.ExpenseRequest) { r.OccurredAt = "2024-06-15T12:00:01" },
			setupMocks: creatorExists,
			wantErr:    domain.ErrFutureDateTimeNotAllowed,
		},
		{
			name:       "invalid participant id",
			modify:     func(r *domain.ExpenseRequest) { r.Participants = participants("1", "bob") },
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidParticipantID,
		},
		{
			name:       "zero participant id",
			modify:     func(r *domain.ExpenseRequest) { r.Participants = participants("1", "0") },
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidParticipantID,
		},
		{
			name:       "negative participant id",
			modify:     func(r *domain.ExpenseRequest) { r.Participants = participants("1", "-1") },
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidParticipantID,
		},
		{
			name: "split value on equal",
			modify: func(r *domain.ExpenseRequest) {
				r.Participants = withValues(participants("1", "2"), "50")
			},
			setupMocks: creatorExists,
			wantErr:    domain.ErrUnwantedSplitValue,
		},
		{
			name: "exact without value",
			modify: func(r *domain.ExpenseRequest) {
				r.Method = "exact"
				r.Participants = withValues(participants("1", "2"), "50")
			},
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidExactSplitAmount,
		},
		{
			name: "exact with malformed value",
			modify: func(r *domain.ExpenseRequest) {
				r.Method = "exact"
				r.Participants = withValues(participants("1", "2"), "50", "-50")
			},
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidExactSplitAmount,
		},
		{
			name: "percentage above hundred",
			modify: func(r *domain.ExpenseRequest) {
				r.Method = "percentage"
				r.Participants = withValues(participants("1", "2"), "150", "-50")
			},
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidSplitPercentage,
		},
		{
			name: "percentage without value",
			modify: func(r *domain.ExpenseRequest) {
				r.Method = "percentage"
				r.Participants = withValues(participants("1", "2"), "50")
			},
			setupMocks: creatorExists,
			wantErr:    domain.ErrInvalidSplitPercentage,
		},
		{
			name:   "unregistered participant",
			modify: func(r *domain.ExpenseRequest) {},
			setupMocks: func(u *mocks.MockUserLookup) {
				creatorExists(u)
				u.EXPECT().ExistingIDs(gomock.Any(), []int64{1, 2, 3}).Return([]int64{1, 3}, nil)
			},
			wantErr: domain.ErrParticipantNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			users := mocks.NewMockUserLookup(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(users)
			}

			req := validRequest()
			tt.modify(&req)

			v := usecase.NewExpenseValidator(users, fixedClock{now: testNow})
			got, err := v.Validate(context.Background(), req)

			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpenseValidator_ValidateSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserLookup(ctrl)
	creatorExists(users)
	users.EXPECT().ExistingIDs(gomock.Any(), []int64{1, 2}).Return([]int64{1, 2}, nil)

	req := validRequest()
	req.Method = "exact"
	req.Amount = "100.5"
	req.Description = strPtr("team dinner")
	req.Participants = withValues(participants("1", "2"), "60.25", "40.25")

	v := usecase.NewExpenseValidator(users, fixedClock{now: testNow})
	got, err := v.Validate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.CreatorID)
	assert.Equal(t, domain.Money(100_500), got.Amount)
	assert.Equal(t, domain.SplitExact, got.Method)
	assert.Equal(t, time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC), got.OccurredAt)
	require.Len(t, got.Shares, 2)
	assert.Equal(t, "60.25", got.Shares[0].Value.String())
	assert.Equal(t, int64(2), got.Shares[1].ParticipantID)
}

func TestExpenseValidator_LookupFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserLookup(ctrl)
	boom := errors.New("connection refused")
	users.EXPECT().Exists(gomock.Any(), int64(1)).Return(false, boom)

	v := usecase.NewExpenseValidator(users, fixedClock{now: testNow})
	_, err := v.Validate(context.Background(), validRequest())

	assert.ErrorIs(t, err, boom)
	_, isDomain := domain.AsError(err)
	assert.False(t, isDomain)
}
