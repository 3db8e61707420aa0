package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iho/splitledger/internal/domain"
)

// UserUseCase handles user registration and lookup.
type UserUseCase struct {
	txManager  TransactionManager
	userRepo   UserRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	clock      Clock
	metrics    MetricsRecorder
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	metrics MetricsRecorder,
) *UserUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &UserUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		clock:      clock,
		metrics:    metrics,
	}
}

// CreateUserInput represents input for registering a user.
type CreateUserInput struct {
	Email        string
	FirstName    string
	MiddleName   *string
	LastName     string
	MobileNumber string
}

// CreateUser validates input and registers a new user. The mobile number is
// checked before the email.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := checkRequired([]requiredField{
		{missing: input.FirstName == "", err: domain.ErrMissingFirstName},
		{missing: input.LastName == "", err: domain.ErrMissingLastName},
		{missing: input.MobileNumber == "", err: domain.ErrMissingMobile},
		{missing: input.Email == "", err: domain.ErrMissingEmail},
	}); err != nil {
		return nil, err
	}

	if err := domain.ValidateMobileNumber(input.MobileNumber); err != nil {
		return nil, err
	}
	exists, err := uc.userRepo.MobileExists(ctx, input.MobileNumber)
	if err != nil {
		return nil, fmt.Errorf("check mobile: %w", err)
	}
	if exists {
		return nil, domain.ErrMobileAlreadyExists
	}

	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	exists, err = uc.userRepo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}

	now := uc.clock.Now()
	user := &domain.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		LastName:     input.LastName,
		MobileNumber: input.MobileNumber,
		JoinedAt:     now,
		UpdatedAt:    now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Concurrent registrations surface here as a unique violation that the
	// repository maps to the same conflict errors.
	id, err := uc.userRepo.Create(ctx, tx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	payload, err := domain.UserCreatedEvent{UserID: id, Email: user.Email}.Payload()
	if err != nil {
		return nil, fmt.Errorf("encode user event: %w", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   strconv.FormatInt(id, 10),
		AggregateType: domain.AggregateTypeUser,
		EventType:     domain.EventTypeUserCreated,
		Payload:       payload,
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.UserCreated()

	return user, nil
}

// GetUserInput selects a user by id or email. ID wins when both are set.
type GetUserInput struct {
	ID    string
	Email string
}

// GetUser retrieves a user by ID or email.
func (uc *UserUseCase) GetUser(ctx context.Context, input GetUserInput) (*domain.User, error) {
	switch {
	case input.ID != "":
		id, ok := domain.ParseID(input.ID)
		if !ok {
			return nil, domain.ErrInvalidIDFormat
		}
		return uc.userRepo.GetByID(ctx, id)
	case input.Email != "":
		return uc.userRepo.GetByEmail(ctx, input.Email)
	default:
		return nil, domain.ErrMissingEmailAndID
	}
}
