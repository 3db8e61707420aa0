package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

const (
	pgErrUniqueViolation = "23505"

	usersEmailKey  = "users_email_key"
	usersMobileKey = "users_mobile_number_key"
)

const userColumns = `id, email, first_name, middle_name, last_name, mobile_number, joining, last_update`

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	db querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

// Create inserts a new user and returns its id.
func (r *UserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) (int64, error) {
	query := `
		INSERT INTO users (email, first_name, middle_name, last_name, mobile_number, joining, last_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := pgxTx(tx).QueryRow(ctx, query,
		user.Email,
		user.FirstName,
		ptrToText(user.MiddleName),
		user.LastName,
		user.MobileNumber,
		timeToPgTimestamp(user.JoinedAt),
		timeToPgTimestamp(user.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return 0, mapUserConflict(err)
	}

	return id, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user       domain.User
		middleName pgtype.Text
		joining    pgtype.Timestamp
		lastUpdate pgtype.Timestamp
	)

	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&middleName,
		&user.LastName,
		&user.MobileNumber,
		&joining,
		&lastUpdate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user.MiddleName = textToPtr(middleName)
	user.JoinedAt = joining.Time
	user.UpdatedAt = lastUpdate.Time

	return &user, nil
}

// Exists reports whether a user with id exists.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

// EmailExists reports whether email is already registered.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

// MobileExists reports whether mobile is already registered.
func (r *UserRepository) MobileExists(ctx context.Context, mobile string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE mobile_number = $1)`, mobile)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ExistingIDs returns the ids that belong to registered users.
func (r *UserRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// mapUserConflict turns unique violations raised by a concurrent
// registration into the matching domain conflict.
func mapUserConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrUniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case usersEmailKey:
		return domain.ErrEmailAlreadyExists
	case usersMobileKey:
		return domain.ErrMobileAlreadyExists
	}
	return err
}
