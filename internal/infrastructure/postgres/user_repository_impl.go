package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yudapratama/go-auth-api/internal/domain/entity"
	"github.com/yudapratama/go-auth-api/internal/domain/repository"
	"github.com/yudapratama/go-auth-api/pkg/apperrors"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, first_name, last_name, date_of_birth,
	is_active, last_login_at, password_reset_token, password_reset_expires,
	password_change_otp, password_change_otp_expires, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, date_of_birth, is_active)
		VALUES (lower($1), $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.DateOfBirth, u.IsActive)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.Duplicate("User with this email already exists")
		}
		return apperrors.Database(err)
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = lower($1)
	`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = lower($1), password_hash = $2, first_name = $3, last_name = $4,
			date_of_birth = $5, is_active = $6, last_login_at = $7,
			password_reset_token = $8, password_reset_expires = $9,
			password_change_otp = $10, password_change_otp_expires = $11,
			updated_at = $12
		WHERE id = $13
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.DateOfBirth, u.IsActive,
		u.LastLoginAt, u.PasswordResetToken, u.PasswordResetExpires,
		u.PasswordChangeOTP, u.PasswordChangeOTPExp, u.UpdatedAt, u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.Duplicate("User with this email already exists")
		}
		return apperrors.Database(err)
	}
	if res.RowsAffected() == 0 {
		return apperrors.Database(pgx.ErrNoRows)
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.DateOfBirth,
		&u.IsActive, &u.LastLoginAt, &u.PasswordResetToken, &u.PasswordResetExpires,
		&u.PasswordChangeOTP, &u.PasswordChangeOTPExp, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Database(err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
