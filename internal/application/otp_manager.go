package application

import (
	"context"
	"time"

	"github.com/yudapratama/go-auth-api/internal/domain/entity"
	"github.com/yudapratama/go-auth-api/internal/domain/repository"
	"github.com/yudapratama/go-auth-api/pkg/apperrors"
	"github.com/yudapratama/go-auth-api/pkg/helpers"
)

// OTPManager issues and validates single-use numeric codes scoped to one user.
type OTPManager struct {
	Repo repository.UserRepository
	TTL  time.Duration
}

func NewOTPManager(repo repository.UserRepository, ttl time.Duration) *OTPManager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPManager{Repo: repo, TTL: ttl}
}

// Issue generates a fresh 6-digit code and persists it with its expiry,
// overwriting any outstanding code for the user.
func (m *OTPManager) Issue(ctx context.Context, u *entity.User) (string, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", apperrors.Server(err)
	}
	u.SetPasswordChangeOTP(code, time.Now().Add(m.TTL))
	if err := m.Repo.Update(ctx, u); err != nil {
		return "", err
	}
	return code, nil
}

// Validate succeeds only when submitted equals the stored code and the current
// time is strictly before the stored expiry. Mismatch and expiry yield the same
// generic error so callers cannot tell which part failed.
func (m *OTPManager) Validate(u *entity.User, submitted string) error {
	if u.PasswordChangeOTP == nil || u.PasswordChangeOTPExp == nil ||
		*u.PasswordChangeOTP != submitted || !time.Now().Before(*u.PasswordChangeOTPExp) {
		return apperrors.Validation("Invalid or expired OTP", nil)
	}
	return nil
}
