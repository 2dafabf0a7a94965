package entity

import (
	"time"

	"github.com/yudapratama/go-auth-api/pkg/helpers"
)

// User is the aggregate root for the user domain. PasswordHash only ever holds
// a bcrypt hash; SetPassword is the single way a credential enters the record.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	DateOfBirth  time.Time
	IsActive     bool
	LastLoginAt  *time.Time

	// One-shot secrets. Each pair is set and cleared together, never half-cleared.
	PasswordResetToken   *string
	PasswordResetExpires *time.Time
	PasswordChangeOTP    *string
	PasswordChangeOTPExp *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetPassword hashes plain and stores the hash. Callers never assign
// PasswordHash directly; this keeps hash-and-store atomic.
func (u *User) SetPassword(plain string) error {
	h, err := helpers.HashPassword(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = h
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return helpers.CompareHashAndPassword(u.PasswordHash, plain)
}

// SetPasswordChangeOTP records a fresh OTP challenge, overwriting any
// outstanding code.
func (u *User) SetPasswordChangeOTP(code string, expires time.Time) {
	u.PasswordChangeOTP = &code
	u.PasswordChangeOTPExp = &expires
}

// ClearPasswordChangeOTP clears both fields of the OTP pair.
func (u *User) ClearPasswordChangeOTP() {
	u.PasswordChangeOTP = nil
	u.PasswordChangeOTPExp = nil
}

// FullName joins first and last name for display (email greetings).
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// SanitizedUser is the representation allowed past the trust boundary.
// It never carries the password hash, reset token, or OTP fields.
type SanitizedUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth string     `json:"date_of_birth"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Sanitize strips all secret fields for exposure in API responses.
func (u *User) Sanitize() *SanitizedUser {
	return &SanitizedUser{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: u.DateOfBirth.Format("2006-01-02"),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
