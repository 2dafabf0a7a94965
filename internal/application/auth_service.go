package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yudapratama/go-auth-api/internal/domain/entity"
	"github.com/yudapratama/go-auth-api/internal/domain/repository"
	"github.com/yudapratama/go-auth-api/pkg/apperrors"
	"github.com/yudapratama/go-auth-api/pkg/helpers"
	"github.com/yudapratama/go-auth-api/pkg/mailer"
	tpl "github.com/yudapratama/go-auth-api/pkg/mailer/templates"
)

// Mailer delivers a single email synchronously. Satisfied by *mailer.Mailgun.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Publisher enqueues fire-and-forget messages. Satisfied by *helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Service orchestrates the credential store, token issuer, OTP manager, and the
// email channel into the sign-up, sign-in, profile, and password-change flows.
type Service struct {
	Repo        repository.UserRepository
	JWT         *helpers.JWTManager
	OTP         *OTPManager
	Mail        Mailer
	Pub         Publisher
	Logger      *logrus.Logger
	AppName     string
	MailEnabled bool
}

func NewService(repo repository.UserRepository, jwt *helpers.JWTManager, otp *OTPManager, mail Mailer, pub Publisher, logger *logrus.Logger, appName string, mailEnabled bool) *Service {
	return &Service{
		Repo:        repo,
		JWT:         jwt,
		OTP:         otp,
		Mail:        mail,
		Pub:         pub,
		Logger:      logger,
		AppName:     appName,
		MailEnabled: mailEnabled,
	}
}

// AuthResult is the payload returned by Register and Authenticate.
type AuthResult struct {
	User  *entity.SanitizedUser `json:"user"`
	Token string                `json:"token"`
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}

// Register creates a user, issues a token, and stamps the first login.
// A taken email fails with DuplicateError whether it is caught by the
// pre-check or by the unique index when two sign-ups race.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Duplicate("User with this email already exists")
	}

	u := &entity.User{
		Email:       strings.ToLower(in.Email),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		IsActive:    true,
	}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, apperrors.Server(err)
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, _, err := s.JWT.Issue(u.ID, u.Email, u.FirstName, u.LastName)
	if err != nil {
		return nil, apperrors.Server(err)
	}
	s.stampLastLogin(ctx, u)
	s.enqueueEmail(ctx, u.Email, tpl.Welcome, map[string]any{
		"Name":    u.FullName(),
		"Email":   u.Email,
		"AppName": s.AppName,
	})

	return &AuthResult{User: u.Sanitize(), Token: token}, nil
}

// Authenticate verifies email/password and issues a token. Unknown email, a
// deactivated account, and a wrong password all yield the identical error so
// responses cannot be used to enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive || !u.CheckPassword(password) {
		return nil, apperrors.Authentication("Invalid email or password")
	}

	token, _, err := s.JWT.Issue(u.ID, u.Email, u.FirstName, u.LastName)
	if err != nil {
		return nil, apperrors.Server(err)
	}
	s.stampLastLogin(ctx, u)
	return &AuthResult{User: u.Sanitize(), Token: token}, nil
}

// GetProfile returns the sanitized record of an already-resolved user.
func (s *Service) GetProfile(u *entity.User) *entity.SanitizedUser {
	return u.Sanitize()
}

// UpdateProfileInput carries a sparse update: nil fields are left untouched.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *time.Time
}

// UpdateProfile applies only the fields present in the input and persists.
func (s *Service) UpdateProfile(ctx context.Context, u *entity.User, in UpdateProfileInput) (*entity.SanitizedUser, error) {
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.DateOfBirth != nil {
		if !in.DateOfBirth.Before(time.Now()) {
			return nil, apperrors.Validation("Validation failed", map[string]string{
				"date_of_birth": "must be a valid date of birth in the past (YYYY-MM-DD)",
			})
		}
		u.DateOfBirth = *in.DateOfBirth
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u.Sanitize(), nil
}

// RequestPasswordChangeOTP stores a fresh OTP for the user and emails it.
// If dispatch fails the stored code is left outstanding; its 10-minute expiry
// bounds it and a re-request overwrites it. With mail sending disabled the
// request is refused outright and no code is stored.
func (s *Service) RequestPasswordChangeOTP(ctx context.Context, u *entity.User) error {
	if !s.MailEnabled {
		if s.Logger != nil {
			s.Logger.WithField("user_id", u.ID).Warn("mail sending disabled; refusing otp request")
		}
		return apperrors.Email("Email delivery is disabled")
	}
	code, err := s.OTP.Issue(ctx, u)
	if err != nil {
		return err
	}
	subject, html, err := tpl.Render(tpl.OTP, map[string]any{
		"Name":    u.FullName(),
		"Code":    code,
		"AppName": s.AppName,
	})
	if err != nil {
		return apperrors.Server(err)
	}
	if err := s.Mail.Send(ctx, u.Email, subject, "", html); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("otp email dispatch failed")
		}
		return apperrors.Email("Failed to send OTP email. Please try again.")
	}
	return nil
}

// ChangePasswordWithOTP validates the submitted code and, in a single update,
// replaces the password hash and clears the OTP pair. Any validation failure
// leaves the record untouched.
func (s *Service) ChangePasswordWithOTP(ctx context.Context, u *entity.User, otp, newPassword string) error {
	if err := s.OTP.Validate(u, otp); err != nil {
		return err
	}
	if err := u.SetPassword(newPassword); err != nil {
		return apperrors.Server(err)
	}
	u.ClearPasswordChangeOTP()
	if err := s.Repo.Update(ctx, u); err != nil {
		return err
	}
	s.enqueueEmail(ctx, u.Email, tpl.PasswordChanged, map[string]any{
		"Name":    u.FullName(),
		"AppName": s.AppName,
	})
	return nil
}

func (s *Service) stampLastLogin(ctx context.Context, u *entity.User) {
	now := time.Now()
	u.LastLoginAt = &now
	if err := s.Repo.Update(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("last login stamp failed")
	}
}

// enqueueEmail publishes a courtesy notification; failures never surface to
// the request that triggered them.
func (s *Service) enqueueEmail(ctx context.Context, to, template string, data map[string]any) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("email job publish failed")
	}
}
