package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yudapratama/go-auth-api/internal/application"
	"github.com/yudapratama/go-auth-api/internal/interface/middleware"
	"github.com/yudapratama/go-auth-api/pkg/apperrors"
	"github.com/yudapratama/go-auth-api/pkg/response"
	"github.com/yudapratama/go-auth-api/pkg/validation"
)

type AuthHandler struct {
	Svc        *application.Service
	Logger     *logrus.Logger
	Production bool
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, production bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Production: production}
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	FirstName   string `json:"first_name" binding:"required,personname"`
	LastName    string `json:"last_name" binding:"required,personname"`
	DateOfBirth string `json:"date_of_birth" binding:"required,dob"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,personname"`
	LastName    *string `json:"last_name" binding:"omitempty,personname"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,dob"`
}

type changePasswordRequest struct {
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// fail maps a tagged error onto the failure envelope, logging server-side
// faults with request context.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	ae := apperrors.From(err)
	if ae.Status() >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.WithError(ae.Err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.GetString("real_ip"),
			"user_agent": c.Request.UserAgent(),
			"request_id": c.GetString("request_id"),
			"type":       string(ae.Type),
		}).Error(ae.Message)
	}
	response.Fail(c, ae, !h.Production)
}

func (h *AuthHandler) badPayload(c *gin.Context, err error) {
	response.Fail(c, apperrors.Validation("Validation failed", validation.ToDetails(err)), false)
}

// SignUp POST /api/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	dob := validation.ParseDOB(req.DateOfBirth)
	if dob == nil {
		response.Fail(c, apperrors.Validation("Validation failed", map[string]string{
			"date_of_birth": "must be a valid date of birth in the past (YYYY-MM-DD)",
		}), false)
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: *dob,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res, "User registered successfully")
}

// SignIn POST /api/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	res, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "Login successful")
}

// GetProfile GET /api/profile (auth required)
func (h *AuthHandler) GetProfile(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, apperrors.Authentication("Access token is required"))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": h.Svc.GetProfile(u)}, "")
}

// UpdateProfile PUT /api/profile (auth required)
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, apperrors.Authentication("Access token is required"))
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	in := application.UpdateProfileInput{FirstName: req.FirstName, LastName: req.LastName}
	if req.DateOfBirth != nil {
		dob := validation.ParseDOB(*req.DateOfBirth)
		if dob == nil {
			response.Fail(c, apperrors.Validation("Validation failed", map[string]string{
				"date_of_birth": "must be a valid date of birth in the past (YYYY-MM-DD)",
			}), false)
			return
		}
		in.DateOfBirth = dob
	}
	updated, err := h.Svc.UpdateProfile(c.Request.Context(), u, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": updated}, "Profile updated successfully")
}

// RequestPasswordChangeOTP POST /api/request-password-change-otp (auth required)
func (h *AuthHandler) RequestPasswordChangeOTP(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, apperrors.Authentication("Access token is required"))
		return
	}
	if err := h.Svc.RequestPasswordChangeOTP(c.Request.Context(), u); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, http.StatusOK, "OTP sent to your email for password change")
}

// ChangePasswordWithOTP POST /api/change-password-with-otp (auth required)
func (h *AuthHandler) ChangePasswordWithOTP(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, apperrors.Authentication("Access token is required"))
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if err := h.Svc.ChangePasswordWithOTP(c.Request.Context(), u, req.OTP, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Password changed successfully")
}

// Logout POST /api/logout (auth required). Tokens are stateless, so there is
// no server-side session to invalidate; the client discards its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// Me GET /api/me (optional auth): reports the authenticated state without
// ever rejecting the request.
func (h *AuthHandler) Me(c *gin.Context) {
	if u, ok := middleware.CurrentUser(c); ok {
		response.Success(c, http.StatusOK, gin.H{"authenticated": true, "user": u.Sanitize()}, "")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"authenticated": false}, "")
}
