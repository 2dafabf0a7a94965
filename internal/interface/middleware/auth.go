package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yudapratama/go-auth-api/internal/domain/entity"
	"github.com/yudapratama/go-auth-api/internal/domain/repository"
	"github.com/yudapratama/go-auth-api/pkg/apperrors"
	"github.com/yudapratama/go-auth-api/pkg/helpers"
	"github.com/yudapratama/go-auth-api/pkg/response"
)

// Context keys set by the guard on success.
const (
	CtxUserKey   = "authUser"
	CtxUserIDKey = "userID"
)

// CurrentUser returns the user attached by the guard, if any.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// resolveUser runs the shared guard pipeline: verify the token, then resolve
// the claimed id to a live, active user. The returned error is one of the
// tagged auth variants.
func resolveUser(c *gin.Context, repo repository.UserRepository, jwt *helpers.JWTManager) (*entity.User, *apperrors.Error) {
	token := bearerToken(c)
	if token == "" {
		return nil, apperrors.Authentication("Access token is required")
	}
	claims, err := jwt.Verify(token)
	if err != nil {
		return nil, apperrors.From(err)
	}
	u, err := repo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if u == nil {
		return nil, apperrors.Authentication("User not found")
	}
	if !u.IsActive {
		return nil, apperrors.Authentication("Account is deactivated")
	}
	return u, nil
}

// Auth is the required-auth guard: it rejects the request unless a valid
// bearer token resolves to an active user, preserving the distinction between
// missing/invalid credentials, malformed tokens, and expired tokens.
func Auth(repo repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, aerr := resolveUser(c, repo, jwt)
		if aerr != nil {
			response.AbortFail(c, aerr)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// OptionalAuth runs the same pipeline but proceeds unauthenticated on any
// failure instead of rejecting.
func OptionalAuth(repo repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, aerr := resolveUser(c, repo, jwt); aerr == nil {
			c.Set(CtxUserKey, u)
			c.Set(CtxUserIDKey, u.ID)
		}
		c.Next()
	}
}
