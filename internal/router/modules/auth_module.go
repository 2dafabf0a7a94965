package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/yudapratama/go-auth-api/internal/domain/repository"
	handlers "github.com/yudapratama/go-auth-api/internal/interface/http"
	"github.com/yudapratama/go-auth-api/internal/interface/middleware"
	"github.com/yudapratama/go-auth-api/pkg/helpers"
)

// AuthModule wires the authentication handlers and the access guard into routes.
// Public: POST /api/signup, POST /api/signin
// Protected: GET/PUT /api/profile, POST /api/request-password-change-otp,
// POST /api/change-password-with-otp, POST /api/logout
// Optional auth: GET /api/me

type AuthModule struct {
	Handler *handlers.AuthHandler
	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, repo repository.UserRepository, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Repo: repo, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", m.Handler.SignUp)
	rg.POST("/signin", m.Handler.SignIn)

	rg.GET("/me", middleware.OptionalAuth(m.Repo, m.JWT), m.Handler.Me)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Repo, m.JWT))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/request-password-change-otp", m.Handler.RequestPasswordChangeOTP)
		auth.POST("/change-password-with-otp", m.Handler.ChangePasswordWithOTP)
		auth.POST("/logout", m.Handler.Logout)
	}
}
