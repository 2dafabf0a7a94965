package router

import (
	"github.com/yudapratama/go-auth-api/internal/application"
	"github.com/yudapratama/go-auth-api/internal/container"
	"github.com/yudapratama/go-auth-api/internal/domain/repository"
	pginfra "github.com/yudapratama/go-auth-api/internal/infrastructure/postgres"
	"github.com/yudapratama/go-auth-api/internal/infrastructure/rediscache"
	handlers "github.com/yudapratama/go-auth-api/internal/interface/http"
	"github.com/yudapratama/go-auth-api/internal/router/modules"
)

type AuthModuleDeps struct {
	Repo    repository.UserRepository
	Service *application.Service
	Handler *handlers.AuthHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()

	var repo repository.UserRepository = pginfra.NewUserRepository(container.GetPGPool())
	if rdb := container.GetRedis(); rdb != nil {
		repo = rediscache.NewUserCache(repo, rdb, 0, container.GetLogger())
	}

	otp := application.NewOTPManager(repo, cfg.OTPTTL)

	// Assign through locals so a nil concrete client stays a nil interface.
	var mail application.Mailer
	if mg := container.GetMailgun(); mg != nil {
		mail = mg
	}
	var pub application.Publisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	service := application.NewService(
		repo,
		container.GetJWT(),
		otp,
		mail,
		pub,
		container.GetLogger(),
		cfg.AppName,
		cfg.MailSendEnabled,
	)

	handler := handlers.NewAuthHandler(service, container.GetLogger(), cfg.IsProduction())

	return AuthModuleDeps{Repo: repo, Service: service, Handler: handler}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildAuthDeps()
	r.Add(modules.NewAuthModule(deps.Handler, deps.Repo, container.GetJWT()))
}
