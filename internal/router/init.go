package router

import (
	userapp "github.com/lukian/user-api/internal/application"
	"github.com/lukian/user-api/internal/container"
	"github.com/lukian/user-api/internal/infrastructure/postgres"
	handlers "github.com/lukian/user-api/internal/interface/http"
	"github.com/lukian/user-api/internal/router/modules"
)

func buildUserHandler() *handlers.UserHandler {
	cfg := container.GetConfig()
	repo := postgres.NewUserRepository(container.GetPGPool())

	service := userapp.NewService(
		repo,
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetRabbitPub(),
		cfg.MinRegistrationAge,
		cfg.UserCacheTTL,
	)

	return handlers.NewUserHandler(service, container.GetLogger())
}

// InitModules wires all feature modules into the router registry. Called
// once during startup.
func InitModules(r *Registry) {
	r.Add(modules.NewUserModule(buildUserHandler()))
	r.Add(modules.NewOpsModule())
}
