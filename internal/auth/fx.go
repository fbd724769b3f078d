package auth

import (
	"github.com/smallbiznis/storefront/internal/auth/repository"
	"github.com/smallbiznis/storefront/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
