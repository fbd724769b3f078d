package relation

import (
	"github.com/smallbiznis/storefront/internal/relation/repository"
	"github.com/smallbiznis/storefront/internal/relation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("relation.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
