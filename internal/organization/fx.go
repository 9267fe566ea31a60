package organization

import (
	"github.com/evoleadai/evolead/internal/organization/repository"
	"github.com/evoleadai/evolead/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
