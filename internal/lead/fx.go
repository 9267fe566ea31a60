package lead

import (
	"github.com/evoleadai/evolead/internal/lead/repository"
	"github.com/evoleadai/evolead/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
