package searchcache

import (
	"github.com/evoleadai/evolead/internal/searchcache/repository"
	"github.com/evoleadai/evolead/internal/searchcache/service"
	"go.uber.org/fx"
)

var Module = fx.Module("searchcache",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
