package search

import (
	"github.com/evoleadai/evolead/internal/search/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("search",
	fx.Provide(repository.NewRepository),
)
