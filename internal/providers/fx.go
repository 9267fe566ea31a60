package providers

import (
	"github.com/evoleadai/evolead/internal/providers/gemini"
	"github.com/evoleadai/evolead/internal/providers/serpapi"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(serpapi.NewClient),
	fx.Provide(gemini.NewClient),
)
