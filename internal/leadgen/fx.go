package leadgen

import (
	"github.com/evoleadai/evolead/internal/leadgen/service"
	"go.uber.org/fx"
)

var Module = fx.Module("leadgen",
	fx.Provide(service.NewService),
)
