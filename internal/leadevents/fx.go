package leadevents

import "go.uber.org/fx"

var Module = fx.Module("leadevents",
	fx.Provide(NewHub),
)
