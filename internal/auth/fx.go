package auth

import (
	"github.com/evoleadai/evolead/internal/auth/idp"
	"github.com/evoleadai/evolead/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(idp.NewClient),
	fx.Provide(service.NewService),
)
