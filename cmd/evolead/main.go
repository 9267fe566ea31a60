package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/config"
	"github.com/evoleadai/evolead/internal/observability"
	"github.com/evoleadai/evolead/internal/server"
	"github.com/evoleadai/evolead/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
