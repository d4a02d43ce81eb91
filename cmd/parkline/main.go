package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/clock"
	"github.com/smallbiznis/parkline/internal/config"
	"github.com/smallbiznis/parkline/internal/logger"
	"github.com/smallbiznis/parkline/internal/migration"
	"github.com/smallbiznis/parkline/internal/server"
	"github.com/smallbiznis/parkline/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// HTTP surface plus the domain modules it wires
		server.Module,

		migration.Module,
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
