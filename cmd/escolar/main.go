package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/escolaops/escolar/internal/clock"
	"github.com/escolaops/escolar/internal/config"
	"github.com/escolaops/escolar/internal/gateway"
	"github.com/escolaops/escolar/internal/invoice"
	"github.com/escolaops/escolar/internal/ledger"
	"github.com/escolaops/escolar/internal/migration"
	"github.com/escolaops/escolar/internal/observability"
	"github.com/escolaops/escolar/internal/reconciliation"
	"github.com/escolaops/escolar/internal/server"
	"github.com/escolaops/escolar/internal/student"
	"github.com/escolaops/escolar/internal/teacher"
	"github.com/escolaops/escolar/internal/webhook"
	"github.com/escolaops/escolar/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		gateway.Module,
		student.Module,
		teacher.Module,
		ledger.Module,
		invoice.Module,
		webhook.Module,
		reconciliation.Module,

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
