package migration

import (
	"github.com/escolaops/escolar/internal/config"
	invoicedomain "github.com/escolaops/escolar/internal/invoice/domain"
	ledgerdomain "github.com/escolaops/escolar/internal/ledger/domain"
	studentdomain "github.com/escolaops/escolar/internal/student/domain"
	teacherdomain "github.com/escolaops/escolar/internal/teacher/domain"
	webhookdomain "github.com/escolaops/escolar/internal/webhook/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite is only used for local development; AutoMigrate is
			// enough there and keeps the SQL files postgres-only.
			return conn.AutoMigrate(
				&ledgerdomain.Entry{},
				&invoicedomain.Invoice{},
				&webhookdomain.Event{},
				&studentdomain.Student{},
				&teacherdomain.Teacher{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
