package reconciliation

import (
	"github.com/escolaops/escolar/internal/reconciliation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconciliation.service",
	fx.Provide(service.NewResolver),
	fx.Provide(service.New),
)
