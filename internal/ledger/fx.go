package ledger

import (
	"github.com/escolaops/escolar/internal/ledger/repository"
	"github.com/escolaops/escolar/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
