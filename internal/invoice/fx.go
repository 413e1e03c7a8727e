package invoice

import (
	"github.com/escolaops/escolar/internal/invoice/repository"
	"github.com/escolaops/escolar/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
