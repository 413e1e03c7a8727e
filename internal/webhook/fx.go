package webhook

import (
	"github.com/escolaops/escolar/internal/webhook/repository"
	"github.com/escolaops/escolar/internal/webhook/service"
	"go.uber.org/fx"
)

var Module = fx.Module("webhook.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
