package gateway

import (
	"github.com/escolaops/escolar/internal/config"
	"github.com/escolaops/escolar/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideClient(cfg config.Config, log *zap.Logger, metrics *observability.Metrics) Client {
	if cfg.Gateway.UseMock {
		return NewMockClient(log)
	}
	return NewHTTPClient(cfg, log, metrics)
}

// Module wires the payment gateway client.
var Module = fx.Module("gateway",
	fx.Provide(provideClient),
)
