package teacher

import (
	"github.com/escolaops/escolar/internal/teacher/repository"
	"github.com/escolaops/escolar/internal/teacher/service"
	"go.uber.org/fx"
)

var Module = fx.Module("teacher.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
