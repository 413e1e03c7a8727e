package student

import (
	"github.com/escolaops/escolar/internal/student/repository"
	"github.com/escolaops/escolar/internal/student/service"
	"go.uber.org/fx"
)

var Module = fx.Module("student.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
