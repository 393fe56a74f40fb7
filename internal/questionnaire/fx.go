package questionnaire

import (
	"github.com/inqira/inqira/internal/questionnaire/repository"
	"github.com/inqira/inqira/internal/questionnaire/service"
	"go.uber.org/fx"
)

var Module = fx.Module("questionnaire.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
