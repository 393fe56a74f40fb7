package project

import (
	"github.com/inqira/inqira/internal/project/repository"
	"github.com/inqira/inqira/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
