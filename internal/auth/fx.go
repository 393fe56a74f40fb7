package auth

import (
	"go.uber.org/fx"

	"github.com/inqira/inqira/internal/auth/repository"
	"github.com/inqira/inqira/internal/auth/service"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
