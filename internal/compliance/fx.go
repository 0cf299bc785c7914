package compliance

import (
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/repository"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/compliance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("compliance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
