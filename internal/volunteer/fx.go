package volunteer

import (
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/repository"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/volunteer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("volunteer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
