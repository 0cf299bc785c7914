package fundraising

import (
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/repository"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/fundraising/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fundraising.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
