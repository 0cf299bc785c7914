package meeting

import (
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/repository"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meeting.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
