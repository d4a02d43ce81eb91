package parking

import (
	"github.com/smallbiznis/parkline/internal/parking/repository"
	"github.com/smallbiznis/parkline/internal/parking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("parking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
