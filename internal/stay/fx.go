package stay

import (
	"github.com/smallbiznis/parkline/internal/stay/repository"
	"github.com/smallbiznis/parkline/internal/stay/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stay.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
