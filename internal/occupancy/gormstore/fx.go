package gormstore

import (
	"github.com/smallbiznis/parkline/internal/occupancy"
	"go.uber.org/fx"
)

var Module = fx.Module("occupancy.store",
	fx.Provide(New),
	fx.Provide(func(s *Store) occupancy.Store { return s }),
)
