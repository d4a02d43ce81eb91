package occupancy

import "go.uber.org/fx"

// Module wires the engine; a store binding must be provided alongside
// (see gormstore.Module).
var Module = fx.Module("occupancy.engine",
	fx.Provide(NewEngine),
)
