package config

import "go.uber.org/fx"

// Module wires application and tariff configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewTariffConfigHolder,
	),
)
