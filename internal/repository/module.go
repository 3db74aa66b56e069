package repository

import (
	"go.uber.org/fx"
)

var (
	Module = fx.Provide(
		NewUserRepository,
		NewTripRepository,
		NewCityRepository,
		NewTripCityRepository,
	)
)
