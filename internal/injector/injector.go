//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/strata-ecs/strata/internal/core/observability/log"
	"github.com/strata-ecs/strata/internal/core/world"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelDebug)
}

func ProvideWorld() *world.World {
	wire.Build(world.Default)
	return nil
}
