//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/btree/internal/app"
	"github.com/zeusync/btree/internal/config"
)

func InitializeRuntime(cfg *config.Config) (*app.Runtime, func(), error) {
	wire.Build(app.ProviderSet)
	return nil, nil, nil
}
