// Package modules bundles the infrastructure fx modules a service binary
// composes. Each bundle accepts the static-config options of the modules it
// wraps so tests can run without YAML.
package modules

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core"
	"go.uber.org/fx"
)

func NewCoreModule(opts ...core.Option) fx.Option {
	return core.NewCoreModule(opts...)
}
