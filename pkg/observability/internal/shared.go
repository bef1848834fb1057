package internal

import (
	"context"
	"strings"

	appconfig "github.com/Sokol111/ecommerce-catalog-sync/pkg/core/config"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ExcludedPaths are never traced or measured.
var ExcludedPaths = []string{"/health", "/metrics"}

// NewResource describes the running service to the collector.
func NewResource(ctx context.Context, appCfg appconfig.AppConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(appCfg.ServiceName),
			semconv.ServiceVersionKey.String(appCfg.ServiceVersion),
			semconv.DeploymentEnvironmentNameKey.String(appCfg.Environment),
		),
	)
}

// FilterPaths reports whether the request should be instrumented.
func FilterPaths(c *gin.Context) bool {
	return Instrumented(routeOf(c))
}

func Instrumented(path string) bool {
	for _, excluded := range ExcludedPaths {
		if strings.HasPrefix(path, excluded) {
			return false
		}
	}
	return true
}

func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
