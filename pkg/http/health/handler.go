package health

import (
	"net/http"

	coreHealth "github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"github.com/gin-gonic/gin"
)

type healthHandler struct {
	readiness      coreHealth.ReadinessChecker
	trafficControl coreHealth.TrafficController
}

func newHealthHandler(r coreHealth.ReadinessChecker, t coreHealth.TrafficController) *healthHandler {
	return &healthHandler{readiness: r, trafficControl: t}
}

// IsReady answers the readiness probe. The first successful answer opens the
// traffic gate. ?format=json or Accept: application/json returns the
// per-component status.
func (h *healthHandler) IsReady(c *gin.Context) {
	ready := h.readiness.IsReady()
	if ready {
		h.trafficControl.MarkTrafficReady()
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	if c.Query("format") == "json" || c.GetHeader("Accept") == "application/json" {
		c.JSON(status, h.readiness.GetStatus())
		return
	}
	if ready {
		c.String(status, "ready")
	} else {
		c.String(status, "not ready")
	}
}

func (h *healthHandler) IsLive(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}
