// Package controllers implements the HTTP handlers of the staff API.
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/vittoria-dev/menu-engine/api/responses"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

// Pinger is one dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves the liveness and readiness probes.
type HealthController struct {
	log  *logger.Logger
	deps map[string]Pinger
}

// NewHealthController registers the named dependencies to probe.
func NewHealthController(log *logger.Logger, deps map[string]Pinger) *HealthController {
	return &HealthController{log: log, deps: deps}
}

// Live reports process liveness.
func (c *HealthController) Live(w http.ResponseWriter, _ *http.Request) {
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings every dependency with a short deadline and reports each
// verdict. Any failure turns the probe red.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(c.deps))
	for name, dep := range c.deps {
		if dep == nil {
			checks[name] = "skipped"
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			if c.log != nil {
				c.log.Warn(c.log.WithField(ctx, "dependency", name), "readiness check failed")
			}
			continue
		}
		checks[name] = "ok"
	}
	responses.WriteSuccess(w, status, map[string]any{"checks": checks})
}
