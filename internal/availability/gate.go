// Package availability wraps the external inventory check with fail-closed
// semantics: a false, an error, and a timeout all mean "unavailable".
package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vittoria-dev/menu-engine/pkg/logger"
	"github.com/vittoria-dev/menu-engine/pkg/metrics"
)

// Checker is the raw inventory contract.
type Checker interface {
	CheckAvailability(ctx context.Context, productID uuid.UUID) (bool, error)
}

// Gate is what the commit path consumes. Check never returns an error:
// any failure collapses to available=false.
type Gate interface {
	Check(ctx context.Context, productID uuid.UUID) bool
}

// FailClosedGate adapts a Checker into a Gate, enforcing a per-call
// timeout and recording check latency.
type FailClosedGate struct {
	checker Checker
	timeout time.Duration
	log     *logger.Logger
	metrics *metrics.EngineMetrics
}

// NewFailClosedGate builds the gate. A zero timeout disables the
// per-call deadline.
func NewFailClosedGate(checker Checker, timeout time.Duration, log *logger.Logger, m *metrics.EngineMetrics) *FailClosedGate {
	return &FailClosedGate{checker: checker, timeout: timeout, log: log, metrics: m}
}

// Check implements Gate.
func (g *FailClosedGate) Check(ctx context.Context, productID uuid.UUID) bool {
	if g.checker == nil {
		return false
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	available, err := g.checker.CheckAvailability(ctx, productID)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		g.metrics.ObserveAvailability("error", elapsed)
		if g.log != nil {
			g.log.Warn(g.log.WithProductID(ctx, productID.String()), "availability check failed, treating product as unavailable")
		}
		return false
	case !available:
		g.metrics.ObserveAvailability("unavailable", elapsed)
		return false
	default:
		g.metrics.ObserveAvailability("available", elapsed)
		return true
	}
}
