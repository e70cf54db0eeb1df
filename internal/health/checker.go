package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glowbook/salon-backend/internal/observability"
)

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

// ProbeRunner fans readiness checks out concurrently and aggregates the
// results. Results come back in checker registration order.
type ProbeRunner struct {
	checkers    []Checker
	timeout     time.Duration
	gracePeriod time.Duration
	startedAt   time.Time
}

func NewProbeRunner(timeout, gracePeriod time.Duration, checkers ...Checker) *ProbeRunner {
	if timeout <= 0 {
		timeout = time.Second
	}
	kept := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &ProbeRunner{
		checkers:    kept,
		timeout:     timeout,
		gracePeriod: gracePeriod,
		startedAt:   time.Now(),
	}
}

func (r *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	if r == nil {
		return true, nil
	}
	if r.gracePeriod > 0 && time.Since(r.startedAt) < r.gracePeriod {
		return false, []CheckResult{{Name: "startup_grace", Healthy: false, Error: "startup grace period active"}}
	}

	results := make([]CheckResult, len(r.checkers))
	g, groupCtx := errgroup.WithContext(ctx)
	for i, c := range r.checkers {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(groupCtx, r.timeout)
			defer cancel()
			start := time.Now()
			res := c.Check(checkCtx)
			results[i] = res
			outcome := "healthy"
			if !res.Healthy {
				outcome = "unhealthy"
			}
			observability.RecordHealthCheckResult(ctx, res.Name, outcome)
			observability.RecordHealthCheckDuration(ctx, res.Name, time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	allHealthy := true
	for _, res := range results {
		if !res.Healthy {
			allHealthy = false
		}
	}
	return allHealthy, results
}
