package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockChecker struct {
	result CheckResult
	delay  time.Duration
}

func (m mockChecker) Check(context.Context) CheckResult {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.result
}

func TestProbeRunnerReady(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond, 0,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
		mockChecker{result: CheckResult{Name: "redis", Healthy: true}},
	)
	ready, results := runner.Ready(context.Background())
	if !ready {
		t.Fatal("expected ready")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "db" || results[1].Name != "redis" {
		t.Fatalf("results out of registration order: %+v", results)
	}
}

func TestProbeRunnerUnready(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond, 0,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
		mockChecker{result: CheckResult{Name: "redis", Healthy: false, Error: errors.New("down").Error()}},
	)
	ready, results := runner.Ready(context.Background())
	if ready {
		t.Fatal("expected unready")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestProbeRunnerStartupGrace(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond, 2*time.Second,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
	)
	ready, results := runner.Ready(context.Background())
	if ready {
		t.Fatal("expected unready during grace period")
	}
	if len(results) != 1 || results[0].Name != "startup_grace" {
		t.Fatalf("unexpected grace results: %+v", results)
	}
}

func TestProbeRunnerRunsChecksConcurrently(t *testing.T) {
	runner := NewProbeRunner(time.Second, 0,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}, delay: 100 * time.Millisecond},
		mockChecker{result: CheckResult{Name: "redis", Healthy: true}, delay: 100 * time.Millisecond},
		mockChecker{result: CheckResult{Name: "storage", Healthy: true}, delay: 100 * time.Millisecond},
	)
	start := time.Now()
	ready, _ := runner.Ready(context.Background())
	if !ready {
		t.Fatal("expected ready")
	}
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Fatalf("checks appear sequential, took %v", elapsed)
	}
}

func TestProbeRunnerSkipsNilCheckers(t *testing.T) {
	runner := NewProbeRunner(time.Second, 0,
		nil,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
	)
	ready, results := runner.Ready(context.Background())
	if !ready || len(results) != 1 {
		t.Fatalf("expected 1 healthy result, got ready=%v results=%+v", ready, results)
	}
}
