package oozebots

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"oozebots/internal/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.Evolution.GenerationSize = 6
	cfg.Evolution.EliteCount = 2
	cfg.Evolution.Generations = 1
	cfg.Evolution.Workers = 2
	cfg.Evolution.SimDuration = 0.01
	cfg.Metrics.Enabled = false

	client, err := New(Options{Config: cfg, StoreKind: "memory", Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientRunRecordsDiagnostics(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{Generations: 2, Seed: 42})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.Seed != 42 {
		t.Fatalf("unexpected seed: %d", summary.Seed)
	}
	if len(summary.BestByGeneration) != 3 {
		t.Fatalf("expected 3 generation bests, got %d", len(summary.BestByGeneration))
	}
	for _, best := range summary.BestByGeneration {
		if best > summary.FinalBestFitness {
			t.Fatalf("final best %f below generation best %f", summary.FinalBestFitness, best)
		}
	}

	diagnostics, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(diagnostics))
	}
	if diagnostics[0].Children != 6 || diagnostics[1].Children != 4 {
		t.Fatalf("unexpected children counts: %+v", diagnostics)
	}

	limited, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: summary.RunID, Limit: 1})
	if err != nil {
		t.Fatalf("limited diagnostics: %v", err)
	}
	if len(limited) != 1 || limited[0].Generation != 0 {
		t.Fatalf("unexpected limited diagnostics: %+v", limited)
	}
}

func TestClientRunsAndLatestDiagnostics(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, seed := range []int64{1, 2} {
		if _, err := client.Run(ctx, RunRequest{Seed: seed}); err != nil {
			t.Fatalf("run seed %d: %v", seed, err)
		}
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].CreatedAtUTC < runs[1].CreatedAtUTC {
		t.Fatalf("runs not newest first: %+v", runs)
	}
	if runs[0].GenerationSize != 6 || runs[0].Generations != 1 {
		t.Fatalf("unexpected run item: %+v", runs[0])
	}

	limited, err := client.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		t.Fatalf("limited runs: %v", err)
	}
	if len(limited) != 1 || limited[0].RunID != runs[0].RunID {
		t.Fatalf("unexpected limited runs: %+v", limited)
	}

	latest, err := client.Diagnostics(ctx, DiagnosticsRequest{Latest: true})
	if err != nil {
		t.Fatalf("latest diagnostics: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 diagnostics for latest run, got %d", len(latest))
	}
}

func TestClientDiagnosticsValidation(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{}); err == nil {
		t.Fatal("expected missing run id error")
	}
	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "x", Latest: true}); err == nil {
		t.Fatal("expected run id and latest conflict")
	}
	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "x", Limit: -1}); err == nil {
		t.Fatal("expected negative limit error")
	}
	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{Latest: true}); err == nil {
		t.Fatal("expected no runs error")
	}
	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestClientRunRejectsNegativeOverrides(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Run(context.Background(), RunRequest{Workers: -1}); err == nil {
		t.Fatal("expected negative workers error")
	}
}

func TestClientRunCancelled(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Run(ctx, RunRequest{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestNewLoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oozebots.yaml")
	data := []byte("evolution:\n  generation_size: 12\nstorage:\n  kind: memory\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	client, err := New(Options{ConfigPath: path, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() { _ = client.Close() }()
	if client.cfg.Evolution.GenerationSize != 12 {
		t.Fatalf("expected generation size 12, got %d", client.cfg.Evolution.GenerationSize)
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	if _, err := New(Options{StoreKind: "postgres", Logger: zap.NewNop()}); err == nil {
		t.Fatal("expected unsupported store error")
	}
	bad := config.Default()
	bad.Simulation.TimeStep = 0
	if _, err := New(Options{Config: bad, Logger: zap.NewNop()}); err == nil {
		t.Fatal("expected invalid config error")
	}
}
