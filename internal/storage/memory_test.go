package storage

import (
	"context"
	"errors"
	"testing"

	"oozebots/internal/model"
)

func TestMemoryStoreDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.GenerationDiagnostics{
		{Generation: 0, BestFitness: 0.2, FrontSize: 2},
		{Generation: 1, BestFitness: 0.4, FrontSize: 3, Children: 95},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", input); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	input[0].BestFitness = 99

	output, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted diagnostics")
	}
	if len(output) != 2 || output[0].BestFitness != 0.2 || output[1].Children != 95 {
		t.Fatalf("unexpected diagnostics: %+v", output)
	}
	if output[0].SchemaVersion != CurrentSchemaVersion || output[0].CodecVersion != CurrentCodecVersion {
		t.Fatalf("expected stamped versions, got %+v", output[0].VersionedRecord)
	}

	_, ok, err = store.GetGenerationDiagnostics(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("expected missing run, got ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreRunsListedByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, run := range []model.RunRecord{
		{RunID: "b", CreatedAtUTC: "2026-01-02T00:00:00Z"},
		{RunID: "a", CreatedAtUTC: "2026-01-03T00:00:00Z"},
		{RunID: "c", CreatedAtUTC: "2026-01-01T00:00:00Z"},
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.RunID, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].RunID != "c" || runs[1].RunID != "b" || runs[2].RunID != "a" {
		t.Fatalf("unexpected run order: %+v", runs)
	}

	run, ok, err := store.GetRun(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%t err=%v", ok, err)
	}
	if run.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected stamped versions, got %+v", run.VersionedRecord)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveRun(ctx, model.RunRecord{RunID: "r"}); !errors.Is(err, ErrStoreNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
	if _, _, err := store.GetGenerationDiagnostics(ctx, "r"); !errors.Is(err, ErrStoreNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}
