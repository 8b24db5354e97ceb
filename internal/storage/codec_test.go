package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"oozebots/internal/model"
)

func TestDecodeGenerationDiagnosticsFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("generation_diagnostics_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	diagnostics, err := DecodeGenerationDiagnostics(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("expected 2 generations, got %d", len(diagnostics))
	}
	if diagnostics[1].Children != 95 || diagnostics[1].Invalid != 7 || diagnostics[1].FrontSize != 4 {
		t.Fatalf("unexpected diagnostics: %+v", diagnostics[1])
	}
}

func TestDecodeRunFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("run_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	run, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if run.GenerationSize != 100 || run.Seed != 42 {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestEncodeStampsCurrentVersions(t *testing.T) {
	data, err := EncodeGenerationDiagnostics([]model.GenerationDiagnostics{{Generation: 3, BestFitness: 1.5}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeGenerationDiagnostics(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded[0].Generation != 3 || decoded[0].SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("unexpected decoded diagnostics: %+v", decoded[0])
	}

	runData, err := EncodeRun(model.RunRecord{RunID: "r1"})
	if err != nil {
		t.Fatalf("encode run: %v", err)
	}
	if _, err := DecodeRun(runData); err != nil {
		t.Fatalf("decode run: %v", err)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	_, err := DecodeGenerationDiagnostics([]byte(`[{"schema_version": 2, "codec_version": 1, "generation": 0}]`))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}

	_, err = DecodeRun([]byte(`{"schema_version": 1, "codec_version": 9, "run_id": "r"}`))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}
