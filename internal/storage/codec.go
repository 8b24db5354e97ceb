package storage

import (
	"encoding/json"
	"errors"

	"oozebots/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// EncodeRun stamps the current versions onto run before encoding it.
func EncodeRun(run model.RunRecord) ([]byte, error) {
	run.VersionedRecord = currentVersion()
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

// EncodeGenerationDiagnostics stamps the current versions onto every record.
func EncodeGenerationDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(stampDiagnostics(diagnostics))
}

func DecodeGenerationDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	for _, d := range diagnostics {
		if err := checkVersion(d.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return diagnostics, nil
}

func stampDiagnostics(diagnostics []model.GenerationDiagnostics) []model.GenerationDiagnostics {
	stamped := make([]model.GenerationDiagnostics, len(diagnostics))
	for i, d := range diagnostics {
		d.VersionedRecord = currentVersion()
		stamped[i] = d
	}
	return stamped
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
