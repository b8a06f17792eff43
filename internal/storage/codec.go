package storage

import (
	"encoding/json"
	"errors"

	"gpsymreg/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run model.RunRecord) ([]byte, error) {
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

func EncodeBest(best model.BestRecord) ([]byte, error) {
	return json.Marshal(best)
}

func DecodeBest(data []byte) (model.BestRecord, error) {
	var best model.BestRecord
	if err := json.Unmarshal(data, &best); err != nil {
		return model.BestRecord{}, err
	}
	if err := checkVersion(best.VersionedRecord); err != nil {
		return model.BestRecord{}, err
	}
	return best, nil
}

func EncodeGenerationRecords(records []model.GenerationRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeGenerationRecords(data []byte) ([]model.GenerationRecord, error) {
	var records []model.GenerationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func EncodeLineage(records []model.LineageRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeLineage(data []byte) ([]model.LineageRecord, error) {
	var records []model.LineageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
