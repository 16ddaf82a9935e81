package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/weightstats/internal/weight"

	"gopkg.in/yaml.v3"
)

// Codec serializes the whole observation sequence into a single blob.
type Codec interface {
	Name() string
	Encode(entries []weight.Observation) ([]byte, error)
	Decode(data []byte) ([]weight.Observation, error)
}

// record is the persisted layout: [{"date": "<ISO-8601>", "weight": 93.4}, ...]
type record struct {
	Date   string  `json:"date" yaml:"date"`
	Weight float64 `json:"weight" yaml:"weight"`
}

func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(entries []weight.Observation) ([]byte, error) {
	return json.Marshal(toRecords(entries))
}

func (JSONCodec) Decode(data []byte) ([]weight.Observation, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []weight.Observation{}, nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal json entries: %w", err)
	}
	return fromRecords(records)
}

type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Encode(entries []weight.Observation) ([]byte, error) {
	return yaml.Marshal(toRecords(entries))
}

func (YAMLCodec) Decode(data []byte) ([]weight.Observation, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal yaml entries: %w", err)
	}
	return fromRecords(records)
}

func toRecords(entries []weight.Observation) []record {
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = record{
			Date:   e.Date.UTC().Format(time.RFC3339Nano),
			Weight: e.Weight,
		}
	}
	return records
}

func fromRecords(records []record) ([]weight.Observation, error) {
	entries := make([]weight.Observation, len(records))
	for i, r := range records {
		date, err := time.Parse(time.RFC3339Nano, r.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: parse date %q: %w", i, r.Date, err)
		}
		entries[i] = weight.Observation{
			Date:   date,
			Weight: r.Weight,
		}
	}
	return entries, nil
}
