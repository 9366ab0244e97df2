// Package config loads the two configuration surfaces spec.md's external
// interfaces define: the required, strict alignment_weights.json and the
// optional pronunciation.yaml. The strict JSON loader is new (no pack repo
// hand-validates required keys this way); the optional YAML loader is
// grounded on the edmo-pipeline's config.Load: best-effort candidate-path
// search, yaml.v3 struct-tag decoding, and a non-fatal miss.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/types"
)

var requiredWeightKeys = []string{"mfcc", "delta", "delta_delta", "mel", "energy", "flux", "pitch"}

// LoadWeights reads and validates an alignment_weights.json file. Every key
// listed in the schema is required — a missing key is a ConfigInvalid error,
// not a silent zero.
func LoadWeights(path string) (types.AlignmentWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.AlignmentWeights{}, errs.New(errs.ConfigInvalid, "config.LoadWeights", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.AlignmentWeights{}, errs.New(errs.ConfigInvalid, "config.LoadWeights", fmt.Errorf("parsing %s: %w", path, err))
	}

	for _, key := range requiredWeightKeys {
		if _, ok := raw[key]; !ok {
			return types.AlignmentWeights{}, errs.New(errs.ConfigInvalid, "config.LoadWeights", fmt.Errorf("%s: missing required key %q", path, key))
		}
	}

	weights := types.AlignmentWeights{
		MFCC:       float32(raw["mfcc"]),
		Delta:      float32(raw["delta"]),
		DeltaDelta: float32(raw["delta_delta"]),
		Mel:        float32(raw["mel"]),
		Energy:     float32(raw["energy"]),
		Flux:       float32(raw["flux"]),
		Pitch:      float32(raw["pitch"]),
	}
	if err := weights.Validate(); err != nil {
		return types.AlignmentWeights{}, errs.New(errs.ConfigInvalid, "config.LoadWeights", fmt.Errorf("%s: %w", path, err))
	}
	return weights, nil
}

// DefaultWeights are used when the CLI is not given an explicit --weights
// flag: an even split across all seven streams.
func DefaultWeights() types.AlignmentWeights {
	return types.AlignmentWeights{
		MFCC: 1, Delta: 1, DeltaDelta: 1, Mel: 1, Energy: 1, Flux: 1, Pitch: 1,
	}
}
