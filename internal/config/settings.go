package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the optional secondary config file's shape. Every field has a
// sane zero value the CLI falls back to when no file is found, matching
// pronunciation.yaml's "keys are all optional" contract in spec.md §6.
type Settings struct {
	LatencyMinMs  int    `yaml:"latency_min_ms"`
	LatencyMaxMs  int    `yaml:"latency_max_ms"`
	WeightsPath   string `yaml:"weights_path"`
	HistoryDBPath string `yaml:"history_db_path"`
	LogLevel      string `yaml:"log_level"`
	CaptureDevice string `yaml:"capture_device"`
}

// candidateSettingsPaths mirrors the edmo-pipeline config loader's
// best-effort search: a couple of conventional locations, tried in order.
func candidateSettingsPaths() []string {
	return []string{
		"pronunciation.yaml",
		filepath.Join("config", "pronunciation.yaml"),
	}
}

// LoadSettings searches the candidate paths for pronunciation.yaml and
// decodes the first one found. Finding nothing is not an error: it returns
// the zero-value Settings, and callers fall back to CLI flags and defaults.
func LoadSettings() (Settings, error) {
	for _, path := range candidateSettingsPaths() {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		var s Settings
		if err := yaml.NewDecoder(f).Decode(&s); err != nil {
			return Settings{}, err
		}
		return s, nil
	}
	return Settings{}, nil
}
