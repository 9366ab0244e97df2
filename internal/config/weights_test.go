package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowalyzer/pronunciation/internal/errs"
)

func writeWeightsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alignment_weights.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	return path
}

func TestLoadWeightsValid(t *testing.T) {
	path := writeWeightsFile(t, `{"mfcc":1,"delta":1,"delta_delta":1,"mel":1,"energy":1,"flux":1,"pitch":1}`)
	weights, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}
	if weights.Sum() != 7 {
		t.Errorf("expected sum 7, got %v", weights.Sum())
	}
}

func TestLoadWeightsMissingKey(t *testing.T) {
	path := writeWeightsFile(t, `{"mfcc":1,"delta":1,"delta_delta":1,"mel":1,"energy":1,"flux":1}`)
	_, err := LoadWeights(path)
	if err == nil {
		t.Fatal("expected an error for a missing key")
	}
	if !errs.Is(err, errs.ConfigInvalid) {
		t.Errorf("expected ConfigInvalid, got %v", err)
	}
}

func TestLoadWeightsAllZero(t *testing.T) {
	path := writeWeightsFile(t, `{"mfcc":0,"delta":0,"delta_delta":0,"mel":0,"energy":0,"flux":0,"pitch":0}`)
	_, err := LoadWeights(path)
	if err == nil {
		t.Fatal("expected an error when every weight is zero")
	}
}

func TestLoadWeightsMissingFile(t *testing.T) {
	_, err := LoadWeights(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadSettingsMissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(dir)

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.LogLevel != "" {
		t.Errorf("expected zero-value settings, got %+v", settings)
	}
}
