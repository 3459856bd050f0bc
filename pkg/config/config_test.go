package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StabilityDwell != DefaultStabilityDwell {
		t.Errorf("StabilityDwell = %s, want default %s", cfg.StabilityDwell, DefaultStabilityDwell)
	}
	if cfg.ScoreTolerance != DefaultScoreTolerance {
		t.Errorf("ScoreTolerance = %d, want default %d", cfg.ScoreTolerance, DefaultScoreTolerance)
	}
	if !cfg.RequirePing {
		t.Error("RequirePing = false, want true by default")
	}
}

func TestLoad_ParsesKnownOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adsc.conf")
	writeFile(t, path, `
config adsc 'main'
	option stability_dwell_ms '5000'
	option score_tolerance '-1'
	option require_ping '0'
	option max_validation_retries '5'
	option allow_roaming_switch '1'
	option feature_score_based_enabled '0'
	option unknown_future_option 'whatever'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StabilityDwell != 5*time.Second {
		t.Errorf("StabilityDwell = %s, want 5s", cfg.StabilityDwell)
	}
	if cfg.ScoreTolerance != -1 {
		t.Errorf("ScoreTolerance = %d, want -1", cfg.ScoreTolerance)
	}
	if cfg.RequirePing {
		t.Error("RequirePing = true, want false")
	}
	if cfg.MaxValidationRetries != 5 {
		t.Errorf("MaxValidationRetries = %d, want 5", cfg.MaxValidationRetries)
	}
	if !cfg.AllowRoamingSwitch {
		t.Error("AllowRoamingSwitch = false, want true")
	}
	if cfg.FeatureScoreBasedEnabled {
		t.Error("FeatureScoreBasedEnabled = true, want false")
	}
}

func TestLoad_IgnoresOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adsc.conf")
	writeFile(t, path, `
config other_service 'main'
	option stability_dwell_ms '99999'

config adsc 'main'
	option score_tolerance '7'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StabilityDwell != DefaultStabilityDwell {
		t.Errorf("StabilityDwell = %s, want untouched default %s", cfg.StabilityDwell, DefaultStabilityDwell)
	}
	if cfg.ScoreTolerance != 7 {
		t.Errorf("ScoreTolerance = %d, want 7", cfg.ScoreTolerance)
	}
}

func TestLoad_NegativeMaxRetriesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adsc.conf")
	writeFile(t, path, `
config adsc 'main'
	option max_validation_retries '-2'
`)

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want an error for a negative max_validation_retries")
	}
}

func TestLoad_NegativeScoreToleranceIsNotAnError(t *testing.T) {
	// A negative score_tolerance is a valid sentinel disabling score-based
	// switching (adsc.Config doc comment), not a validation failure.
	path := filepath.Join(t.TempDir(), "adsc.conf")
	writeFile(t, path, `
config adsc 'main'
	option score_tolerance '-5'
	option feature_score_based_enabled '1'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cfg.ScoreSwitchEnabled() {
		t.Error("ScoreSwitchEnabled() = true, want false with a negative tolerance")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}
