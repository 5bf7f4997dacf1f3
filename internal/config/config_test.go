package config

import "testing"

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("MAX_BEATS", "")
	t.Setenv("EMOTIONAL_QUALITY_THRESHOLD", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want default 8080", cfg.HTTPPort)
	}
	if cfg.MaxBeats != 10 {
		t.Errorf("MaxBeats = %d, want default 10", cfg.MaxBeats)
	}
	if cfg.EmotionalQualityThreshold != 0.75 {
		t.Errorf("EmotionalQualityThreshold = %v, want default 0.75", cfg.EmotionalQualityThreshold)
	}
	if !cfg.AutoRemediate || !cfg.NCPAwareGeneration {
		t.Errorf("expected auto_remediate and ncp_aware_generation to default true")
	}
	if cfg.CeremonialMode {
		t.Errorf("expected ceremonial_mode to default false")
	}
}

func TestLoadConfigReadsOverrides(t *testing.T) {
	t.Setenv("MAX_BEATS", "25")
	t.Setenv("MIN_QUALITY", "0.8")
	t.Setenv("CEREMONIAL_MODE", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.MaxBeats != 25 {
		t.Errorf("MaxBeats = %d, want 25", cfg.MaxBeats)
	}
	if cfg.MinQuality != 0.8 {
		t.Errorf("MinQuality = %v, want 0.8", cfg.MinQuality)
	}
	if !cfg.CeremonialMode {
		t.Errorf("expected ceremonial_mode = true")
	}
}
