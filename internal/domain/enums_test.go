package domain

import "testing"

func TestSeverityForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Severity
	}{
		{0.0, SeverityCritical},
		{0.29, SeverityCritical},
		{0.3, SeverityMajor},
		{0.49, SeverityMajor},
		{0.5, SeverityMinor},
		{1.0, SeverityMinor},
	}

	for _, c := range cases {
		if got := SeverityFor(c.score); got != c.want {
			t.Errorf("SeverityFor(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}

func TestNewGapDerivesSeverity(t *testing.T) {
	g := NewGap("gap-1", GapEmotionalWeak, DimensionEmotional, 0.2, 0.9, "beat-1", "too flat")

	if g.Severity != SeverityCritical {
		t.Fatalf("severity = %v, want critical", g.Severity)
	}
	if g.GapID != "gap-1" || g.BeatID != "beat-1" {
		t.Fatalf("identity fields not set correctly: %+v", g)
	}
}
