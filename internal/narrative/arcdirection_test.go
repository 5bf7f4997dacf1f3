package narrative

import (
	"testing"

	"clone-llm/internal/domain"
)

func TestClassifyArcDirection(t *testing.T) {
	cases := []struct {
		tone string
		want domain.ArcDirection
	}{
		{"hope", domain.ArcAscending},
		{"Quiet Triumph", domain.ArcAscending},
		{"despair", domain.ArcDescending},
		{"grief-stricken", domain.ArcDescending},
		{"revelation", domain.ArcCrisis},
		{"", domain.ArcStatic},
		{"curiosity", domain.ArcStatic},
	}

	for _, c := range cases {
		if got := classifyArcDirection(c.tone); got != c.want {
			t.Errorf("classifyArcDirection(%q) = %v, want %v", c.tone, got, c.want)
		}
	}
}
