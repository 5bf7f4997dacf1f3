package narrative

import (
	"strings"

	"clone-llm/internal/domain"
)

// defaultImpactMagnitude is applied whenever a caller doesn't have a more
// specific signal for how much a beat moved a character.
const defaultImpactMagnitude = 0.3

var ascendingTones = []string{"hope", "joy", "triumph", "love", "confidence"}
var descendingTones = []string{"despair", "fear", "grief", "shame", "defeat"}
var crisisTones = []string{"crisis", "confrontation", "turning", "revelation"}

// classifyArcDirection infers an ArcDirection from an emotional_tone label by
// keyword match against disjoint sets. Unmatched tones are static.
func classifyArcDirection(emotionalTone string) domain.ArcDirection {
	tone := strings.ToLower(strings.TrimSpace(emotionalTone))
	if tone == "" {
		return domain.ArcStatic
	}
	for _, t := range ascendingTones {
		if strings.Contains(tone, t) {
			return domain.ArcAscending
		}
	}
	for _, t := range descendingTones {
		if strings.Contains(tone, t) {
			return domain.ArcDescending
		}
	}
	for _, t := range crisisTones {
		if strings.Contains(tone, t) {
			return domain.ArcCrisis
		}
	}
	return domain.ArcStatic
}
