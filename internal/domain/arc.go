package domain

import "time"

// ArcPoint is a single developmental event for one character at one beat.
type ArcPoint struct {
	BeatID          string       `json:"beat_id"`
	BeatIndex       int          `json:"beat_index"`
	Timestamp       time.Time    `json:"timestamp"`
	EmotionalState  string       `json:"emotional_state"`
	ArcDirection    ArcDirection `json:"arc_direction"`
	ImpactMagnitude float64      `json:"impact_magnitude"`
}

// RelationshipState tracks one character's relationship to another.
type RelationshipState struct {
	Type        string   `json:"type"`
	TrustLevel  float64  `json:"trust_level"` // [-1, 1]
	History     []string `json:"history,omitempty"`
	CurrentDynamic string `json:"current_dynamic,omitempty"`
}

// CharacterArcState is the comprehensive per-character journey tracked
// across an NCPState's lifetime.
type CharacterArcState struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`

	Wound           string        `json:"wound,omitempty"`
	Desire          string        `json:"desire,omitempty"`
	ArcDescription  string        `json:"arc_description,omitempty"`
	Role            CharacterRole `json:"role,omitempty"`

	CurrentEmotionalState string   `json:"current_emotional_state,omitempty"`
	ActiveGoals           []string `json:"active_goals,omitempty"`
	ActiveFears           []string `json:"active_fears,omitempty"`

	ArcPoints   []ArcPoint `json:"arc_points"`
	ArcPosition float64    `json:"arc_position"`

	RelationshipMap map[string]RelationshipState `json:"relationship_map,omitempty"`
}

// AddArcPoint appends a point (arc_points are append-only within a session)
// and derives the new arc_position by folding the point's signed impact:
// ascending/resolution nudge up, descending/crisis nudge down, static holds,
// scaled by 0.1*impact_magnitude and clamped to [0,1].
func (c *CharacterArcState) AddArcPoint(p ArcPoint) {
	c.ArcPoints = append(c.ArcPoints, p)

	delta := 0.1 * p.ImpactMagnitude
	switch p.ArcDirection {
	case ArcAscending, ArcResolution:
		c.ArcPosition = clamp01(c.ArcPosition + delta)
	case ArcDescending, ArcCrisis:
		c.ArcPosition = clamp01(c.ArcPosition - delta)
	default:
		// static: no change
	}
	c.CurrentEmotionalState = p.EmotionalState
}
