package domain

import "encoding/json"

// NCPState ("Narrative Context Persistence") is the narrative context that
// flows between graph nodes for the duration of a single run.
type NCPState struct {
	Beats            []StoryBeat `json:"beats"`
	CurrentBeatIndex int         `json:"current_beat_index"`

	ActivePerspective string        `json:"active_perspective,omitempty"`
	ActiveTheme       string        `json:"active_theme,omitempty"`
	DramaticPhase     DramaticPhase `json:"dramatic_phase,omitempty"`
	ActNumber         int           `json:"act_number"`
	TensionLevel      float64       `json:"tension_level"`

	CharacterStates map[string]*CharacterArcState `json:"character_states,omitempty"`

	IdentifiedGaps  []Gap `json:"identified_gaps,omitempty"`
	EnrichmentCount int   `json:"enrichment_count"`

	ThreeUniverseAnalysis json.RawMessage `json:"three_universe_analysis,omitempty"`
	CoherenceScore        float64         `json:"coherence_score,omitempty"`
}

// NewNCPState returns an NCPState ready for use at graph entry.
func NewNCPState() *NCPState {
	return &NCPState{
		DramaticPhase:   PhaseSetup,
		CharacterStates: make(map[string]*CharacterArcState),
	}
}

// AppendBeat appends a beat and advances current_beat_index, preserving the
// invariant len(beats) == current_beat_index.
func (s *NCPState) AppendBeat(b StoryBeat) {
	s.Beats = append(s.Beats, b)
	s.CurrentBeatIndex = len(s.Beats)
}

// ReplaceLastBeat swaps the most recently appended beat in place, used when
// the analytical loop or a regeneration replaces a beat at the same index.
func (s *NCPState) ReplaceLastBeat(b StoryBeat) {
	if len(s.Beats) == 0 {
		s.AppendBeat(b)
		return
	}
	s.Beats[len(s.Beats)-1] = b
}

// LastBeat returns the most recently appended beat, if any.
func (s *NCPState) LastBeat() (StoryBeat, bool) {
	if len(s.Beats) == 0 {
		return StoryBeat{}, false
	}
	return s.Beats[len(s.Beats)-1], true
}

// CharacterState returns the tracked state for a character, if any.
func (s *NCPState) CharacterState(playerID string) (*CharacterArcState, bool) {
	if s.CharacterStates == nil {
		return nil, false
	}
	c, ok := s.CharacterStates[playerID]
	return c, ok
}
