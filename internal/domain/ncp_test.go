package domain

import "testing"

func TestAppendBeatAdvancesIndex(t *testing.T) {
	s := NewNCPState()
	s.AppendBeat(StoryBeat{BeatID: "b1"})
	s.AppendBeat(StoryBeat{BeatID: "b2"})

	if s.CurrentBeatIndex != 2 || len(s.Beats) != 2 {
		t.Fatalf("expected index to track len(beats), got index=%d len=%d", s.CurrentBeatIndex, len(s.Beats))
	}
}

func TestReplaceLastBeatDoesNotAdvanceIndex(t *testing.T) {
	s := NewNCPState()
	s.AppendBeat(StoryBeat{BeatID: "b1"})
	s.ReplaceLastBeat(StoryBeat{BeatID: "b1-revised"})

	if s.CurrentBeatIndex != 1 || len(s.Beats) != 1 {
		t.Fatalf("replace should not change len or index, got index=%d len=%d", s.CurrentBeatIndex, len(s.Beats))
	}
	beat, _ := s.LastBeat()
	if beat.BeatID != "b1-revised" {
		t.Fatalf("expected the replaced beat, got %q", beat.BeatID)
	}
}

func TestReplaceLastBeatOnEmptyStateAppends(t *testing.T) {
	s := NewNCPState()
	s.ReplaceLastBeat(StoryBeat{BeatID: "b1"})

	if len(s.Beats) != 1 || s.CurrentBeatIndex != 1 {
		t.Fatalf("expected replace-on-empty to behave as append, got index=%d len=%d", s.CurrentBeatIndex, len(s.Beats))
	}
}

func TestLastBeatOnEmptyState(t *testing.T) {
	s := NewNCPState()
	if _, ok := s.LastBeat(); ok {
		t.Fatalf("expected ok = false for an empty beat list")
	}
}

func TestCharacterStateLookup(t *testing.T) {
	s := NewNCPState()
	if _, ok := s.CharacterState("ghost"); ok {
		t.Fatalf("expected ok = false for an untracked character")
	}

	s.CharacterStates["c1"] = &CharacterArcState{PlayerID: "c1"}
	c, ok := s.CharacterState("c1")
	if !ok || c.PlayerID != "c1" {
		t.Fatalf("expected to find the tracked character, got %+v ok=%v", c, ok)
	}
}
