package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStoryBeatJSONRoundTrip(t *testing.T) {
	dialogue := "hello"
	action := "she turns"
	original := StoryBeat{
		BeatID:             "beat-1",
		BeatIndex:          3,
		RawText:            "full passage text",
		Dialogue:           &dialogue,
		Action:             &action,
		CharacterID:        "char-1",
		CharacterName:      "Mara",
		EmotionalTone:      "hope",
		ThemeResonance:     "perseverance",
		QualityScore:       0.82,
		EnrichmentsApplied: []string{"emotional_enrichment"},
		Timestamp:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		NCPMetadata:        map[string]string{"act": "1"},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded StoryBeat
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.BeatID != original.BeatID || decoded.BeatIndex != original.BeatIndex {
		t.Fatalf("identity fields did not round-trip: %+v", decoded)
	}
	if decoded.Dialogue == nil || *decoded.Dialogue != dialogue {
		t.Fatalf("dialogue did not round-trip: %+v", decoded.Dialogue)
	}
	if decoded.QualityScore != original.QualityScore {
		t.Fatalf("quality score did not round-trip: got %v want %v", decoded.QualityScore, original.QualityScore)
	}
	if decoded.NCPMetadata["act"] != "1" {
		t.Fatalf("ncp_metadata did not round-trip: %+v", decoded.NCPMetadata)
	}
}

func TestStoryBeatCloneDoesNotAlias(t *testing.T) {
	original := StoryBeat{
		BeatID:             "beat-1",
		EnrichmentsApplied: []string{"a"},
		NCPMetadata:        map[string]string{"k": "v"},
	}

	clone := original.Clone()
	clone.EnrichmentsApplied[0] = "mutated"
	clone.NCPMetadata["k"] = "mutated"

	if original.EnrichmentsApplied[0] != "a" {
		t.Fatalf("clone mutation leaked into original enrichments: %+v", original.EnrichmentsApplied)
	}
	if original.NCPMetadata["k"] != "v" {
		t.Fatalf("clone mutation leaked into original metadata: %+v", original.NCPMetadata)
	}
}
