package domain

import "testing"

func TestAddArcPointAscendingNudgesUp(t *testing.T) {
	c := &CharacterArcState{PlayerID: "p1", ArcPosition: 0.40}

	c.AddArcPoint(ArcPoint{
		EmotionalState:  "hope",
		ArcDirection:    ArcAscending,
		ImpactMagnitude: 0.3,
	})

	want := 0.43
	if diff := c.ArcPosition - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("arc_position = %v, want %v", c.ArcPosition, want)
	}
	if c.CurrentEmotionalState != "hope" {
		t.Fatalf("current_emotional_state = %q, want hope", c.CurrentEmotionalState)
	}
	if len(c.ArcPoints) != 1 {
		t.Fatalf("expected 1 arc point, got %d", len(c.ArcPoints))
	}
}

func TestAddArcPointDescendingNudgesDown(t *testing.T) {
	c := &CharacterArcState{ArcPosition: 0.5}
	c.AddArcPoint(ArcPoint{ArcDirection: ArcCrisis, ImpactMagnitude: 0.5})

	want := 0.45
	if diff := c.ArcPosition - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("arc_position = %v, want %v", c.ArcPosition, want)
	}
}

func TestAddArcPointStaticHolds(t *testing.T) {
	c := &CharacterArcState{ArcPosition: 0.5}
	c.AddArcPoint(ArcPoint{ArcDirection: ArcStatic, ImpactMagnitude: 0.9})

	if c.ArcPosition != 0.5 {
		t.Fatalf("static direction should not move arc_position, got %v", c.ArcPosition)
	}
}

func TestAddArcPointClampsToUnitRange(t *testing.T) {
	high := &CharacterArcState{ArcPosition: 0.98}
	high.AddArcPoint(ArcPoint{ArcDirection: ArcResolution, ImpactMagnitude: 1.0})
	if high.ArcPosition != 1.0 {
		t.Fatalf("arc_position should clamp to 1.0, got %v", high.ArcPosition)
	}

	low := &CharacterArcState{ArcPosition: 0.02}
	low.AddArcPoint(ArcPoint{ArcDirection: ArcDescending, ImpactMagnitude: 1.0})
	if low.ArcPosition != 0.0 {
		t.Fatalf("arc_position should clamp to 0.0, got %v", low.ArcPosition)
	}
}

func TestAddArcPointIsAppendOnly(t *testing.T) {
	c := &CharacterArcState{}
	c.AddArcPoint(ArcPoint{BeatID: "b1", ArcDirection: ArcStatic})
	c.AddArcPoint(ArcPoint{BeatID: "b2", ArcDirection: ArcStatic})

	if len(c.ArcPoints) != 2 {
		t.Fatalf("expected 2 arc points, got %d", len(c.ArcPoints))
	}
	if c.ArcPoints[0].BeatID != "b1" || c.ArcPoints[1].BeatID != "b2" {
		t.Fatalf("arc points out of order: %+v", c.ArcPoints)
	}
}
