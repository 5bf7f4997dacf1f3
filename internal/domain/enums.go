package domain

// ArcDirection classifies how a character's arc moved at a given beat.
type ArcDirection string

const (
	ArcAscending  ArcDirection = "ascending"
	ArcDescending ArcDirection = "descending"
	ArcStatic     ArcDirection = "static"
	ArcCrisis     ArcDirection = "crisis"
	ArcResolution ArcDirection = "resolution"
)

// Severity buckets a Gap's deficiency by how low its score is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// SeverityFor buckets a 0..1 score into the closed severity set.
// score<0.3 => critical; 0.3<=score<0.5 => major; else minor.
func SeverityFor(score float64) Severity {
	switch {
	case score < 0.3:
		return SeverityCritical
	case score < 0.5:
		return SeverityMajor
	default:
		return SeverityMinor
	}
}

// Dimension is the closed set of analytical axes a Gap can belong to.
type Dimension string

const (
	DimensionEmotional Dimension = "emotional"
	DimensionCharacter Dimension = "character"
	DimensionThematic  Dimension = "thematic"
	DimensionStructural Dimension = "structural"
)

// DramaticPhase is the coarse plot position of the active NCP state.
type DramaticPhase string

const (
	PhaseSetup         DramaticPhase = "setup"
	PhaseConfrontation DramaticPhase = "confrontation"
	PhaseResolution    DramaticPhase = "resolution"
)

// GapType is the closed taxonomy of quality deficiencies the analytical
// feedback loop can identify (spec §4.3).
type GapType string

const (
	GapEmotionalWeak        GapType = "emotional_weak"
	GapEmotionalMismatch    GapType = "emotional_mismatch"
	GapCharacterInconsistent GapType = "character_inconsistent"
	GapCharacterStatic      GapType = "character_static"
	GapThemeMissing         GapType = "theme_missing"
	GapThemeContradiction   GapType = "theme_contradiction"
	GapDialogueWeak         GapType = "dialogue_weak"
	GapPacingIssue          GapType = "pacing_issue"
)

// CharacterRole is the closed set of narrative roles a character can occupy.
type CharacterRole string

const (
	RoleProtagonist CharacterRole = "protagonist"
	RoleAntagonist  CharacterRole = "antagonist"
	RoleSupporting  CharacterRole = "supporting"
)
