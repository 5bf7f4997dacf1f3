package graph

import "clone-llm/internal/config"

// Config holds the graph orchestrator's tunable knobs (spec §4.5). It is
// deliberately a plain struct independent of internal/config.Config so the
// orchestrator can be constructed directly in tests without an env-parsed
// config object.
type Config struct {
	MaxBeats                  int
	MinQuality                float64
	GapThreshold              float64
	MaxGapsPerBeat            int
	AutoRemediate             bool
	EmotionalQualityThreshold float64
	EnrichmentMaxIterations   int
	EnrichmentMinImprovement  float64
	PreserveLengthTolerance   float64
	CharacterContextDepth     int
	NCPAwareGeneration        bool
	CeremonialMode            bool
}

// DefaultConfig matches the documented defaults in spec §4.5.
func DefaultConfig() Config {
	return Config{
		MaxBeats:                  10,
		MinQuality:                0.6,
		GapThreshold:              0.6,
		MaxGapsPerBeat:            3,
		AutoRemediate:             true,
		EmotionalQualityThreshold: 0.75,
		EnrichmentMaxIterations:   3,
		EnrichmentMinImprovement:  0.05,
		PreserveLengthTolerance:   0.20,
		CharacterContextDepth:     3,
		NCPAwareGeneration:        true,
		CeremonialMode:            false,
	}
}

// ConfigFromEnv maps the engine-wide env-parsed config onto the graph's
// knob set, so cmd/storyrunner can build one from the other without the
// graph package importing caarlos0/env directly.
func ConfigFromEnv(c *config.Config) Config {
	if c == nil {
		return DefaultConfig()
	}
	return Config{
		MaxBeats:                  c.MaxBeats,
		MinQuality:                c.MinQuality,
		GapThreshold:              c.GapThreshold,
		MaxGapsPerBeat:            c.MaxGapsPerBeat,
		AutoRemediate:             c.AutoRemediate,
		EmotionalQualityThreshold: c.EmotionalQualityThreshold,
		EnrichmentMaxIterations:   c.EnrichmentMaxIterations,
		EnrichmentMinImprovement:  c.EnrichmentMinImprovement,
		PreserveLengthTolerance:   c.PreserveLengthTolerance,
		CharacterContextDepth:     c.CharacterContextDepth,
		NCPAwareGeneration:        c.NCPAwareGeneration,
		CeremonialMode:            c.CeremonialMode,
	}
}
