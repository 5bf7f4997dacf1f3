package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clone-llm/internal/domain"
	"clone-llm/internal/llm"
)

// GeneratorConfig holds the generator's tunable knobs, mirroring the
// relevant slice of the orchestrator's config (spec §4.5).
type GeneratorConfig struct {
	ContextDepth   int
	CeremonialMode bool
}

// DefaultGeneratorConfig matches the documented defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{ContextDepth: 3, CeremonialMode: false}
}

// GenerateOptions lets a caller override what the NCPState would otherwise
// supply for a single beat.
type GenerateOptions struct {
	CharacterID     string
	CharacterName   string
	Theme           string
	EmotionalTarget string
}

// Generator produces one StoryBeat at a time from an NCPState, an LLM
// client, and the character-arc tracker that supplies prompt context.
type Generator struct {
	llmClient llm.LLMClient
	tracker   *CharacterArcTracker
	cfg       GeneratorConfig
}

func NewGenerator(client llm.LLMClient, tracker *CharacterArcTracker, cfg GeneratorConfig) *Generator {
	return &Generator{llmClient: client, tracker: tracker, cfg: cfg}
}

// GenerateBeat assembles a prompt from the current NCPState, invokes the
// LLM, and parses the result into a StoryBeat. LLM failures are caught and
// turned into an empty-text beat rather than propagated -- the analyzer is
// expected to flag it and force regeneration. Retries, if any, are the
// orchestrator's decision, not the generator's.
func (g *Generator) GenerateBeat(ctx context.Context, state *domain.NCPState, opts GenerateOptions) (domain.StoryBeat, error) {
	characterID := opts.CharacterID
	if characterID == "" {
		characterID = state.ActivePerspective
	}
	characterName := opts.CharacterName
	if characterName == "" {
		if c, ok := state.CharacterState(characterID); ok {
			characterName = c.Name
		}
	}

	prompt := g.buildPrompt(state, characterID, opts)

	raw, err := g.llmClient.Generate(ctx, prompt)
	if err != nil {
		return g.emptyBeat(state, characterID, characterName), nil
	}

	return g.parseBeat(state, characterID, characterName, raw), nil
}

func (g *Generator) buildPrompt(state *domain.NCPState, characterID string, opts GenerateOptions) string {
	theme := opts.Theme
	if theme == "" {
		theme = state.ActiveTheme
	}
	emotionalTarget := opts.EmotionalTarget

	var sb strings.Builder

	sb.WriteString("=== PERSPECTIVE ===\n")
	if characterID != "" {
		sb.WriteString(fmt.Sprintf("Write this beat from the perspective of character %q.\n\n", characterID))
	} else {
		sb.WriteString("Write this beat from the active narrative perspective.\n\n")
	}

	depth := g.cfg.ContextDepth
	if depth <= 0 {
		depth = 3
	}
	if arcCtx, ok := g.tracker.GetArcContext(characterID, depth); ok {
		sb.WriteString("=== CHARACTER ARC CONTEXT ===\n")
		sb.WriteString(arcCtx)
		sb.WriteString("\n")
	}

	sb.WriteString("=== NARRATIVE MOMENT ===\n")
	sb.WriteString(fmt.Sprintf("Dramatic phase: %s\n", state.DramaticPhase))
	if theme != "" {
		sb.WriteString(fmt.Sprintf("Active theme: %s\n", theme))
	}
	if emotionalTarget != "" {
		sb.WriteString(fmt.Sprintf("Emotional target: %s\n", emotionalTarget))
	}
	sb.WriteString(fmt.Sprintf("Tension level: %.2f\n\n", state.TensionLevel))

	if len(state.Beats) > 0 {
		sb.WriteString("=== RECENT BEATS ===\n")
		start := len(state.Beats) - 3
		if start < 0 {
			start = 0
		}
		for _, b := range state.Beats[start:] {
			sb.WriteString(b.RawText)
			sb.WriteString("\n---\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(beatResponseFormatInstruction)

	if g.cfg.CeremonialMode {
		sb.WriteString("\n=== CEREMONIAL EXTENSION ===\n")
		sb.WriteString("Honor the scene's ceremonial register: formal address, ritual cadence, no modern idiom.\n")
	}

	return sb.String()
}

func (g *Generator) parseBeat(state *domain.NCPState, characterID, characterName, raw string) domain.StoryBeat {
	beat := domain.StoryBeat{
		BeatID:        uuid.NewString(),
		BeatIndex:     state.CurrentBeatIndex,
		RawText:       raw,
		CharacterID:   characterID,
		CharacterName: characterName,
		Timestamp:     time.Now().UTC(),
	}

	fields := parseBeatXML(raw)
	if fields.anyTagMatched {
		beat.Dialogue = fields.Dialogue
		beat.Action = fields.Action
		beat.Internal = fields.Internal
		beat.EmotionalTone = fields.EmotionalTone
		beat.ThemeResonance = fields.ThemeResonance
	}
	return beat
}

func (g *Generator) emptyBeat(state *domain.NCPState, characterID, characterName string) domain.StoryBeat {
	return domain.StoryBeat{
		BeatID:        uuid.NewString(),
		BeatIndex:     state.CurrentBeatIndex,
		RawText:       "",
		CharacterID:   characterID,
		CharacterName: characterName,
		Timestamp:     time.Now().UTC(),
	}
}

// ApplyBeat appends a generated beat to the state and records its arc
// impact against the perspective character, per the generator's state-update
// contract (spec §4.1): append beat, advance current_beat_index, append one
// ArcPoint with the default impact magnitude.
func (g *Generator) ApplyBeat(state *domain.NCPState, beat domain.StoryBeat) error {
	state.AppendBeat(beat)
	if beat.CharacterID == "" {
		return nil
	}
	if _, err := g.tracker.RecordBeatImpact(beat, beat.CharacterID); err != nil {
		return fmt.Errorf("record beat impact: %w", err)
	}
	return nil
}
