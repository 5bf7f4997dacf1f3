package narrative

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"clone-llm/internal/domain"
	"clone-llm/internal/llm"
)

// EnricherConfig holds the enricher's convergence knobs (spec §4.5).
type EnricherConfig struct {
	Threshold       float64
	MaxIterations   int
	MinImprovement  float64
	LengthTolerance float64
}

func DefaultEnricherConfig() EnricherConfig {
	return EnricherConfig{
		Threshold:       0.75,
		MaxIterations:   3,
		MinImprovement:  0.05,
		LengthTolerance: 0.20,
	}
}

// EnrichmentResult is the full record of one analyze-and-enrich pass.
type EnrichmentResult struct {
	Original         domain.StoryBeat
	Final            domain.StoryBeat
	InitialAnalysis  domain.EmotionalAnalysis
	FinalAnalysis    domain.EmotionalAnalysis
	Iterations       int
	WasEnriched      bool
	ImprovementDelta float64
	Notes            []string
}

// BeatSimilaritySearcher is the narrow slice of internal/repository's
// BeatRepository the enricher needs for its optional recall hook, kept as
// a local interface so this package never imports internal/repository.
// *repository.PgBeatRepository satisfies it structurally.
type BeatSimilaritySearcher interface {
	SearchSimilar(ctx context.Context, storyID string, queryEmbedding pgvector.Vector, k int) ([]domain.StoryBeat, error)
}

// SimilarBeatRecall is the optional embedding-backed memory hook spec §9's
// "optional-feature import guard" maps to: the generator/enricher's RAG
// collaborator (spec §1, §6). Nil by default -- the enrich loop works
// identically without it; when both fields are wired in, the enrichment
// prompt is seeded with the most similar past beats by embedding search,
// the same role the teacher's NarrativeService.BuildNarrativeContext
// memory search played.
type SimilarBeatRecall struct {
	Embedder   llm.EmbeddingClient
	Repository BeatSimilaritySearcher
	TopK       int
}

// EmotionalEnricher brings a beat's emotional quality up to a configured
// threshold through an iterative classify-rewrite-reclassify loop.
type EmotionalEnricher struct {
	llmClient llm.LLMClient
	cfg       EnricherConfig
	recall    *SimilarBeatRecall
}

func NewEmotionalEnricher(client llm.LLMClient, cfg EnricherConfig) *EmotionalEnricher {
	return &EmotionalEnricher{llmClient: client, cfg: cfg}
}

// SetSimilarBeatRecall wires (or clears, with nil) the optional
// similar-beat recall hook used when assembling the enrichment prompt.
func (e *EmotionalEnricher) SetSimilarBeatRecall(r *SimilarBeatRecall) {
	e.recall = r
}

// recallSimilarBeats embeds the beat under enrichment and looks up its
// nearest neighbors among the active story's past beats. Any failure --
// no hook configured, embedding error, search error -- degrades to no
// recall context rather than failing the enrichment pass, matching spec
// §7's "parse/lookup failure is never an exception" stance.
func (e *EmotionalEnricher) recallSimilarBeats(ctx context.Context, beat domain.StoryBeat) []domain.StoryBeat {
	if e.recall == nil || e.recall.Embedder == nil || e.recall.Repository == nil {
		return nil
	}
	storyID := storyIDFromContext(ctx)
	if storyID == "" {
		return nil
	}
	vec, err := e.recall.Embedder.CreateEmbedding(ctx, beat.RawText)
	if err != nil {
		return nil
	}
	k := e.recall.TopK
	if k <= 0 {
		k = 3
	}
	similar, err := e.recall.Repository.SearchSimilar(ctx, storyID, pgvector.NewVector(vec), k)
	if err != nil {
		return nil
	}
	return similar
}

// Classify runs the classifier prompt once and parses the KV response.
func (e *EmotionalEnricher) Classify(ctx context.Context, beat domain.StoryBeat) (domain.EmotionalAnalysis, error) {
	prompt := e.classificationPrompt(beat)
	raw, err := e.llmClient.Generate(ctx, prompt)
	if err != nil {
		return domain.EmotionalAnalysis{}, fmt.Errorf("classify beat: %w", err)
	}
	return parseAnalysisKV(raw), nil
}

func (e *EmotionalEnricher) classificationPrompt(beat domain.StoryBeat) string {
	var sb strings.Builder
	sb.WriteString("=== BEAT TO CLASSIFY ===\n")
	sb.WriteString(beat.RawText)
	sb.WriteString("\n\n")
	sb.WriteString(analysisResponseFormatInstruction)
	return sb.String()
}

// AnalyzeAndEnrich implements the threshold short-circuit and the bounded
// refine-reanalyze loop documented in spec §4.2.
func (e *EmotionalEnricher) AnalyzeAndEnrich(ctx context.Context, beat domain.StoryBeat) (EnrichmentResult, error) {
	initial, err := e.Classify(ctx, beat)
	if err != nil {
		return EnrichmentResult{}, err
	}

	result := EnrichmentResult{
		Original:        beat,
		Final:           beat,
		InitialAnalysis: initial,
		FinalAnalysis:   initial,
	}

	if initial.QualityScore() >= e.cfg.Threshold {
		return result, nil
	}

	maxIterations := e.cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 3
	}

	current := beat
	currentAnalysis := initial
	bestBeat := beat
	bestAnalysis := initial

	for iteration := 0; iteration < maxIterations; iteration++ {
		candidate, err := e.rewrite(ctx, current, currentAnalysis)
		if err != nil {
			result.Notes = append(result.Notes, fmt.Sprintf("iteration %d rewrite failed: %v", iteration+1, err))
			break
		}

		if !e.validate(current, candidate) {
			result.Notes = append(result.Notes, fmt.Sprintf("iteration %d rejected: validation failed", iteration+1))
			break
		}

		candidateAnalysis, err := e.Classify(ctx, candidate)
		if err != nil {
			result.Notes = append(result.Notes, fmt.Sprintf("iteration %d reclassify failed: %v", iteration+1, err))
			break
		}

		delta := candidateAnalysis.QualityScore() - currentAnalysis.QualityScore()
		result.Iterations = iteration + 1

		current = candidate
		currentAnalysis = candidateAnalysis
		if candidateAnalysis.QualityScore() > bestAnalysis.QualityScore() {
			bestBeat = candidate
			bestAnalysis = candidateAnalysis
		}

		if candidateAnalysis.QualityScore() >= e.cfg.Threshold {
			break
		}
		minImprovement := e.cfg.MinImprovement
		if minImprovement <= 0 {
			minImprovement = 0.05
		}
		if delta < minImprovement {
			break
		}
	}

	result.Final = bestBeat
	result.FinalAnalysis = bestAnalysis
	result.WasEnriched = bestAnalysis.QualityScore() > initial.QualityScore()
	result.ImprovementDelta = bestAnalysis.QualityScore() - initial.QualityScore()
	return result, nil
}

func (e *EmotionalEnricher) rewrite(ctx context.Context, beat domain.StoryBeat, analysis domain.EmotionalAnalysis) (domain.StoryBeat, error) {
	prompt := e.enrichmentPrompt(ctx, beat, analysis)
	raw, err := e.llmClient.Generate(ctx, prompt)
	if err != nil {
		return domain.StoryBeat{}, fmt.Errorf("generate enrichment: %w", err)
	}

	out := beat.Clone()
	out.RawText = strings.TrimSpace(raw)
	out.EnrichmentsApplied = append(append([]string(nil), beat.EnrichmentsApplied...), analysis.ImprovementAreas...)
	return out, nil
}

func (e *EmotionalEnricher) enrichmentPrompt(ctx context.Context, beat domain.StoryBeat, analysis domain.EmotionalAnalysis) string {
	techniques := techniqueInstructions(analysis.ImprovementAreas, 6)

	var sb strings.Builder
	sb.WriteString("=== ORIGINAL BEAT ===\n")
	sb.WriteString(beat.RawText)
	sb.WriteString("\n\n")

	if similar := e.recallSimilarBeats(ctx, beat); len(similar) > 0 {
		sb.WriteString("=== SIMILAR PAST BEATS ===\n")
		for _, s := range similar {
			sb.WriteString(s.RawText)
			sb.WriteString("\n---\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== ANALYSIS ===\n")
	sb.WriteString(fmt.Sprintf("primary_emotion: %s\n", analysis.PrimaryEmotion))
	sb.WriteString(fmt.Sprintf("confidence: %.2f resonance: %.2f specificity: %.2f authenticity: %.2f\n",
		analysis.Confidence, analysis.Resonance, analysis.Specificity, analysis.Authenticity))
	if len(analysis.ImprovementAreas) > 0 {
		sb.WriteString(fmt.Sprintf("improvement_areas: %s\n", strings.Join(analysis.ImprovementAreas, ", ")))
	}
	sb.WriteString("\n")

	if len(techniques) > 0 {
		sb.WriteString("=== REWRITE TECHNIQUES ===\n")
		for _, t := range techniques {
			sb.WriteString("- ")
			sb.WriteString(t)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== INSTRUCTION ===\n")
	sb.WriteString("Rewrite the beat above applying the techniques. Keep the same character and perspective. Stay within ±20% of the original length.\n")
	return sb.String()
}

// techniqueInstructions flattens up to `limit` technique strings from the
// improvement-area map, in a stable order.
func techniqueInstructions(areas []string, limit int) []string {
	sortedAreas := append([]string(nil), areas...)
	sort.Strings(sortedAreas)

	var out []string
	for _, area := range sortedAreas {
		for _, t := range EnrichmentTechniques[area] {
			out = append(out, t)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// validate rejects an enrichment that changed character_id or whose length
// ratio falls outside [1-tolerance, 1+tolerance].
func (e *EmotionalEnricher) validate(original, candidate domain.StoryBeat) bool {
	if candidate.CharacterID != original.CharacterID {
		return false
	}
	if len(original.RawText) == 0 {
		return true
	}

	tolerance := e.cfg.LengthTolerance
	if tolerance <= 0 {
		tolerance = 0.20
	}
	ratio := float64(len(candidate.RawText)) / float64(len(original.RawText))
	return ratio >= 1-tolerance && ratio <= 1+tolerance
}
