package narrative

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"clone-llm/internal/domain"
)

// FeedbackConfig holds the analytical loop's tunable knobs (spec §4.5).
type FeedbackConfig struct {
	GapThreshold   float64
	MaxGapsPerBeat int
	AutoRemediate  bool
}

func DefaultFeedbackConfig() FeedbackConfig {
	return FeedbackConfig{GapThreshold: 0.6, MaxGapsPerBeat: 3, AutoRemediate: true}
}

// Enrichment is the output of applying a remediation flow: a replacement
// raw_text with an improvement score, or Applied=false if the flow declined
// to act.
type Enrichment struct {
	Applied          bool
	RawText          string
	ImprovementScore float64
}

// FlowHandler performs remediation for one gap against the beat that
// produced it.
type FlowHandler func(ctx context.Context, beat domain.StoryBeat, gap domain.Gap) (Enrichment, error)

// FlowRoute is a prioritized mapping from gap types to a remediation
// handler. Lower Priority values run first when more than one route could
// serve a gap.
type FlowRoute struct {
	ID       string
	GapTypes []domain.GapType
	Priority int
	Handler  FlowHandler
}

func (f FlowRoute) handles(gapType domain.GapType) bool {
	for _, t := range f.GapTypes {
		if t == gapType {
			return true
		}
	}
	return false
}

// AnalyticalFeedbackLoop performs multi-dimensional beat analysis, derives
// prioritized gaps, and routes each to a registered remediation flow.
type AnalyticalFeedbackLoop struct {
	enricher *EmotionalEnricher
	tracker  *CharacterArcTracker
	flows    []FlowRoute
	cfg      FeedbackConfig
	logger   *zap.Logger
}

func NewAnalyticalFeedbackLoop(enricher *EmotionalEnricher, tracker *CharacterArcTracker, cfg FeedbackConfig, logger *zap.Logger) *AnalyticalFeedbackLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	loop := &AnalyticalFeedbackLoop{enricher: enricher, tracker: tracker, cfg: cfg, logger: logger}
	loop.registerDefaultFlows()
	return loop
}

// registerDefaultFlows wires the closed gap taxonomy (spec §4.3) to a
// working emotional-enrichment flow and no-op placeholders for the
// character/thematic/structural flows, left pluggable via RegisterFlow.
func (l *AnalyticalFeedbackLoop) registerDefaultFlows() {
	l.RegisterFlow(FlowRoute{
		ID:       "emotional_enrichment",
		GapTypes: []domain.GapType{domain.GapEmotionalWeak, domain.GapEmotionalMismatch},
		Priority: 1,
		Handler:  l.emotionalEnrichmentHandler,
	})
	l.RegisterFlow(FlowRoute{
		ID:       "character_consistency",
		GapTypes: []domain.GapType{domain.GapCharacterInconsistent},
		Priority: 2,
		Handler:  noopHandler,
	})
	l.RegisterFlow(FlowRoute{
		ID:       "character_development",
		GapTypes: []domain.GapType{domain.GapCharacterStatic},
		Priority: 3,
		Handler:  noopHandler,
	})
	l.RegisterFlow(FlowRoute{
		ID:       "thematic_weaving",
		GapTypes: []domain.GapType{domain.GapThemeMissing, domain.GapThemeContradiction},
		Priority: 4,
		Handler:  noopHandler,
	})
	l.RegisterFlow(FlowRoute{
		ID:       "dialogue_enhancement",
		GapTypes: []domain.GapType{domain.GapDialogueWeak, domain.GapPacingIssue},
		Priority: 5,
		Handler:  noopHandler,
	})
}

// RegisterFlow adds a new route and resorts the registry by priority.
func (l *AnalyticalFeedbackLoop) RegisterFlow(route FlowRoute) {
	l.flows = append(l.flows, route)
	sort.SliceStable(l.flows, func(i, j int) bool {
		return l.flows[i].Priority < l.flows[j].Priority
	})
}

func noopHandler(context.Context, domain.StoryBeat, domain.Gap) (Enrichment, error) {
	return Enrichment{Applied: false}, nil
}

func (l *AnalyticalFeedbackLoop) emotionalEnrichmentHandler(ctx context.Context, beat domain.StoryBeat, _ domain.Gap) (Enrichment, error) {
	result, err := l.enricher.AnalyzeAndEnrich(ctx, beat)
	if err != nil {
		return Enrichment{}, fmt.Errorf("emotional enrichment flow: %w", err)
	}
	if !result.WasEnriched {
		return Enrichment{Applied: false}, nil
	}
	return Enrichment{
		Applied:          true,
		RawText:          result.Final.RawText,
		ImprovementScore: result.ImprovementDelta,
	}, nil
}

type dimensionScore struct {
	dimension domain.Dimension
	score     float64
	gapType   domain.GapType
	evidence  []string
}

// ProcessBeatWithAnalysis scores a beat across dimensions, derives
// prioritized gaps, and -- when auto-remediation is on -- runs the matching
// flow for each gap in turn, folding any applied enrichment back into the
// beat. It returns the (possibly remediated) beat and the gaps identified
// against the beat as it stood before remediation.
func (l *AnalyticalFeedbackLoop) ProcessBeatWithAnalysis(ctx context.Context, beat domain.StoryBeat, theme string) (domain.StoryBeat, []domain.Gap, error) {
	scores, err := l.scoreDimensions(ctx, beat, theme)
	if err != nil {
		return beat, nil, err
	}

	overall := averageScore(scores)
	gaps := l.identifyGaps(scores, beat.BeatID)

	beat.QualityScore = clampQuality(overall)

	if !l.cfg.AutoRemediate {
		return beat, gaps, nil
	}

	for _, gap := range gaps {
		route, ok := l.routeFor(gap.GapType)
		if !ok {
			l.logger.Info("no flow route for gap type, skipping", zap.String("gap_type", string(gap.GapType)), zap.String("beat_id", beat.BeatID))
			continue
		}

		enrichment, err := route.Handler(ctx, beat, gap)
		if err != nil {
			l.logger.Warn("remediation flow failed", zap.String("flow", route.ID), zap.Error(err))
			continue
		}
		if !enrichment.Applied {
			continue
		}

		beat.RawText = enrichment.RawText
		beat.EnrichmentsApplied = append(beat.EnrichmentsApplied, route.ID)
		beat.QualityScore = clampQuality(beat.QualityScore + enrichment.ImprovementScore)
	}

	return beat, gaps, nil
}

func (l *AnalyticalFeedbackLoop) routeFor(gapType domain.GapType) (FlowRoute, bool) {
	for _, f := range l.flows {
		if f.handles(gapType) {
			return f, true
		}
	}
	return FlowRoute{}, false
}

func (l *AnalyticalFeedbackLoop) scoreDimensions(ctx context.Context, beat domain.StoryBeat, theme string) ([]dimensionScore, error) {
	var scores []dimensionScore

	analysis, err := l.enricher.Classify(ctx, beat)
	if err != nil {
		return nil, fmt.Errorf("classify for analysis: %w", err)
	}
	emotionalGapType := domain.GapEmotionalWeak
	if analysis.PrimaryEmotion != "" && beat.EmotionalTone != "" && !strings.EqualFold(analysis.PrimaryEmotion, beat.EmotionalTone) {
		emotionalGapType = domain.GapEmotionalMismatch
	}
	scores = append(scores, dimensionScore{
		dimension: domain.DimensionEmotional,
		score:     analysis.QualityScore(),
		gapType:   emotionalGapType,
		evidence:  analysis.ImprovementAreas,
	})

	if beat.CharacterID != "" {
		consistency := l.tracker.ValidateConsistency(beat, beat.CharacterID)
		gapType := domain.GapCharacterInconsistent
		if c, ok := l.tracker.Character(beat.CharacterID); ok && len(c.ArcPoints) > 0 {
			if c.ArcPoints[len(c.ArcPoints)-1].ArcDirection == domain.ArcStatic {
				gapType = domain.GapCharacterStatic
			}
		}
		scores = append(scores, dimensionScore{
			dimension: domain.DimensionCharacter,
			score:     consistency.Score,
			gapType:   gapType,
			evidence:  consistency.Issues,
		})
	}

	if theme != "" {
		presence, _ := themeScores(theme, beat)
		gapType := domain.GapThemeContradiction
		if presence < l.cfg.GapThreshold {
			gapType = domain.GapThemeMissing
		}
		scores = append(scores, dimensionScore{
			dimension: domain.DimensionThematic,
			score:     presence,
			gapType:   gapType,
		})
	}

	return scores, nil
}

// themeScores computes the presence/coherence sub-scores for the thematic
// dimension: presence is the fraction of theme keywords found (case
// folded) in the beat's raw text, clamped to 1.0; coherence is 0.7 when
// theme_resonance was populated by the generator, else half of presence.
func themeScores(theme string, beat domain.StoryBeat) (presence, coherence float64) {
	words := strings.Fields(strings.ToLower(theme))
	if len(words) == 0 {
		return 1, 1
	}
	text := strings.ToLower(beat.RawText)
	found := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			found++
		}
	}
	presence = float64(found) / float64(len(words))
	if presence > 1 {
		presence = 1
	}
	if strings.TrimSpace(beat.ThemeResonance) != "" {
		coherence = 0.7
	} else {
		coherence = 0.5 * presence
	}
	return presence, coherence
}

func averageScore(scores []dimensionScore) float64 {
	if len(scores) == 0 {
		return 1
	}
	var sum float64
	for _, s := range scores {
		sum += s.score
	}
	return sum / float64(len(scores))
}

// identifyGaps emits one Gap per dimension scoring below gap_threshold,
// capped at max_gaps_per_beat and sorted ascending by score (worst first).
func (l *AnalyticalFeedbackLoop) identifyGaps(scores []dimensionScore, beatID string) []domain.Gap {
	threshold := l.cfg.GapThreshold
	if threshold <= 0 {
		threshold = 0.6
	}
	cap := l.cfg.MaxGapsPerBeat
	if cap <= 0 {
		cap = 3
	}

	var gaps []domain.Gap
	for _, s := range scores {
		if s.score >= threshold {
			continue
		}
		gap := domain.NewGap(
			fmt.Sprintf("%s:%s", beatID, s.dimension),
			s.gapType,
			s.dimension,
			s.score,
			1-s.score,
			beatID,
			fmt.Sprintf("%s dimension scored %.2f, below threshold %.2f", s.dimension, s.score, threshold),
		)
		gap.Evidence = s.evidence
		gaps = append(gaps, gap)
	}

	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Score < gaps[j].Score })
	if len(gaps) > cap {
		gaps = gaps[:cap]
	}
	return gaps
}

func clampQuality(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
