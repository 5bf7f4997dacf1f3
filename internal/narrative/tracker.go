package narrative

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"clone-llm/internal/domain"
)

// ConsistencyResult is the outcome of checking a beat against a character's
// established arc.
type ConsistencyResult struct {
	IsConsistent bool
	Score        float64
	Issues       []string
}

// ConsistencyEvaluator is the pluggable hook for character-consistency
// checks. The built-in tracker ships DefaultConsistencyEvaluator, which
// always reports a consistent beat; callers wanting real drift detection
// supply their own implementation.
type ConsistencyEvaluator interface {
	Evaluate(beat domain.StoryBeat, state *domain.CharacterArcState) ConsistencyResult
}

// ConsistencyEvaluatorFunc adapts a function to a ConsistencyEvaluator.
type ConsistencyEvaluatorFunc func(beat domain.StoryBeat, state *domain.CharacterArcState) ConsistencyResult

func (f ConsistencyEvaluatorFunc) Evaluate(beat domain.StoryBeat, state *domain.CharacterArcState) ConsistencyResult {
	return f(beat, state)
}

// DefaultConsistencyEvaluator is the unextended hook: every beat is
// consistent. The real check is left pluggable.
var DefaultConsistencyEvaluator = ConsistencyEvaluatorFunc(func(domain.StoryBeat, *domain.CharacterArcState) ConsistencyResult {
	return ConsistencyResult{IsConsistent: true, Score: 1.0}
})

// CharacterArcTracker maintains per-character arc state across a story run.
// arc_points are the single source of truth for a character's progress;
// arc_position is always derived from them, never set directly.
type CharacterArcTracker struct {
	mu         sync.Mutex
	characters map[string]*domain.CharacterArcState
	evaluator  ConsistencyEvaluator
}

// NewCharacterArcTracker builds an empty tracker. A nil evaluator falls back
// to DefaultConsistencyEvaluator.
func NewCharacterArcTracker(evaluator ConsistencyEvaluator) *CharacterArcTracker {
	if evaluator == nil {
		evaluator = DefaultConsistencyEvaluator
	}
	return &CharacterArcTracker{
		characters: make(map[string]*domain.CharacterArcState),
		evaluator:  evaluator,
	}
}

// CharacterOption customizes a character at initialization time.
type CharacterOption func(*domain.CharacterArcState)

func WithWound(wound string) CharacterOption {
	return func(c *domain.CharacterArcState) { c.Wound = wound }
}

func WithDesire(desire string) CharacterOption {
	return func(c *domain.CharacterArcState) { c.Desire = desire }
}

func WithArcDescription(desc string) CharacterOption {
	return func(c *domain.CharacterArcState) { c.ArcDescription = desc }
}

func WithRole(role domain.CharacterRole) CharacterOption {
	return func(c *domain.CharacterArcState) { c.Role = role }
}

// InitializeCharacter idempotently creates a character's arc state. Calling
// it again for the same playerID is a no-op returning the existing state.
func (t *CharacterArcTracker) InitializeCharacter(playerID, name string, opts ...CharacterOption) *domain.CharacterArcState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.characters[playerID]; ok {
		return existing
	}

	c := &domain.CharacterArcState{
		PlayerID:        playerID,
		Name:            name,
		RelationshipMap: make(map[string]domain.RelationshipState),
	}
	for _, opt := range opts {
		opt(c)
	}
	t.characters[playerID] = c
	return c
}

// RecordBeatImpact appends an ArcPoint derived from the beat to the named
// character's arc. Returns nil, nil if the character is unknown -- the
// tracker never raises on a missing character.
func (t *CharacterArcTracker) RecordBeatImpact(beat domain.StoryBeat, playerID string) (*domain.ArcPoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.characters[playerID]
	if !ok {
		return nil, nil
	}

	point := domain.ArcPoint{
		BeatID:          beat.BeatID,
		BeatIndex:       beat.BeatIndex,
		Timestamp:       time.Now().UTC(),
		EmotionalState:  beat.EmotionalTone,
		ArcDirection:    classifyArcDirection(beat.EmotionalTone),
		ImpactMagnitude: defaultImpactMagnitude,
	}
	c.AddArcPoint(point)
	return &point, nil
}

// GetArcContext returns a deterministic prompt-ready string describing a
// character's backstory, current state, and the last `depth` arc points.
func (t *CharacterArcTracker) GetArcContext(playerID string, depth int) (string, bool) {
	t.mu.Lock()
	c, ok := t.characters[playerID]
	t.mu.Unlock()
	if !ok {
		return "", false
	}
	if depth <= 0 {
		depth = 3
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Character: %s\n", c.Name))
	if c.Wound != "" {
		sb.WriteString(fmt.Sprintf("Wound: %s\n", c.Wound))
	}
	if c.Desire != "" {
		sb.WriteString(fmt.Sprintf("Desire: %s\n", c.Desire))
	}
	sb.WriteString(fmt.Sprintf("Current emotional state: %s\n", c.CurrentEmotionalState))
	sb.WriteString(fmt.Sprintf("Arc position: %.0f%%\n", c.ArcPosition*100))
	if len(c.ActiveGoals) > 0 {
		sb.WriteString(fmt.Sprintf("Active goals: %s\n", strings.Join(c.ActiveGoals, ", ")))
	}
	if len(c.ActiveFears) > 0 {
		sb.WriteString(fmt.Sprintf("Active fears: %s\n", strings.Join(c.ActiveFears, ", ")))
	}

	points := c.ArcPoints
	if len(points) > depth {
		points = points[len(points)-depth:]
	}
	if len(points) > 0 {
		sb.WriteString("Recent arc points:\n")
		for _, p := range points {
			sb.WriteString(fmt.Sprintf("[%s] %s (impact: %.2f)\n", p.ArcDirection, p.EmotionalState, p.ImpactMagnitude))
		}
	}
	return sb.String(), true
}

// ValidateConsistency runs the configured ConsistencyEvaluator against a
// beat. Unknown characters are reported as consistent by construction --
// there is nothing to contradict.
func (t *CharacterArcTracker) ValidateConsistency(beat domain.StoryBeat, playerID string) ConsistencyResult {
	t.mu.Lock()
	c, ok := t.characters[playerID]
	t.mu.Unlock()
	if !ok {
		return ConsistencyResult{IsConsistent: true, Score: 1.0}
	}
	return t.evaluator.Evaluate(beat, c)
}

// Character returns the tracked state for a character, if any.
func (t *CharacterArcTracker) Character(playerID string) (*domain.CharacterArcState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.characters[playerID]
	return c, ok
}
