package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clone-llm/internal/domain"
	"clone-llm/internal/narrative"
)

// Closed set of node ids the orchestrator ships with (spec §4.5). add_node
// can extend the registry, but an unknown next_node is always fatal.
const (
	NodeNCPLoad        = "ncp_load"
	NodeGenerateBeat   = "generate_beat"
	NodeAnalyzeBeat    = "analyze_beat"
	NodeShouldContinue = "should_continue"
	NodeOutput         = "output"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// NodeResult records one node execution for later diagnosis.
type NodeResult struct {
	NodeID     string    `json:"node_id"`
	Status     string    `json:"status"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// GraphState is the orchestrator's run-scoped state: the NCPState it
// carries, the append log of node executions, and state-machine bookkeeping
// that never needs to survive a checkpoint/resume boundary.
type GraphState struct {
	NCP             *domain.NCPState
	SessionID       string
	StoryID         string
	TraceID         string
	NextNode        string
	ShouldContinue  bool
	NodeResults     []NodeResult
	Theme           string
	CharacterID     string
	EmotionalTarget string

	// regenerationAttempts counts, per beat index, how many times
	// analyze_beat has routed back to generate_beat for that index. It
	// implements the enrichments_applied<3 regeneration bound without
	// requiring a from-scratch StoryBeat to carry history it no longer has.
	regenerationAttempts map[int]int

	// regenerateSlot is the explicit signal from analyze_beat to
	// generate_beat: when >= 0, the next generated beat replaces that beat
	// index in place rather than being appended. It is consumed (reset to
	// -1) by the generate node on every execution, so it can never leak
	// into a later, unrelated fresh-append call the way deriving the
	// target from current_beat_index-1 did.
	regenerateSlot int
}

func newGraphState(sessionID, storyID, traceID string) *GraphState {
	return &GraphState{
		NCP:                  domain.NewNCPState(),
		SessionID:            sessionID,
		StoryID:              storyID,
		TraceID:              traceID,
		NextNode:             NodeNCPLoad,
		ShouldContinue:       true,
		regenerationAttempts: make(map[int]int),
		regenerateSlot:       -1,
	}
}

// NodeFunc implements one graph node. It mutates state in place and sets
// state.NextNode before returning; a returned error marks the node FAILED
// and is fatal only for ncp_load and generate_beat (spec §7).
type NodeFunc func(ctx context.Context, o *Orchestrator, state *GraphState) error

func (o *Orchestrator) nodeNCPLoad(_ context.Context, _ *Orchestrator, state *GraphState) error {
	if state.NCP == nil {
		state.NCP = domain.NewNCPState()
	}
	if state.Theme != "" && state.NCP.ActiveTheme == "" {
		state.NCP.ActiveTheme = state.Theme
	}
	if state.CharacterID != "" && state.NCP.ActivePerspective == "" {
		state.NCP.ActivePerspective = state.CharacterID
	}
	state.NextNode = NodeGenerateBeat
	return nil
}

func (o *Orchestrator) nodeGenerateBeat(ctx context.Context, _ *Orchestrator, state *GraphState) error {
	opts := narrativeGenerateOptions(state)
	beat, err := o.generator.GenerateBeat(ctx, state.NCP, opts)
	if err != nil {
		return fmt.Errorf("generate beat: %w", err)
	}

	// analyze_beat sets regenerateSlot explicitly when routing back here to
	// replace a low-quality beat in place; any other arrival (the first
	// beat, or a fresh beat after should_continue) appends instead. The
	// slot is consumed immediately so it can never be mistaken for a
	// signal belonging to the next, unrelated generate_beat call.
	if state.regenerateSlot >= 0 {
		slot := state.regenerateSlot
		state.regenerateSlot = -1
		beat.BeatIndex = slot
		state.NCP.ReplaceLastBeat(beat)
	} else {
		if err := o.generator.ApplyBeat(state.NCP, beat); err != nil {
			return fmt.Errorf("apply beat: %w", err)
		}
	}

	o.syncCharacterState(state, beat.CharacterID)

	o.emit(state, EventBeatGenerated, map[string]any{"beat_id": beat.BeatID, "beat_index": beat.BeatIndex})
	state.NextNode = NodeAnalyzeBeat
	return nil
}

// syncCharacterState mirrors the tracker's authoritative CharacterArcState
// into NCPState.character_states so callers inspecting the returned
// NCPState (or its JSON checkpoint) see the same arc data the generator's
// next prompt will be built from.
func (o *Orchestrator) syncCharacterState(state *GraphState, characterID string) {
	if characterID == "" {
		return
	}
	if c, ok := o.tracker.Character(characterID); ok {
		if state.NCP.CharacterStates == nil {
			state.NCP.CharacterStates = make(map[string]*domain.CharacterArcState)
		}
		state.NCP.CharacterStates[characterID] = c
		o.emit(state, EventCharacterArcUpdated, map[string]any{"character_id": characterID, "arc_position": c.ArcPosition})
	}
}

func (o *Orchestrator) nodeAnalyzeBeat(ctx context.Context, _ *Orchestrator, state *GraphState) error {
	beat, ok := state.NCP.LastBeat()
	if !ok {
		return fmt.Errorf("analyze beat: no beats in state")
	}

	analyzed, gaps, err := o.feedback.ProcessBeatWithAnalysis(ctx, beat, state.NCP.ActiveTheme)
	if err != nil {
		o.emit(state, EventBeatAnalyzed, map[string]any{"beat_id": beat.BeatID, "error": err.Error()})
		return nil
	}
	state.NCP.ReplaceLastBeat(analyzed)
	state.NCP.IdentifiedGaps = append(state.NCP.IdentifiedGaps, gaps...)
	state.NCP.EnrichmentCount += len(analyzed.EnrichmentsApplied)

	o.emit(state, EventBeatAnalyzed, map[string]any{"beat_id": analyzed.BeatID, "quality_score": analyzed.QualityScore})
	for _, g := range gaps {
		o.emit(state, EventGapIdentified, map[string]any{"gap_id": g.GapID, "gap_type": string(g.GapType)})
	}
	if len(analyzed.EnrichmentsApplied) > 0 {
		o.emit(state, EventBeatEnriched, map[string]any{"beat_id": analyzed.BeatID})
	}

	switch {
	case state.NCP.CurrentBeatIndex >= o.cfg.MaxBeats:
		state.NextNode = NodeOutput
	case analyzed.QualityScore < 0.5 && state.regenerationAttempts[analyzed.BeatIndex] < 3:
		state.regenerationAttempts[analyzed.BeatIndex]++
		state.regenerateSlot = analyzed.BeatIndex
		state.NextNode = NodeGenerateBeat
	default:
		state.NextNode = NodeShouldContinue
	}
	return nil
}

var terminalTones = map[string]bool{"resolution": true, "conclusion": true, "ending": true}

func (o *Orchestrator) nodeShouldContinue(_ context.Context, _ *Orchestrator, state *GraphState) error {
	minQuality := o.cfg.MinQuality

	if state.NCP.CurrentBeatIndex >= o.cfg.MaxBeats {
		state.NextNode = NodeOutput
		return nil
	}
	if beat, ok := state.NCP.LastBeat(); ok {
		if terminalTones[beat.EmotionalTone] && beat.QualityScore >= minQuality {
			state.NextNode = NodeOutput
			return nil
		}
	}
	state.NextNode = NodeGenerateBeat
	return nil
}

func (o *Orchestrator) nodeOutput(_ context.Context, _ *Orchestrator, state *GraphState) error {
	state.ShouldContinue = false
	state.NextNode = ""
	o.emit(state, EventStoryCompleted, map[string]any{"beats": len(state.NCP.Beats)})
	return nil
}

func narrativeGenerateOptions(state *GraphState) generateOptionsShape {
	return generateOptionsShape{
		CharacterID:     state.CharacterID,
		Theme:           state.Theme,
		EmotionalTarget: state.EmotionalTarget,
	}
}

func (o *Orchestrator) emit(state *GraphState, eventType EventType, fields map[string]any) {
	o.tracer.Emit(TraceEvent{
		Type:      eventType,
		TraceID:   state.TraceID,
		SessionID: state.SessionID,
		StoryID:   state.StoryID,
		Fields:    fields,
	})
}

func (o *Orchestrator) recordResult(state *GraphState, nodeID string, start time.Time, err error) {
	result := NodeResult{
		NodeID:     nodeID,
		Status:     StatusSuccess,
		DurationMs: time.Since(start).Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		o.logger.Error("node failed", zap.String("node_id", nodeID), zap.Error(err))
	}
	state.NodeResults = append(state.NodeResults, result)
}
