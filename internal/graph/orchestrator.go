package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clone-llm/internal/domain"
	"clone-llm/internal/narrative"
)

// generateOptionsShape is the node layer's view of the generator's option
// struct, kept as a type alias so internal/graph doesn't need its own copy
// of the same four fields.
type generateOptionsShape = narrative.GenerateOptions

// maxNodeExecutions bounds a single run at max_beats*(1+3)+4 node
// executions, after which runLoop aborts the run with an error. The bound
// counts every node execution: generate_beat and analyze_beat each run up
// to 1+3 times per beat, followed by should_continue, so a run in which
// many beats use their regenerations can reach the bound before output.
func maxNodeExecutions(maxBeats int) int {
	if maxBeats <= 0 {
		maxBeats = 10
	}
	return maxBeats*(1+3) + 4
}

// RunOptions seeds a single graph run.
type RunOptions struct {
	SessionID       string
	StoryID         string
	CharacterID     string
	Theme           string
	EmotionalTarget string
}

// Orchestrator is the graph's state machine runtime: a node registry plus
// the collaborators (generator, feedback loop, tracker) each node closes
// over. Per spec §5, one graph run owns its GraphState/NCPState exclusively
// and no locking is required across nodes.
type Orchestrator struct {
	generator  *narrative.Generator
	feedback   *narrative.AnalyticalFeedbackLoop
	tracker    *narrative.CharacterArcTracker
	checkpoint CheckpointStore
	tracer     TraceEmitter
	logger     *zap.Logger
	cfg        Config
	nodes      map[string]NodeFunc
}

// NewOrchestrator builds an orchestrator with the closed-but-extensible
// five-node registry (spec §4.5) already wired.
func NewOrchestrator(
	generator *narrative.Generator,
	feedback *narrative.AnalyticalFeedbackLoop,
	tracker *narrative.CharacterArcTracker,
	checkpoint CheckpointStore,
	tracer TraceEmitter,
	logger *zap.Logger,
	cfg Config,
) *Orchestrator {
	if checkpoint == nil {
		checkpoint = NopCheckpointStore{}
	}
	if tracer == nil {
		tracer = NopTraceEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		generator:  generator,
		feedback:   feedback,
		tracker:    tracker,
		checkpoint: checkpoint,
		tracer:     tracer,
		logger:     logger,
		cfg:        cfg,
		nodes:      make(map[string]NodeFunc),
	}

	o.AddNode(NodeNCPLoad, o.nodeNCPLoad)
	o.AddNode(NodeGenerateBeat, o.nodeGenerateBeat)
	o.AddNode(NodeAnalyzeBeat, o.nodeAnalyzeBeat)
	o.AddNode(NodeShouldContinue, o.nodeShouldContinue)
	o.AddNode(NodeOutput, o.nodeOutput)
	return o
}

// AddNode registers or overrides a node in the registry. An unknown
// next_node set by any node is always fatal at run time, even for nodes
// added this way.
func (o *Orchestrator) AddNode(id string, fn NodeFunc) {
	o.nodes[id] = fn
}

func (o *Orchestrator) newState(ctx context.Context, opts RunOptions, prompt string) *GraphState {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	storyID := opts.StoryID
	if storyID == "" {
		storyID = uuid.NewString()
	}
	traceID := uuid.NewString()

	state := newGraphState(sessionID, storyID, traceID)
	state.Theme = opts.Theme
	state.CharacterID = opts.CharacterID
	state.EmotionalTarget = opts.EmotionalTarget

	if loaded, err := o.checkpoint.Load(ctx, sessionID); err == nil && loaded != nil {
		state.NCP = loaded
	} else if state.Theme == "" {
		state.Theme = firstLine(prompt)
	}
	return state
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// Run executes the graph to completion and returns the final GraphState.
func (o *Orchestrator) Run(ctx context.Context, prompt string, opts RunOptions) (*GraphState, error) {
	state := o.newState(ctx, opts, prompt)
	ctx = narrative.WithStoryID(ctx, state.StoryID)
	o.emit(state, EventStoryStarted, map[string]any{"prompt": prompt})

	if err := o.runLoop(ctx, state, nil); err != nil {
		return state, err
	}
	return state, nil
}

// Stream executes the graph to completion, yielding each newly appended or
// replaced beat on beatsCh as soon as a node execution produces it (spec
// §4.5/§9's async-iterator equivalent). Consumers that buffer must treat a
// repeated beat_index as "last item replaced" per spec §5's ordering rule.
// The returned channels are closed when the run finishes; errCh receives at
// most one error.
func (o *Orchestrator) Stream(ctx context.Context, prompt string, opts RunOptions) (<-chan domain.StoryBeat, <-chan error) {
	beatsCh := make(chan domain.StoryBeat)
	errCh := make(chan error, 1)

	go func() {
		defer close(beatsCh)
		defer close(errCh)

		state := o.newState(ctx, opts, prompt)
		ctx = narrative.WithStoryID(ctx, state.StoryID)
		o.emit(state, EventStoryStarted, map[string]any{"prompt": prompt})

		onBeat := func(b domain.StoryBeat) {
			select {
			case beatsCh <- b:
			case <-ctx.Done():
			}
		}

		if err := o.runLoop(ctx, state, onBeat); err != nil {
			errCh <- err
		}
	}()

	return beatsCh, errCh
}

// runLoop drives the state machine from state.NextNode until a terminal
// node is reached, an unrecoverable node fails, or the execution bound is
// exceeded. onBeat, if non-nil, is invoked whenever the last beat in state
// changes (new index or in-place replacement).
func (o *Orchestrator) runLoop(ctx context.Context, state *GraphState, onBeat func(domain.StoryBeat)) error {
	lastBeatID, lastBeatIndex, lastQuality := "", -1, -1.0
	checkBeat := func() {
		if onBeat == nil {
			return
		}
		beat, ok := state.NCP.LastBeat()
		if !ok {
			return
		}
		if beat.BeatID != lastBeatID || beat.BeatIndex != lastBeatIndex || beat.QualityScore != lastQuality {
			lastBeatID, lastBeatIndex, lastQuality = beat.BeatID, beat.BeatIndex, beat.QualityScore
			onBeat(beat)
		}
	}

	limit := maxNodeExecutions(o.cfg.MaxBeats)
	for executions := 0; state.ShouldContinue && state.NextNode != ""; executions++ {
		if executions >= limit {
			o.logger.Error("graph exceeded node execution bound, aborting", zap.Int("limit", limit))
			state.ShouldContinue = false
			return fmt.Errorf("graph exceeded %d node executions without reaching a terminal node", limit)
		}

		select {
		case <-ctx.Done():
			state.NodeResults = append(state.NodeResults, NodeResult{
				NodeID: state.NextNode, Status: StatusFailed, Error: ctx.Err().Error(), Timestamp: time.Now().UTC(),
			})
			state.ShouldContinue = false
			return ctx.Err()
		default:
		}

		nodeID := state.NextNode
		fn, ok := o.nodes[nodeID]
		if !ok {
			o.logger.Error("unknown graph node id, terminating run", zap.String("node_id", nodeID))
			state.NodeResults = append(state.NodeResults, NodeResult{
				NodeID: nodeID, Status: StatusFailed, Error: "unknown node id", Timestamp: time.Now().UTC(),
			})
			state.ShouldContinue = false
			return fmt.Errorf("unknown graph node id %q", nodeID)
		}

		o.emit(state, EventNodeStarted, map[string]any{"node_id": nodeID})
		start := time.Now()
		err := fn(ctx, o, state)
		o.recordResult(state, nodeID, start, err)
		o.emit(state, EventNodeCompleted, map[string]any{"node_id": nodeID, "error": errString(err)})

		_ = o.checkpoint.Save(ctx, state.SessionID, state.NCP)
		checkBeat()

		if err != nil {
			if nodeID == NodeNCPLoad || nodeID == NodeGenerateBeat {
				state.ShouldContinue = false
				return fmt.Errorf("node %s: %w", nodeID, err)
			}
			// Analyzer/enricher-class failures are isolated: the node already
			// absorbed the error into NCPState and chose NextNode itself.
		}
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
