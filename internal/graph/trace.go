package graph

import (
	"go.uber.org/zap"
)

// EventType is the closed set of trace event types (spec §6). The
// orchestrator emits all of them except gap.remediation_completed and
// story.checkpoint, which are declared here but never emitted.
type EventType string

const (
	EventBeatGenerated           EventType = "beat.generated"
	EventBeatAnalyzed            EventType = "beat.analyzed"
	EventBeatEnriched            EventType = "beat.enriched"
	EventCharacterArcUpdated     EventType = "character.arc_updated"
	EventGapIdentified           EventType = "gap.identified"
	EventGapRemediationCompleted EventType = "gap.remediation_completed"
	EventNodeStarted             EventType = "graph.node_started"
	EventNodeCompleted           EventType = "graph.node_completed"
	EventStoryStarted            EventType = "story.started"
	EventStoryCompleted          EventType = "story.completed"
	EventStoryCheckpoint         EventType = "story.checkpoint"
)

// TraceEvent carries the identifiers that let a downstream collector
// correlate events from the same run.
type TraceEvent struct {
	Type      EventType
	TraceID   string
	SessionID string
	StoryID   string
	Fields    map[string]any
}

// TraceEmitter is the write-only, append-style sink the orchestrator
// reports to. It is assumed thread-safe by its implementer.
type TraceEmitter interface {
	Emit(event TraceEvent)
}

// NopTraceEmitter discards every event.
type NopTraceEmitter struct{}

func (NopTraceEmitter) Emit(TraceEvent) {}

// ZapTraceEmitter logs each trace event as a structured zap entry.
type ZapTraceEmitter struct {
	logger *zap.Logger
}

func NewZapTraceEmitter(logger *zap.Logger) *ZapTraceEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTraceEmitter{logger: logger}
}

func (e *ZapTraceEmitter) Emit(event TraceEvent) {
	fields := []zap.Field{
		zap.String("trace_id", event.TraceID),
		zap.String("session_id", event.SessionID),
		zap.String("story_id", event.StoryID),
	}
	for k, v := range event.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	e.logger.Info(string(event.Type), fields...)
}
