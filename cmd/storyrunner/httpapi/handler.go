package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"clone-llm/internal/graph"
	"clone-llm/internal/repository"
)

// StoryHandler holds the dependencies for the story-generation endpoints.
// beatRepo/arcRepo are optional long-term archives (nil when DATABASE_URL
// isn't configured); the graph itself never depends on them, matching
// spec §1's treatment of persistence as an external collaborator.
type StoryHandler struct {
	logger       *zap.Logger
	orchestrator *graph.Orchestrator
	beatRepo     repository.BeatRepository
	arcRepo      repository.CharacterArcRepository
}

func NewStoryHandler(logger *zap.Logger, orchestrator *graph.Orchestrator, beatRepo repository.BeatRepository, arcRepo repository.CharacterArcRepository) *StoryHandler {
	return &StoryHandler{logger: logger, orchestrator: orchestrator, beatRepo: beatRepo, arcRepo: arcRepo}
}

// archive persists the finished run's beats and character arcs in the
// background, best-effort, the same "fire and forget after responding"
// shape the teacher's ChatHandler uses for its post-message analysis pass.
func (h *StoryHandler) archive(state *graph.GraphState) {
	if h.beatRepo == nil && h.arcRepo == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if h.beatRepo != nil {
			for _, beat := range state.NCP.Beats {
				if err := h.beatRepo.Create(ctx, state.StoryID, beat, pgvector.NewVector(nil)); err != nil {
					h.logger.Warn("archive beat failed", zap.Error(err), zap.String("beat_id", beat.BeatID))
				}
			}
		}
		if h.arcRepo != nil {
			for _, c := range state.NCP.CharacterStates {
				if err := h.arcRepo.Upsert(ctx, state.StoryID, c); err != nil {
					h.logger.Warn("archive character arc failed", zap.Error(err), zap.String("player_id", c.PlayerID))
				}
			}
		}
	}()
}

type generateRequest struct {
	Prompt          string `json:"prompt" binding:"required"`
	SessionID       string `json:"session_id"`
	StoryID         string `json:"story_id"`
	CharacterID     string `json:"character_id"`
	Theme           string `json:"theme"`
	EmotionalTarget string `json:"emotional_target"`
}

// Generate handles POST /stories/generate: runs the graph to completion and
// returns the final beats plus node_results for diagnosis.
func (h *StoryHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid generate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	state, err := h.orchestrator.Run(c.Request.Context(), req.Prompt, graph.RunOptions{
		SessionID:       req.SessionID,
		StoryID:         req.StoryID,
		CharacterID:     req.CharacterID,
		Theme:           req.Theme,
		EmotionalTarget: req.EmotionalTarget,
	})
	if err != nil {
		h.logger.Error("story run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        err.Error(),
			"node_results": state.NodeResults,
			"ncp":          state.NCP,
		})
		return
	}

	h.archive(state)

	c.JSON(http.StatusOK, gin.H{
		"session_id":   state.SessionID,
		"story_id":     state.StoryID,
		"beats":        state.NCP.Beats,
		"node_results": state.NodeResults,
	})
}

// Stream handles GET /stories/:id/stream: runs the graph, emitting each
// newly appended or replaced beat as a server-sent event.
func (h *StoryHandler) Stream(c *gin.Context) {
	prompt := c.Query("prompt")
	theme := c.Query("theme")

	beatsCh, errCh := h.orchestrator.Stream(c.Request.Context(), prompt, graph.RunOptions{
		StoryID: c.Param("id"),
		Theme:   theme,
	})

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	for beatsCh != nil || errCh != nil {
		select {
		case beat, ok := <-beatsCh:
			if !ok {
				beatsCh = nil
				continue
			}
			fmt.Fprintf(c.Writer, "event: beat\ndata: {\"beat_id\":%q,\"beat_index\":%d,\"quality_score\":%f}\n\n",
				beat.BeatID, beat.BeatIndex, beat.QualityScore)
			c.Writer.Flush()
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				h.logger.Warn("story stream ended with error", zap.Error(err))
				fmt.Fprintf(c.Writer, "event: error\ndata: %q\n\n", err.Error())
				c.Writer.Flush()
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}
