package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clone-llm/cmd/storyrunner/httpapi"
	"clone-llm/internal/config"
	"clone-llm/internal/db"
	"clone-llm/internal/graph"
	"clone-llm/internal/llm"
	"clone-llm/internal/narrative"
	"clone-llm/internal/repository"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var llmClient llm.LLMClient
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, nil)
	} else {
		logger.Warn("LLM_API_KEY not set, running against a mock client")
		llmClient = &llm.MockClient{Response: mockBeatResponse}
	}

	tracker := narrative.NewCharacterArcTracker(nil)
	generator := narrative.NewGenerator(llmClient, tracker, narrative.GeneratorConfig{
		ContextDepth:   cfg.CharacterContextDepth,
		CeremonialMode: cfg.CeremonialMode,
	})
	enricher := narrative.NewEmotionalEnricher(llmClient, narrative.EnricherConfig{
		Threshold:       cfg.EmotionalQualityThreshold,
		MaxIterations:   cfg.EnrichmentMaxIterations,
		MinImprovement:  cfg.EnrichmentMinImprovement,
		LengthTolerance: cfg.PreserveLengthTolerance,
	})
	feedback := narrative.NewAnalyticalFeedbackLoop(enricher, tracker, narrative.FeedbackConfig{
		GapThreshold:   cfg.GapThreshold,
		MaxGapsPerBeat: cfg.MaxGapsPerBeat,
		AutoRemediate:  cfg.AutoRemediate,
	}, logger)

	checkpoint := graph.CheckpointStore(graph.NopCheckpointStore{})
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, checkpointing disabled", zap.Error(err))
		} else {
			checkpoint = graph.NewRedisCheckpointStore(redisClient, 24*time.Hour)
		}
		cancel()
	}

	tracer := graph.TraceEmitter(graph.NewZapTraceEmitter(logger))

	orchestrator := graph.NewOrchestrator(generator, feedback, tracker, checkpoint, tracer, logger, graph.ConfigFromEnv(cfg))

	var (
		beatRepo repository.BeatRepository
		arcRepo  repository.CharacterArcRepository
	)
	if cfg.DatabaseURL != "" {
		if pool, err := db.NewPool(ctx, cfg); err != nil {
			logger.Warn("db connect failed, beat/arc persistence disabled", zap.Error(err))
		} else {
			defer pool.Close()
			pgBeatRepo := repository.NewPgBeatRepository(pool)
			beatRepo = pgBeatRepo
			arcRepo = repository.NewPgCharacterArcRepository(pool)

			if embedder, ok := llmClient.(llm.EmbeddingClient); ok {
				enricher.SetSimilarBeatRecall(&narrative.SimilarBeatRecall{
					Embedder:   embedder,
					Repository: pgBeatRepo,
					TopK:       3,
				})
			} else {
				logger.Info("llm client does not support embeddings, similar-beat recall disabled")
			}
		}
	}

	router := httpapi.NewRouter(logger, orchestrator, beatRepo, arcRepo)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting storyrunner", zap.String("port", cfg.HTTPPort))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

const mockBeatResponse = `<dialogue>None</dialogue>
<action>She steadies her breath and steps toward the door.</action>
<internal>Whatever is on the other side, I can't be the person who didn't look.</internal>
<emotional_tone>determination</emotional_tone>
<theme_resonance>facing fear is the first act of courage</theme_resonance>
`
