package config

import "github.com/caarlos0/env/v10"

// Config centralizes the engine's environment-driven configuration,
// extending the graph orchestrator's tunable knobs (spec §4.5 "Config
// knobs") on top of the connection settings shared by every driver.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-5.1"`

	MaxBeats                  int     `env:"MAX_BEATS" envDefault:"10"`
	MinQuality                float64 `env:"MIN_QUALITY" envDefault:"0.6"`
	GapThreshold              float64 `env:"GAP_THRESHOLD" envDefault:"0.6"`
	MaxGapsPerBeat            int     `env:"MAX_GAPS_PER_BEAT" envDefault:"3"`
	AutoRemediate             bool    `env:"AUTO_REMEDIATE" envDefault:"true"`
	EmotionalQualityThreshold float64 `env:"EMOTIONAL_QUALITY_THRESHOLD" envDefault:"0.75"`
	EnrichmentMaxIterations   int     `env:"ENRICHMENT_MAX_ITERATIONS" envDefault:"3"`
	EnrichmentMinImprovement  float64 `env:"ENRICHMENT_MIN_IMPROVEMENT" envDefault:"0.05"`
	PreserveLengthTolerance   float64 `env:"PRESERVE_LENGTH_TOLERANCE" envDefault:"0.20"`
	CharacterContextDepth     int     `env:"CHARACTER_CONTEXT_DEPTH" envDefault:"3"`
	NCPAwareGeneration        bool    `env:"NCP_AWARE_GENERATION" envDefault:"true"`
	CeremonialMode            bool    `env:"CEREMONIAL_MODE" envDefault:"false"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
