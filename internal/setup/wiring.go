package setup

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/medbench/medbench/internal/aggregator"
	"github.com/medbench/medbench/internal/classifier"
	"github.com/medbench/medbench/internal/config"
	"github.com/medbench/medbench/internal/gateway"
	"github.com/medbench/medbench/internal/llm"
	"github.com/medbench/medbench/internal/llm/bedrock"
	"github.com/medbench/medbench/internal/llm/gpt"
	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/orchestrator"
	"github.com/medbench/medbench/internal/reference"
	"github.com/medbench/medbench/internal/scorer"
	"github.com/medbench/medbench/internal/store"
	"github.com/rs/zerolog"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	ScoringModelID  string
	OpenAIKey       string
	OpenAIModelID   string
	DeepSeekKey     string
	DeepSeekModelID string
	DeepSeekBaseURL string
	DefaultNumRuns  int
	ReferenceDir    string

	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string
}

type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Gateway      *gateway.Gateway
	Store        store.Store
	Logger       *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		ScoringModelID:  getEnv("SCORING_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", "gpt-5"),
		DeepSeekKey:     getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekModelID: getEnv("DEEPSEEK_MODEL_ID", "deepseek-chat"),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DefaultNumRuns:  getEnvInt("DEFAULT_NUM_RUNS", 5),
		ReferenceDir:    getEnv("REFERENCE_DATA_DIR", "data"),

		DatabaseHost:     getEnv("DATABASE_HOST", ""),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseUser:     getEnv("DATABASE_USER", "medbench"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", ""),
		DatabaseName:     getEnv("DATABASE_NAME", "medbench"),
		DatabaseSSLMode:  getEnv("DATABASE_SSL_MODE", "disable"),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	adapters, err := createAdapters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ScoringModelID == "" {
		return nil, fmt.Errorf("SCORING_MODEL_ID is required")
	}
	scoringClient, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ScoringModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring client: %w", err)
	}

	gw, err := gateway.New(adapters, scoringClient, logger)
	if err != nil {
		return nil, err
	}

	cls := classifier.New(gw.ScoringClient(), cfg.DefaultNumRuns, logger)

	scoringCfg, err := config.LoadScoringConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring config: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	refs := reference.Load(cfg.ReferenceDir, rng, logger)

	sc := scorer.New(gw.ScoringClient(), refs, *scoringCfg, logger)
	agg := aggregator.New(logger)

	st, err := createStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(gw, cls, sc, agg, st, logger)

	return &Dependencies{
		Orchestrator: orch,
		Gateway:      gw,
		Store:        st,
		Logger:       logger,
	}, nil
}

// createAdapters builds one adapter per configured vendor. A vendor with no
// credentials is skipped; the gateway rejects an empty set.
func createAdapters(ctx context.Context, cfg *Config) (map[models.ModelID]llm.Client, error) {
	adapters := make(map[models.ModelID]llm.Client)

	if cfg.ClaudeModelID != "" {
		client, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
		if err != nil {
			return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
		}
		adapters[models.ModelClaude] = client
	}

	if cfg.OpenAIKey != "" {
		client, err := gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		adapters[models.ModelGPT5] = client
	}

	if cfg.DeepSeekKey != "" {
		client, err := gpt.NewCompatibleClient(cfg.DeepSeekKey, cfg.DeepSeekModelID, cfg.DeepSeekBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create DeepSeek client: %w", err)
		}
		adapters[models.ModelDeepSeek] = client
	}

	return adapters, nil
}

func createStore(ctx context.Context, cfg *Config, logger *zerolog.Logger) (store.Store, error) {
	if cfg.DatabaseHost == "" {
		logger.Warn().Msg("DATABASE_HOST not set, using in-memory store")
		return store.NewMemoryStore(), nil
	}

	pg, err := store.NewPostgresStore(ctx, store.PostgresConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("host", cfg.DatabaseHost).Str("database", cfg.DatabaseName).Msg("Postgres store connected")
	return pg, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}
