package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/communityhub/member-qa/internal/config"
	"github.com/communityhub/member-qa/internal/core/domain"
	"github.com/communityhub/member-qa/internal/core/usecase"
	"github.com/communityhub/member-qa/internal/infrastructure/embedding/openai"
	"github.com/communityhub/member-qa/internal/infrastructure/llm/groq"
	"github.com/communityhub/member-qa/internal/infrastructure/ner/spacy"
	"github.com/communityhub/member-qa/internal/infrastructure/prompts"
	"github.com/communityhub/member-qa/internal/infrastructure/registry/file"
	"github.com/communityhub/member-qa/internal/infrastructure/resilience"
	"github.com/communityhub/member-qa/internal/infrastructure/vector/pinecone"
	"github.com/communityhub/member-qa/internal/observability/metrics"
)

// App wires the answering pipeline: extraction, resolution, retrieval
// and generation, plus server metrics.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	QA       *usecase.QAService
	Registry *domain.MemberRegistry
	Metrics  *metrics.ServerMetrics
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, service string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	recognizer, err := spacy.New(cfg.NERServiceURL)
	if err != nil {
		return nil, fmt.Errorf("init ner client: %w", err)
	}
	embedder, err := openai.New(cfg.EmbeddingURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}
	searcher, err := pinecone.New(cfg.PineconeIndexURL, cfg.PineconeAPIKey, executor)
	if err != nil {
		return nil, fmt.Errorf("init vector client: %w", err)
	}
	generator, err := groq.New(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, executor)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	members, err := file.NewSource(cfg.KnownNamesPath, logger).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load member registry: %w", err)
	}
	registry := domain.NewMemberRegistry(members)
	logger.Info("member registry loaded", "members", registry.Len())

	engine := usecase.NewRetrievalEngine(embedder, recognizer, searcher, cfg.QATopK, cfg.QAOverfetchFloor, logger)
	qa := usecase.NewQAService(
		engine,
		registry,
		generator,
		prompts.Load(cfg.SystemPromptPath, cfg.UserPromptPath, logger),
		logger,
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		QA:       qa,
		Registry: registry,
		Metrics:  metrics.NewServerMetrics(service),
	}, nil
}
