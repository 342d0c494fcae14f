package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/communityhub/member-qa/internal/core/domain"
	"github.com/communityhub/member-qa/internal/core/ports"
)

const defaultOverfetchFloor = 20

// RetrievalEngine narrows a vector similarity search to one member's
// messages and assembles the retrieved snippets into an ordered context.
type RetrievalEngine struct {
	embedder       ports.Embedder
	recognizer     ports.EntityRecognizer
	searcher       ports.VectorSearcher
	topK           int
	overfetchFloor int
	logger         *slog.Logger
}

func NewRetrievalEngine(
	embedder ports.Embedder,
	recognizer ports.EntityRecognizer,
	searcher ports.VectorSearcher,
	topK int,
	overfetchFloor int,
	logger *slog.Logger,
) *RetrievalEngine {
	if topK <= 0 {
		topK = 5
	}
	if overfetchFloor <= 0 {
		overfetchFloor = defaultOverfetchFloor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalEngine{
		embedder:       embedder,
		recognizer:     recognizer,
		searcher:       searcher,
		topK:           topK,
		overfetchFloor: overfetchFloor,
		logger:         logger,
	}
}

func (e *RetrievalEngine) TopK() int { return e.topK }

// ParseQuestion normalizes the raw question and extracts a candidate
// member name. The extractor sees a copy with leading punctuation
// stripped; the normalized question itself keeps it.
func (e *RetrievalEngine) ParseQuestion(ctx context.Context, question string) (string, string, error) {
	normalized := strings.TrimSpace(domain.NormalizeQuestion(question))
	if normalized == "" {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "parse question", fmt.Errorf("question must not be empty"))
	}

	nerReady := domain.StripLeadingPunctuation(normalized)
	candidate, found, err := e.recognizer.FirstPerson(ctx, nerReady)
	if err != nil {
		return "", "", fmt.Errorf("extract person entity: %w", err)
	}
	if !found {
		e.logger.Debug("no person entity identified", "question", normalized)
		return normalized, "", nil
	}
	return normalized, candidate, nil
}

// Retrieve runs the full retrieval pass: parse, filter, search, assemble.
// targetOverride takes precedence over the extracted candidate.
func (e *RetrievalEngine) Retrieve(ctx context.Context, question, targetOverride string) (*domain.RetrievalResult, error) {
	normalized, extracted, err := e.ParseQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	targetName := targetOverride
	if targetName == "" {
		targetName = extracted
	}
	return e.retrieveParsed(ctx, normalized, targetName)
}

// retrieveParsed is the post-extraction half of Retrieve, for callers
// that already parsed the question.
func (e *RetrievalEngine) retrieveParsed(ctx context.Context, normalized, targetName string) (*domain.RetrievalResult, error) {
	queryVector, err := e.embedder.EmbedQuery(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	filter := domain.BuildMetadataFilter(targetName)
	e.logger.Debug("query filter built", "target", targetName, "filtered", filter != nil)

	limit := e.topK
	if limit < e.overfetchFloor {
		limit = e.overfetchFloor
	}

	matches, err := e.searcher.Query(ctx, queryVector, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	contextBlock, snippets := AssembleContext(matches, e.topK)
	e.logger.Debug("context assembled", "matches", len(matches), "snippets", len(snippets), "context_chars", len(contextBlock))

	return &domain.RetrievalResult{
		Question:       normalized,
		Context:        contextBlock,
		Snippets:       snippets,
		TargetName:     targetName,
		MetadataFilter: filter,
		TopK:           e.topK,
	}, nil
}
