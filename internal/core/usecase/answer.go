package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/communityhub/member-qa/internal/core/domain"
	"github.com/communityhub/member-qa/internal/core/ports"
)

const (
	answerMarker           = "answer:"
	activityPreviewLimit   = 160
	noContextPlaceholder   = "No relevant context was retrieved."
	unspecifiedMemberLabel = "Name not explicitly mentioned; assume the member in the question."
	missingTimestampLabel  = "timestamp not provided"
	noActivityLabel        = "No activity found."
)

// Prompts carries the generation templates. UserTemplate supports the
// placeholders {member_name}, {latest_activity}, {snippet_count},
// {context} and {question}.
type Prompts struct {
	System       string
	UserTemplate string
}

// QAService orchestrates name resolution, retrieval and generation for a
// single question.
type QAService struct {
	engine    *RetrievalEngine
	registry  *domain.MemberRegistry
	generator ports.AnswerGenerator
	prompts   Prompts
	logger    *slog.Logger
}

func NewQAService(
	engine *RetrievalEngine,
	registry *domain.MemberRegistry,
	generator ports.AnswerGenerator,
	prompts Prompts,
	logger *slog.Logger,
) *QAService {
	if registry == nil {
		registry = domain.NewMemberRegistry(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QAService{
		engine:    engine,
		registry:  registry,
		generator: generator,
		prompts:   prompts,
		logger:    logger,
	}
}

// Answer resolves the member referenced by the question, retrieves their
// messages and generates the final answer. An unresolved member name
// short-circuits with the suggestion message before any retrieval or
// generation call.
func (s *QAService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	normalized, candidate, err := s.engine.ParseQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	resolution := s.registry.Resolve(candidate)
	if resolution.Unknown() {
		s.logger.Info("member name not resolved", "candidate", candidate, "suggestions", len(resolution.Suggestions))
		return &domain.Answer{Text: resolution.Message, Unresolved: true}, nil
	}

	retrieval, err := s.engine.retrieveParsed(ctx, normalized, resolution.Filter)
	if err != nil {
		return nil, err
	}
	if resolution.DisplayName != "" {
		retrieval.TargetName = resolution.DisplayName
	}

	userContent := s.renderUserContent(retrieval)
	s.logger.Debug("generation prompt rendered", "chars", len(userContent))

	raw, err := s.generator.Complete(ctx, s.prompts.System, userContent)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Info("answer generated", "question", retrieval.Question, "snippets", len(retrieval.Snippets))
	return &domain.Answer{
		Text:       ExtractFinalAnswer(raw),
		MemberName: retrieval.TargetName,
		Snippets:   retrieval.Snippets,
	}, nil
}

func (s *QAService) renderUserContent(retrieval *domain.RetrievalResult) string {
	contextSection := retrieval.Context
	if contextSection == "" {
		contextSection = noContextPlaceholder
	}

	memberName, latestActivity, snippetCount := promptSummary(retrieval)
	return strings.NewReplacer(
		"{member_name}", memberName,
		"{latest_activity}", latestActivity,
		"{snippet_count}", snippetCount,
		"{context}", contextSection,
		"{question}", retrieval.Question,
	).Replace(s.prompts.UserTemplate)
}

// promptSummary derives the member label, latest-activity label and
// snippet count shown at the top of the user prompt.
func promptSummary(retrieval *domain.RetrievalResult) (string, string, string) {
	memberName := retrieval.TargetName
	if memberName == "" {
		memberName = unspecifiedMemberLabel
	}

	latestActivity := noActivityLabel
	if len(retrieval.Snippets) > 0 {
		latest := retrieval.Snippets[len(retrieval.Snippets)-1]
		timestamp := latest.RawTimestamp
		if timestamp == "" {
			timestamp = missingTimestampLabel
		}
		preview := strings.TrimSpace(latest.Text)
		if runes := []rune(preview); len(runes) > activityPreviewLimit {
			preview = string(runes[:activityPreviewLimit-3]) + "..."
		}
		if preview != "" {
			latestActivity = timestamp + " - " + preview
		} else {
			latestActivity = timestamp
		}
	}

	return memberName, latestActivity, fmt.Sprintf("%d", len(retrieval.Snippets))
}

// ExtractFinalAnswer returns the text after the last case-insensitive
// "answer:" marker, or the whole trimmed response when the marker is
// absent or followed by nothing.
func ExtractFinalAnswer(raw string) string {
	if raw == "" {
		return raw
	}
	idx := strings.LastIndex(strings.ToLower(raw), answerMarker)
	if idx >= 0 {
		if extracted := strings.TrimSpace(raw[idx+len(answerMarker):]); extracted != "" {
			return extracted
		}
	}
	return strings.TrimSpace(raw)
}
