package ports

import (
	"context"

	"github.com/communityhub/member-qa/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for end-to-end question
// answering.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}

// Retriever is the inbound contract for context retrieval without
// generation. targetOverride, when non-empty, bypasses entity extraction.
type Retriever interface {
	Retrieve(ctx context.Context, question, targetOverride string) (*domain.RetrievalResult, error)
}
