package ports

import (
	"context"

	"github.com/communityhub/member-qa/internal/core/domain"
)

// Embedder builds the query vector for a question. Deterministic for
// identical input.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EntityRecognizer extracts the first person mention from question text.
// Absence of a person is reported via found=false, not an error.
type EntityRecognizer interface {
	FirstPerson(ctx context.Context, text string) (name string, found bool, err error)
}

// VectorSearcher performs approximate nearest-neighbor search with an
// optional metadata filter. A nil filter means unrestricted search.
type VectorSearcher interface {
	Query(ctx context.Context, vector []float32, limit int, filter domain.MetadataFilter) ([]domain.Match, error)
}

// AnswerGenerator creates the final user-facing answer from a rendered
// prompt pair.
type AnswerGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// MemberSource loads the persisted known-members registry records.
type MemberSource interface {
	Load(ctx context.Context) ([]domain.MemberRecord, error)
}
