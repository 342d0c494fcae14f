package usecase

import (
	"strings"
	"testing"

	"github.com/communityhub/member-qa/internal/core/domain"
)

func matchWith(text, user string, timestamp any) domain.Match {
	metadata := map[string]any{"text": text}
	if user != "" {
		metadata["user_name"] = user
	}
	if timestamp != nil {
		metadata["timestamp"] = timestamp
	}
	return domain.Match{Metadata: metadata}
}

func TestAssembleContextChronologicalWithNilsLast(t *testing.T) {
	matches := []domain.Match{
		matchWith("march message", "Alice Smith", "2024-03-01"),
		matchWith("undated message", "Alice Smith", nil),
		matchWith("january message", "Alice Smith", "2024-01-01"),
	}

	contextBlock, snippets := AssembleContext(matches, 5)
	if len(snippets) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(snippets))
	}
	if snippets[0].Text != "january message" || snippets[1].Text != "march message" || snippets[2].Text != "undated message" {
		t.Fatalf("unexpected order: %+v", snippets)
	}

	lines := strings.Split(contextBlock, "\n\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines separated by blank lines, got %d", len(lines))
	}
	if lines[0] != "[2024-01-01] Alice Smith: january message" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[2] != "Alice Smith: undated message" {
		t.Fatalf("undated entry must omit the timestamp label: %q", lines[2])
	}
}

func TestAssembleContextTruncatesToTopK(t *testing.T) {
	matches := []domain.Match{
		matchWith("first", "A", "2024-01-01"),
		matchWith("second", "A", "2024-01-02"),
		matchWith("third", "A", "2024-01-03"),
	}
	contextBlock, snippets := AssembleContext(matches, 2)
	if len(snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(snippets))
	}
	if strings.Contains(contextBlock, "third") {
		t.Fatalf("truncated entry leaked into context: %q", contextBlock)
	}
}

func TestAssembleContextSkipsBadMatches(t *testing.T) {
	matches := []domain.Match{
		{Metadata: nil},
		{Metadata: map[string]any{"text": "   "}},
		{Metadata: map[string]any{"message": "from message field", "user_name": "Bob"}},
	}
	contextBlock, snippets := AssembleContext(matches, 5)
	if len(snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(snippets))
	}
	if contextBlock != "Bob: from message field" {
		t.Fatalf("unexpected context: %q", contextBlock)
	}
}

func TestAssembleContextDefaultsUnknownMember(t *testing.T) {
	matches := []domain.Match{{Metadata: map[string]any{"text": "hello", "timestamp": float64(1704448800)}}}
	contextBlock, snippets := AssembleContext(matches, 5)
	if contextBlock != "[1704448800] Unknown member: hello" {
		t.Fatalf("unexpected context: %q", contextBlock)
	}
	if snippets[0].UserName != "" {
		t.Fatalf("snippet user name should stay empty, got %q", snippets[0].UserName)
	}
	if snippets[0].ParsedAt == nil {
		t.Fatalf("numeric timestamp should parse")
	}
}

func TestAssembleContextStableAcrossRuns(t *testing.T) {
	matches := []domain.Match{
		matchWith("a", "X", "2024-01-01"),
		matchWith("b", "X", "2024-01-01"),
		matchWith("c", "X", nil),
		matchWith("d", "X", nil),
	}
	first, _ := AssembleContext(matches, 10)
	second, _ := AssembleContext(matches, 10)
	if first != second {
		t.Fatalf("output not deterministic")
	}
	if !strings.HasPrefix(first, "[2024-01-01] X: a") {
		t.Fatalf("equal timestamps must keep original order: %q", first)
	}
	if !strings.HasSuffix(first, "X: c\n\nX: d") {
		t.Fatalf("undated entries must keep original relative order: %q", first)
	}
}

func TestAssembleContextEmpty(t *testing.T) {
	contextBlock, snippets := AssembleContext(nil, 5)
	if contextBlock != "" || len(snippets) != 0 {
		t.Fatalf("expected empty output, got %q / %v", contextBlock, snippets)
	}
}
