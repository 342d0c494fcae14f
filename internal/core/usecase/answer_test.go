package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/communityhub/member-qa/internal/core/domain"
)

type generatorFake struct {
	system string
	user   string
	reply  string
	err    error
	calls  int
}

func (f *generatorFake) Complete(_ context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

var testPrompts = Prompts{
	System: "You answer questions about community messages.",
	UserTemplate: "Member: {member_name}\nLatest: {latest_activity}\nSnippets: {snippet_count}\n\n" +
		"{context}\n\nQuestion: {question}",
}

func singleMemberRegistry() *domain.MemberRegistry {
	return domain.NewMemberRegistry([]domain.MemberRecord{
		{Normalized: "alice smith", Raw: "Alice Smith"},
	})
}

func TestAnswerResolvedMemberEndToEnd(t *testing.T) {
	recognizer := &recognizerFake{name: "Alice", found: true}
	searcher := &searcherFake{matches: []domain.Match{
		matchWith("shipped the deploy", "Alice Smith", "2024-03-01"),
	}}
	generator := &generatorFake{reply: "Reasoning: the deploy snippet.\nAnswer: She shipped it."}

	engine := newEngine(&embedderFake{}, recognizer, searcher, 5)
	service := NewQAService(engine, singleMemberRegistry(), generator, testPrompts, nil)

	answer, err := service.Answer(context.Background(), "What did Alice say about the deploy?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "She shipped it." {
		t.Fatalf("answer = %q", answer.Text)
	}
	if answer.MemberName != "Alice Smith" {
		t.Fatalf("member name = %q", answer.MemberName)
	}
	if len(answer.Snippets) != 1 {
		t.Fatalf("snippets = %d", len(answer.Snippets))
	}
	if !strings.Contains(generator.user, "Member: Alice Smith") {
		t.Fatalf("resolved display name missing from prompt: %q", generator.user)
	}
	if searcher.filter == nil {
		t.Fatalf("expected a metadata filter for the resolved member")
	}
	and, ok := searcher.filter["$and"].([]domain.MetadataFilter)
	if !ok || len(and) != 3 {
		t.Fatalf("expected equality plus two token clauses, got %#v", searcher.filter)
	}
}

func TestAnswerUnknownMemberShortCircuits(t *testing.T) {
	registry := domain.NewMemberRegistry([]domain.MemberRecord{
		{Normalized: "bob jones", Raw: "Bob Jones"},
		{Normalized: "bob kowalski", Raw: "Bob Kowalski"},
	})
	recognizer := &recognizerFake{name: "Bob", found: true}
	searcher := &searcherFake{}
	generator := &generatorFake{reply: "should never be used"}

	engine := newEngine(&embedderFake{}, recognizer, searcher, 5)
	service := NewQAService(engine, registry, generator, testPrompts, nil)

	answer, err := service.Answer(context.Background(), "What is Bob working on?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !answer.Unresolved {
		t.Fatalf("expected an unresolved answer")
	}
	if !strings.HasPrefix(answer.Text, "Enter a valid name.") {
		t.Fatalf("expected suggestion message, got %q", answer.Text)
	}
	if searcher.calls != 0 {
		t.Fatalf("retrieval must not run for unknown members")
	}
	if generator.calls != 0 {
		t.Fatalf("generation must not run for unknown members")
	}
}

func TestAnswerNoMatchesStillGenerates(t *testing.T) {
	recognizer := &recognizerFake{name: "Alice", found: true}
	generator := &generatorFake{reply: "Answer: nothing recorded"}

	engine := newEngine(&embedderFake{}, recognizer, &searcherFake{}, 5)
	service := NewQAService(engine, singleMemberRegistry(), generator, testPrompts, nil)

	answer, err := service.Answer(context.Background(), "What did Alice do last week?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "nothing recorded" {
		t.Fatalf("answer = %q", answer.Text)
	}
	if generator.calls != 1 {
		t.Fatalf("generation must still run with no context")
	}
	if !strings.Contains(generator.user, "No relevant context was retrieved.") {
		t.Fatalf("missing no-context marker: %q", generator.user)
	}
	if !strings.Contains(generator.user, "Latest: No activity found.") {
		t.Fatalf("missing no-activity label: %q", generator.user)
	}
	if !strings.Contains(generator.user, "Snippets: 0") {
		t.Fatalf("missing snippet count: %q", generator.user)
	}
}

func TestAnswerNoPersonQuestion(t *testing.T) {
	generator := &generatorFake{reply: "Answer: general info"}
	engine := newEngine(&embedderFake{}, &recognizerFake{}, &searcherFake{}, 5)
	service := NewQAService(engine, singleMemberRegistry(), generator, testPrompts, nil)

	answer, err := service.Answer(context.Background(), "What was decided about the meetup?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "general info" {
		t.Fatalf("answer = %q", answer.Text)
	}
	if !strings.Contains(generator.user, "Name not explicitly mentioned") {
		t.Fatalf("missing unspecified-member label: %q", generator.user)
	}
}

func TestAnswerGenerationErrorSurfaced(t *testing.T) {
	recognizer := &recognizerFake{name: "Alice", found: true}
	engine := newEngine(&embedderFake{}, recognizer, &searcherFake{}, 5)
	service := NewQAService(engine, singleMemberRegistry(), &generatorFake{err: errors.New("api down")}, testPrompts, nil)

	if _, err := service.Answer(context.Background(), "What did Alice say?"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAnswerLatestActivityPreviewTruncated(t *testing.T) {
	long := strings.Repeat("x", 200)
	recognizer := &recognizerFake{name: "Alice", found: true}
	searcher := &searcherFake{matches: []domain.Match{
		matchWith(long, "Alice Smith", "2024-03-01"),
	}}
	generator := &generatorFake{reply: "Answer: ok"}

	engine := newEngine(&embedderFake{}, recognizer, searcher, 5)
	service := NewQAService(engine, singleMemberRegistry(), generator, testPrompts, nil)

	if _, err := service.Answer(context.Background(), "What did Alice post?"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	want := "2024-03-01 - " + strings.Repeat("x", 157) + "..."
	if !strings.Contains(generator.user, want) {
		t.Fatalf("expected truncated preview in prompt:\n%s", generator.user)
	}
}

func TestExtractFinalAnswer(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Reasoning: x\nAnswer: Paris", "Paris"},
		{"Reasoning only, no marker at all", "Reasoning only, no marker at all"},
		{"Answer: first\nmore\nANSWER: second", "second"},
		{"Answer:   ", "Answer:"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractFinalAnswer(tc.raw); got != tc.want {
			t.Fatalf("ExtractFinalAnswer(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
