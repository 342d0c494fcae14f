package domain

import (
	"reflect"
	"strings"
	"testing"
)

func testRegistry() *MemberRegistry {
	return NewMemberRegistry([]MemberRecord{
		{Normalized: "alice smith", Raw: "Alice Smith"},
		{Normalized: "bob jones", Raw: "Bob Jones"},
		{Normalized: "bob kowalski", Raw: "Bob Kowalski"},
		{Normalized: "carol white", Raw: "Carol White"},
	})
}

func TestResolveExactMatch(t *testing.T) {
	res := testRegistry().Resolve("Alice Smith's")
	if res.Unknown() {
		t.Fatalf("unexpected unknown: %s", res.Message)
	}
	if res.DisplayName != "Alice Smith" || res.Filter != "alice smith" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveUnambiguousFirstToken(t *testing.T) {
	res := testRegistry().Resolve("Alice")
	if res.DisplayName != "Alice Smith" {
		t.Fatalf("expected first-token match, got %+v", res)
	}
	if res.Filter != "alice smith" {
		t.Fatalf("expected normalized display name filter, got %q", res.Filter)
	}
}

func TestResolveAmbiguousFirstTokenFallsThrough(t *testing.T) {
	res := testRegistry().Resolve("Bob")
	if !res.Unknown() {
		t.Fatalf("expected unknown resolution, got %+v", res)
	}
	if res.DisplayName != "" {
		t.Fatalf("unknown resolution must not carry a display name")
	}
	if !strings.HasPrefix(res.Message, "Enter a valid name.") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if len(res.Suggestions) > 5 {
		t.Fatalf("expected at most 5 suggestions, got %v", res.Suggestions)
	}
}

func TestResolveNoCandidate(t *testing.T) {
	res := testRegistry().Resolve("  ")
	if res.Unknown() || res.DisplayName != "" || res.Filter != "" {
		t.Fatalf("empty candidate must resolve to nothing, got %+v", res)
	}
}

func TestResolveEmptyRegistryTrustsExtractor(t *testing.T) {
	reg := NewMemberRegistry(nil)
	res := reg.Resolve("Dana Scully")
	if res.Unknown() {
		t.Fatalf("unexpected unknown: %s", res.Message)
	}
	if res.DisplayName != "Dana Scully" || res.Filter != "dana scully" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveTypoSuggestsClosest(t *testing.T) {
	res := testRegistry().Resolve("Alise Smith")
	if !res.Unknown() {
		t.Fatalf("expected unknown, got %+v", res)
	}
	if len(res.Suggestions) == 0 || res.Suggestions[0] != "Alice Smith" {
		t.Fatalf("expected Alice Smith as top suggestion, got %v", res.Suggestions)
	}
}

func TestResolveNoCloseMatches(t *testing.T) {
	res := testRegistry().Resolve("Zzzzqqqq Vvvv")
	if !res.Unknown() {
		t.Fatalf("expected unknown, got %+v", res)
	}
	if res.Message != "Enter a valid name. No close matches found." {
		t.Fatalf("unexpected message: %q", res.Message)
	}
}

func TestRegistryFirstOccurrenceWins(t *testing.T) {
	reg := NewMemberRegistry([]MemberRecord{
		{Normalized: "alice smith", Raw: "Alice Smith"},
		{Normalized: "alice smith", Raw: "ALICE SMITH"},
	})
	res := reg.Resolve("alice smith")
	if res.DisplayName != "Alice Smith" {
		t.Fatalf("expected first registry entry to win, got %q", res.DisplayName)
	}
}

func TestRegistryDerivesNormalizedWhenMissing(t *testing.T) {
	reg := NewMemberRegistry([]MemberRecord{{Raw: "  Eve   Adams's "}})
	res := reg.Resolve("eve adams")
	if res.DisplayName != "Eve Adams's" {
		t.Fatalf("got %+v", res)
	}
}

func TestSuggestOrderingIsDeterministic(t *testing.T) {
	reg := testRegistry()
	first := reg.Suggest("bob jenes")
	second := reg.Suggest("bob jenes")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("suggestions not stable: %v vs %v", first, second)
	}
}
