package domain

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xrash/smetrics"
)

const (
	suggestionLimit  = 5
	suggestionCutoff = 0.5
)

// MemberRecord is one persisted registry entry: the canonical display name
// and its normalized key.
type MemberRecord struct {
	Normalized string `json:"normalized"`
	Raw        string `json:"raw"`
}

// Resolution is the outcome of matching a candidate name against the
// registry. Exactly one of (DisplayName, Message) is set for a definite
// outcome; both empty means the question is not about a specific member.
type Resolution struct {
	DisplayName string
	Filter      string
	Message     string
	Suggestions []string
}

// Unknown reports whether the candidate could not be resolved and the
// request should stop with the user-facing message.
func (r Resolution) Unknown() bool { return r.Message != "" }

// MemberRegistry maps normalized member names to canonical display names,
// with a first-token index used to accept unambiguous first-name mentions.
// Immutable after construction; safe for concurrent reads.
type MemberRegistry struct {
	normalized map[string]string
	keys       []string
	firstToken map[string][]string
}

// NewMemberRegistry builds the registry from persisted records. The first
// occurrence of a normalized key wins; later duplicates are ignored.
func NewMemberRegistry(records []MemberRecord) *MemberRegistry {
	reg := &MemberRegistry{
		normalized: make(map[string]string),
		firstToken: make(map[string][]string),
	}
	for _, record := range records {
		raw := strings.TrimSpace(record.Raw)
		if raw == "" {
			continue
		}
		normalized := strings.TrimSpace(record.Normalized)
		if normalized == "" {
			normalized = NormalizeName(raw)
		}
		if _, exists := reg.normalized[normalized]; !exists {
			reg.normalized[normalized] = raw
			reg.keys = append(reg.keys, normalized)
		}
		if token, _, _ := strings.Cut(normalized, " "); token != "" {
			if !containsString(reg.firstToken[token], raw) {
				reg.firstToken[token] = append(reg.firstToken[token], raw)
			}
		}
	}
	return reg
}

func (r *MemberRegistry) Len() int { return len(r.keys) }

func (r *MemberRegistry) Empty() bool { return len(r.keys) == 0 }

// Resolve matches a candidate name in three tiers: exact normalized match,
// unambiguous first-token match, then fuzzy suggestions. An empty registry
// trusts the extractor and accepts the candidate as given.
func (r *MemberRegistry) Resolve(candidate string) Resolution {
	if strings.TrimSpace(candidate) == "" {
		return Resolution{}
	}

	normalized := NormalizeName(candidate)
	if r.Empty() {
		return Resolution{DisplayName: candidate, Filter: normalized}
	}

	if display, ok := r.normalized[normalized]; ok {
		return Resolution{DisplayName: display, Filter: normalized}
	}

	if token, _, _ := strings.Cut(normalized, " "); token != "" {
		if matches := r.firstToken[token]; len(matches) == 1 {
			return Resolution{DisplayName: matches[0], Filter: NormalizeName(matches[0])}
		}
	}

	suggestions := r.Suggest(normalized)
	return Resolution{Message: invalidNameMessage(suggestions), Suggestions: suggestions}
}

// Suggest returns up to five display names whose normalized keys are
// similar to the candidate, best first.
func (r *MemberRegistry) Suggest(normalized string) []string {
	if normalized == "" || r.Empty() {
		return nil
	}

	type scored struct {
		key   string
		order int
		score float64
	}
	ranked := make([]scored, 0, len(r.keys))
	for i, key := range r.keys {
		score := nameSimilarity(normalized, key)
		if score >= suggestionCutoff {
			ranked = append(ranked, scored{key: key, order: i, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	limit := suggestionLimit
	if len(ranked) < limit {
		limit = len(ranked)
	}
	suggestions := make([]string, 0, limit)
	for _, entry := range ranked[:limit] {
		suggestions = append(suggestions, r.normalized[entry.key])
	}
	return suggestions
}

func invalidNameMessage(suggestions []string) string {
	if len(suggestions) > 0 {
		return "Enter a valid name. Closest matches: " + strings.Join(suggestions, ", ")
	}
	return "Enter a valid name. No close matches found."
}

// nameSimilarity is an edit-distance ratio in [0,1].
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	distance := smetrics.Ukkonen(a, b, 1, 1, 1)
	return 1 - float64(distance)/float64(longest)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
