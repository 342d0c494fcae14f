package usecase

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/communityhub/member-qa/internal/core/domain"
)

type contextEntry struct {
	parsedAt *time.Time
	index    int
	line     string
	snippet  domain.Snippet
}

// AssembleContext turns raw search matches into a chronological,
// size-bounded context block plus the matching structured snippet list.
// Entries with unparseable timestamps sort last in their original relative
// order; output is deterministic for identical input.
func AssembleContext(matches []domain.Match, topK int) (string, []domain.Snippet) {
	entries := make([]contextEntry, 0, len(matches))
	for idx, match := range matches {
		metadata := match.Metadata
		if metadata == nil {
			continue
		}

		text := strings.TrimSpace(stringField(metadata, "text"))
		if text == "" {
			text = strings.TrimSpace(stringField(metadata, "message"))
		}
		if text == "" {
			continue
		}

		rawTimestamp := metadata["timestamp"]
		rawLabel := rawTimestampLabel(rawTimestamp)
		userName := strings.TrimSpace(stringField(metadata, "user_name"))
		displayUser := userName
		if displayUser == "" {
			displayUser = "Unknown member"
		}

		line := displayUser + ": " + text
		if rawLabel != "" {
			line = "[" + rawLabel + "] " + line
		}

		entries = append(entries, contextEntry{
			parsedAt: domain.ParseTimestamp(rawTimestamp),
			index:    idx,
			line:     line,
			snippet: domain.Snippet{
				RawTimestamp: rawLabel,
				ParsedAt:     domain.ParseTimestamp(rawTimestamp),
				UserName:     userName,
				Text:         text,
			},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.parsedAt == nil && b.parsedAt == nil:
			return a.index < b.index
		case a.parsedAt == nil:
			return false
		case b.parsedAt == nil:
			return true
		case !a.parsedAt.Equal(*b.parsedAt):
			return a.parsedAt.Before(*b.parsedAt)
		default:
			return a.index < b.index
		}
	})

	if topK > 0 && len(entries) > topK {
		entries = entries[:topK]
	}

	lines := make([]string, 0, len(entries))
	snippets := make([]domain.Snippet, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.line)
		snippets = append(snippets, entry.snippet)
	}
	return strings.Join(lines, "\n\n"), snippets
}

func stringField(metadata map[string]any, key string) string {
	value, _ := metadata[key].(string)
	return value
}

// rawTimestampLabel renders the original timestamp representation for
// display; numeric epochs keep their plain decimal form.
func rawTimestampLabel(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return rawTimestampLabel(float64(v))
	case int:
		return rawTimestampLabel(float64(v))
	case int64:
		return rawTimestampLabel(float64(v))
	default:
		return ""
	}
}
