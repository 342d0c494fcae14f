package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	possessiveSuffixRe = regexp.MustCompile(`(?i)(?:'s|’s|â€™s)$`)
	whitespaceRunRe    = regexp.MustCompile(`\s+`)
	nonWordRe          = regexp.MustCompile(`\W+`)
	leadingPunctRe     = regexp.MustCompile("^[\\s?!.,:;\\-—–\"'`]+")
)

// quoteReplacer maps curly/prime quote variants and the common UTF-8
// mojibake apostrophe back to plain ASCII quotes.
var quoteReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"′", "'",
	"ʼ", "'",
	"“", `"`,
	"”", `"`,
	"�", "'",
	"â€™", "'",
)

// NormalizeQuestion applies Unicode NFKC normalization and quote
// canonicalization without touching casing. Used on raw questions before
// entity extraction.
func NormalizeQuestion(raw string) string {
	return quoteReplacer.Replace(norm.NFKC.String(raw))
}

// NormalizeName produces the canonical lowercase form of a member name:
// NFKC, quote canonicalization, trailing possessive stripped, whitespace
// collapsed, trimmed, lowercased. Idempotent and total.
func NormalizeName(raw string) string {
	cleaned := strings.TrimSpace(NormalizeQuestion(raw))
	cleaned = possessiveSuffixRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRunRe.ReplaceAllString(cleaned, " ")
	return strings.ToLower(strings.TrimSpace(cleaned))
}

// StripPossessive removes a trailing possessive suffix from a raw name,
// preserving the original casing.
func StripPossessive(raw string) string {
	return strings.TrimSpace(possessiveSuffixRe.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// TokenizeName splits an already-normalized name on non-word runs,
// dropping empty tokens.
func TokenizeName(normalized string) []string {
	parts := nonWordRe.Split(normalized, -1)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// StripLeadingPunctuation removes leading punctuation/markers that confuse
// the entity recognizer. Never returns an empty string for non-empty input.
func StripLeadingPunctuation(raw string) string {
	stripped := leadingPunctRe.ReplaceAllString(raw, "")
	if stripped == "" {
		return raw
	}
	return stripped
}
