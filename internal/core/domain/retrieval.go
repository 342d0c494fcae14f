package domain

import "time"

// Match is one raw vector search hit. Metadata is the opaque payload
// attached at indexing time; absent or malformed fields are tolerated
// downstream, never fatal.
type Match struct {
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Snippet is one retrieved message prepared for prompt assembly.
type Snippet struct {
	RawTimestamp string     `json:"timestamp,omitempty"`
	ParsedAt     *time.Time `json:"parsed_timestamp,omitempty"`
	UserName     string     `json:"user_name,omitempty"`
	Text         string     `json:"text"`
}

// Answer is the final user-facing outcome of one question. Unresolved
// marks the short-circuit case where Text is the member-suggestion
// message rather than a generated answer.
type Answer struct {
	Text       string    `json:"text"`
	MemberName string    `json:"member_name,omitempty"`
	Snippets   []Snippet `json:"snippets,omitempty"`
	Unresolved bool      `json:"unresolved,omitempty"`
}

// RetrievalResult carries everything produced by one retrieval pass.
// Immutable once constructed.
type RetrievalResult struct {
	Question       string         `json:"question"`
	Context        string         `json:"context"`
	Snippets       []Snippet      `json:"snippets"`
	TargetName     string         `json:"target_name,omitempty"`
	MetadataFilter MetadataFilter `json:"metadata_filter,omitempty"`
	TopK           int            `json:"top_k"`
}
