package prompts

import (
	"log/slog"
	"os"
	"strings"

	"github.com/communityhub/member-qa/internal/core/usecase"
)

const fallbackSystemPrompt = "You are a helpful assistant that answers questions about community messages. " +
	"Use the provided messages to answer the question."

const fallbackUserTemplate = `Message summary:
- Member referenced in question: {member_name}
- Latest recorded activity: {latest_activity}
- Snippets retrieved: {snippet_count}

Messages (oldest to newest, all from this member):
{context}

Question: {question}

Respond exactly in this format:
Reasoning: <one sentence citing the most relevant snippet>
Answer: <final concise answer>`

// Load reads the two generation templates, falling back to built-in text
// when a file is unavailable. Missing templates are never fatal.
func Load(systemPath, userPath string, logger *slog.Logger) usecase.Prompts {
	if logger == nil {
		logger = slog.Default()
	}
	return usecase.Prompts{
		System:       loadText(systemPath, fallbackSystemPrompt, logger),
		UserTemplate: loadText(userPath, fallbackUserTemplate, logger),
	}
}

func loadText(path, fallback string, logger *slog.Logger) string {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("prompt file not found, using fallback text", "path", path, "error", err)
		return fallback
	}
	return strings.TrimSpace(string(data))
}
