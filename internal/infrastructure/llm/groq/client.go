package groq

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/communityhub/member-qa/internal/infrastructure/resilience"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"

	requestTimeout = 30 * time.Second

	temperature = 0.2
	maxTokens   = 256
	topP        = 0.9
)

// Client talks to the Groq OpenAI-compatible chat completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq: api key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		executor:   executor,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one system/user message pair and returns the generated
// text. Non-2xx responses and empty content are errors, never silently
// degraded.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        topP,
	}

	var content string
	call := func(callCtx context.Context) error {
		var response chatResponse
		if err := c.postJSON(callCtx, "/chat/completions", payload, &response); err != nil {
			return err
		}
		if len(response.Choices) == 0 {
			return fmt.Errorf("groq chat: response contained no choices")
		}
		content = strings.TrimSpace(response.Choices[0].Message.Content)
		if content == "" {
			return fmt.Errorf("groq chat: response contained no content")
		}
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "groq.chat", call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}
