package spacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/communityhub/member-qa/internal/core/domain"
)

const personLabel = "PERSON"

// Client talks to a spaCy NER sidecar service exposing the extracted
// entity spans of a text.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ner: base url is required")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type entitySpan struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type analyzeResponse struct {
	Ents []entitySpan `json:"ents"`
}

// FirstPerson returns the first PERSON span in the text, trimmed and with
// a trailing possessive stripped. Absence of a person is not an error;
// later person mentions are ignored.
func (c *Client) FirstPerson(ctx context.Context, text string) (string, bool, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return "", false, fmt.Errorf("marshal ner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ents", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("create ner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("ner request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", false, fmt.Errorf("ner status: %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	var response analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", false, fmt.Errorf("decode ner response: %w", err)
	}

	for _, span := range response.Ents {
		if span.Label != personLabel {
			continue
		}
		candidate := domain.StripPossessive(span.Text)
		if candidate == "" {
			return "", false, nil
		}
		return candidate, true, nil
	}
	return "", false, nil
}
