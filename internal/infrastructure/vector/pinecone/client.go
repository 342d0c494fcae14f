package pinecone

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
	"github.com/communityhub/member-qa/internal/infrastructure/resilience"
)

// Client queries a Pinecone index over its REST API. The index host URL is
// the per-index endpoint, not the control plane.
type Client struct {
	indexURL   string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(indexURL, apiKey string, executor *resilience.Executor) (*Client, error) {
	if indexURL == "" {
		return nil, fmt.Errorf("pinecone: index url is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone: api key is required")
	}
	return &Client{
		indexURL:   strings.TrimRight(indexURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}, nil
}

type queryRequest struct {
	Vector          []float32             `json:"vector"`
	TopK            int                   `json:"topK"`
	IncludeMetadata bool                  `json:"includeMetadata"`
	Filter          domain.MetadataFilter `json:"filter,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query runs a similarity search with an optional metadata filter. A nil
// filter means unrestricted search.
func (c *Client) Query(ctx context.Context, vector []float32, limit int, filter domain.MetadataFilter) ([]domain.Match, error) {
	payload := queryRequest{
		Vector:          vector,
		TopK:            limit,
		IncludeMetadata: true,
		Filter:          filter,
	}

	var matches []domain.Match
	call := func(callCtx context.Context) error {
		response, err := c.query(callCtx, payload)
		if err != nil {
			return err
		}
		matches = make([]domain.Match, 0, len(response.Matches))
		for _, m := range response.Matches {
			matches = append(matches, domain.Match{Metadata: m.Metadata, Score: m.Score})
		}
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "pinecone.query", call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *Client) query(ctx context.Context, payload queryRequest) (*queryResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal query body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.indexURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "pinecone query request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		statusErr := fmt.Errorf("pinecone query status: %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
		if resp.StatusCode >= 500 {
			return nil, domain.WrapError(domain.ErrTemporary, "pinecone query", statusErr)
		}
		return nil, statusErr
	}

	var response queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return &response, nil
}
