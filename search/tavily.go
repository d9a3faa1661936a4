// Package search provides the Tavily search collaborator for the pipeline's
// personas. Implement prospect.SearchProvider to use a different backend.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sellside/prospect"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API with the call shape the personas rely
// on: advanced depth, a synthesized answer, a capped result count, and
// relevance+recency ordering.
type Tavily struct {
	APIKey string
	// Depth controls Tavily's search_depth parameter (basic or advanced).
	Depth string
	// MaxResults caps the number of results requested.
	MaxResults int

	client   *http.Client
	endpoint string
}

// NewTavily constructs a Tavily search provider with the pipeline defaults.
func NewTavily(apiKey string) *Tavily {
	return NewTavilyWithClient(apiKey, &http.Client{Timeout: 30 * time.Second})
}

// NewTavilyWithClient constructs a Tavily search provider using the supplied
// HTTP client. This is useful for overriding the default timeout.
func NewTavilyWithClient(apiKey string, client *http.Client) *Tavily {
	return &Tavily{
		APIKey:     apiKey,
		Depth:      "advanced",
		MaxResults: 10,
		client:     client,
		endpoint:   tavilyEndpoint,
	}
}

type tavilyRequest struct {
	Query         string `json:"query"`
	APIKey        string `json:"api_key"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
	SortBy        string `json:"sort_by"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string) (*prospect.SearchResponse, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(tavilyRequest{
		Query:         query,
		APIKey:        t.APIKey,
		SearchDepth:   t.Depth,
		IncludeAnswer: true,
		MaxResults:    t.MaxResults,
		SortBy:        "relevance_and_recency",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var body tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := &prospect.SearchResponse{
		Answer:  body.Answer,
		Results: make([]prospect.SearchResult, 0, len(body.Results)),
	}
	for _, r := range body.Results {
		out.Results = append(out.Results, prospect.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}
	return out, nil
}
