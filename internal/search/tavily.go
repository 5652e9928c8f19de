package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const tavilyURL = "https://api.tavily.com/search"

// Tavily queries the Tavily search API.
type Tavily struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewTavily(apiKey string, timeout time.Duration) *Tavily {
	return &Tavily{
		apiKey:  apiKey,
		baseURL: tavilyURL,
		client:  newHTTPClient(timeout),
	}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (t *Tavily) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("tavily API key is required")
	}

	body, err := json.Marshal(tavilyRequest{
		Query:       query,
		SearchDepth: opts.Depth,
		MaxResults:  opts.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: Failed to close tavily response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}

	results := make([]Result, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return limit(results, opts.MaxResults), nil
}
