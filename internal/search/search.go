/*
Package search provides web search backends used to locate corporate filings
and ticker pages.
*/
package search

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var ErrNoBackend = errors.New("no search backend configured")

type Result struct {
	Title   string
	URL     string
	Content string
}

type Options struct {
	MaxResults int
	Depth      string
}

type Searcher interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Chain tries each backend in order and returns the first non-empty result
// set. The last error is returned only when every backend failed.
type Chain []Searcher

func (c Chain) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if len(c) == 0 {
		return nil, ErrNoBackend
	}

	var lastErr error
	for _, s := range c {
		results, err := s.Search(ctx, query, opts)
		if err != nil {
			log.Printf("Warning: search backend %T failed: %v", s, err)
			lastErr = err
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func limit(results []Result, max int) []Result {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
