/*
Package hunter searches for and downloads candidate filings for a target
entity, one document category at a time.
*/
package hunter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shanehull/labourscan/internal/config"
	"github.com/shanehull/labourscan/internal/search"
	"github.com/shanehull/labourscan/internal/types"
)

const (
	DefaultMaxResults = 5
	defaultTimeout    = 15 * time.Second
	maxDownloadBytes  = 100 << 20

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var ErrDownloadFailed = errors.New("download failed")

var pdfMagic = []byte("%PDF")

// SeenSet records URLs already downloaded and inspected. It is safe for
// concurrent use so one set can be shared between audits.
type SeenSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{urls: make(map[string]struct{})}
}

func (s *SeenSet) Seen(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.urls[u]
	return ok
}

func (s *SeenSet) Mark(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[u] = struct{}{}
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

// Inspector decides whether a downloaded candidate is accepted. The candidate's
// temp file is removed by the hunter when the inspector returns false.
type Inspector func(types.CandidateDocument) bool

type Options struct {
	TempDir    string
	Periods    config.Periods
	Timeout    time.Duration
	MaxResults int
}

type Hunter struct {
	searcher   search.Searcher
	seen       *SeenSet
	client     *http.Client
	tempDir    string
	periods    config.Periods
	maxResults int
	maxBytes   int64
}

func New(searcher search.Searcher, seen *SeenSet, opts Options) *Hunter {
	if seen == nil {
		seen = NewSeenSet()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Hunter{
		searcher:   searcher,
		seen:       seen,
		client:     &http.Client{Timeout: opts.Timeout},
		tempDir:    opts.TempDir,
		periods:    opts.Periods,
		maxResults: opts.MaxResults,
		maxBytes:   maxDownloadBytes,
	}
}

// HuntCategory searches one category and walks the ranked results until the
// inspector accepts a candidate. It returns how many candidates were inspected
// and whether one was accepted.
func (h *Hunter) HuntCategory(ctx context.Context, target types.TargetEntity, category types.DocumentCategory, exclusions []string, inspect Inspector) (int, bool) {
	query := BuildQuery(target, category, exclusions, h.periods)
	log.Printf("Hunting %s: %s", category.Label(), query)

	results, err := h.searcher.Search(ctx, query, search.Options{MaxResults: h.maxResults, Depth: search.DepthAdvanced})
	if err != nil {
		log.Printf("Warning: search failed for %s (%s): %v", target.CanonicalName, category, err)
		return 0, false
	}
	if len(results) > h.maxResults {
		results = results[:h.maxResults]
	}

	inspected := 0
	for _, r := range results {
		if !isPDFURL(r.URL) || h.seen.Seen(r.URL) {
			continue
		}

		path, err := h.download(ctx, r.URL)
		if err != nil {
			log.Printf("Warning: %v", err)
			continue
		}

		inspected++
		h.seen.Mark(r.URL)

		candidate := types.CandidateDocument{SourceURL: r.URL, TempPath: path, Category: category}
		if inspect(candidate) {
			return inspected, true
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to remove rejected candidate %s: %v", path, err)
		}
	}

	return inspected, false
}

// BuildQuery renders the search query for a category. Negative terms are the
// sorted union of the target's poison terms and the run exclusions.
func BuildQuery(target types.TargetEntity, category types.DocumentCategory, exclusions []string, periods config.Periods) string {
	parts := []string{fmt.Sprintf("%q", target.CanonicalName)}
	if target.HasTicker() {
		parts = append(parts, fmt.Sprintf("%q", target.Ticker))
	}
	parts = append(parts, bait(category, periods))

	for _, term := range negativeTerms(target.PoisonTerms, exclusions) {
		if strings.Contains(term, " ") {
			parts = append(parts, fmt.Sprintf("-%q", term))
		} else {
			parts = append(parts, "-"+term)
		}
	}

	parts = append(parts, "filetype:pdf")
	return strings.Join(parts, " ")
}

func bait(category types.DocumentCategory, p config.Periods) string {
	switch category {
	case types.FinancialResults:
		return fmt.Sprintf(`%s Financial Results "Exceptional Item" "Labour Code"`, p.Quarter)
	case types.InvestorPresentation:
		return fmt.Sprintf("Investor Presentation %s", p.Presentation)
	case types.AnnualReportVendors:
		return fmt.Sprintf(`Annual Report %s "Related Party"`, p.Annual)
	case types.SustainabilityReport:
		return fmt.Sprintf("Business Responsibility Sustainability Report %s", p.Annual)
	}
	return ""
}

func negativeTerms(poison, exclusions []string) []string {
	set := types.NewExclusionSet(poison...)
	set.Add(exclusions...)
	return set.Terms()
}

func isPDFURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(raw), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

func (h *Hunter) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: Failed to close response body for %s: %v", rawURL, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: received status code %d from %s", ErrDownloadFailed, resp.StatusCode, rawURL)
	}

	if resp.ContentLength > h.maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, over the %d byte limit", ErrDownloadFailed, rawURL, resp.ContentLength, h.maxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read body from %s: %v", ErrDownloadFailed, rawURL, err)
	}
	if int64(len(body)) > h.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds the %d byte limit", ErrDownloadFailed, rawURL, h.maxBytes)
	}
	if !bytes.HasPrefix(body, pdfMagic) {
		return "", fmt.Errorf("%w: %s is not a PDF", ErrDownloadFailed, rawURL)
	}

	if h.tempDir != "" {
		if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create temp directory %s: %w", h.tempDir, err)
		}
	}

	tmpFile, err := os.CreateTemp(h.tempDir, "candidate_*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(body); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to write PDF bytes to temp file: %w", err)
	}

	return tmpFile.Name(), nil
}
