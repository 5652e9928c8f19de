/*
Package entity resolves a requested company name into a target entity: its
optional stock ticker and the poison terms naming confusable sibling entities.
*/
package entity

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/shanehull/labourscan/internal/search"
	"github.com/shanehull/labourscan/internal/types"
)

const tickerQueryTemplate = "%s yahoo finance ticker symbol India"

// Table is an immutable conglomerate lookup. Entries are matched in order.
type Table struct {
	entries []types.Conglomerate
}

func NewTable(entries []types.Conglomerate) Table {
	copied := make([]types.Conglomerate, 0, len(entries))
	for _, e := range entries {
		poison := make([]string, 0, len(e.Poison))
		for _, p := range e.Poison {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				poison = append(poison, p)
			}
		}
		copied = append(copied, types.Conglomerate{
			Root:   strings.ToLower(strings.TrimSpace(e.Root)),
			Poison: poison,
		})
	}
	return Table{entries: copied}
}

// PoisonTerms returns a copy of the poison list for the first root contained in
// name, or nil.
func (t Table) PoisonTerms(name string) []string {
	lower := strings.ToLower(name)
	for _, e := range t.entries {
		if e.Root != "" && strings.Contains(lower, e.Root) {
			return append([]string(nil), e.Poison...)
		}
	}
	return nil
}

type Disambiguator struct {
	searcher search.Searcher
	table    Table
}

func NewDisambiguator(searcher search.Searcher, table Table) *Disambiguator {
	return &Disambiguator{searcher: searcher, table: table}
}

func (d *Disambiguator) Resolve(ctx context.Context, companyName string) types.TargetEntity {
	name := strings.TrimSpace(companyName)

	ticker, ok := d.ResolveTicker(ctx, name)
	if !ok {
		log.Printf("Ticker unresolved for %s. Continuing without ticker.", name)
	}

	return types.TargetEntity{
		CanonicalName: name,
		Ticker:        ticker,
		PoisonTerms:   d.table.PoisonTerms(name),
	}
}

// ResolveTicker issues a single search and reads the ticker out of the first
// result's quote/<TICKER>/ path. Failures are reported as !ok, never as errors.
func (d *Disambiguator) ResolveTicker(ctx context.Context, companyName string) (string, bool) {
	if d.searcher == nil {
		return "", false
	}

	results, err := d.searcher.Search(ctx, fmt.Sprintf(tickerQueryTemplate, companyName), search.Options{MaxResults: 1})
	if err != nil {
		log.Printf("Warning: ticker search failed for %s: %v", companyName, err)
		return "", false
	}
	if len(results) == 0 {
		return "", false
	}

	return TickerFromURL(results[0].URL)
}

func TickerFromURL(raw string) (string, bool) {
	_, after, found := strings.Cut(raw, "quote/")
	if !found {
		return "", false
	}

	segment, _, _ := strings.Cut(after, "/")
	segment, _, _ = strings.Cut(segment, "?")
	segment, _, _ = strings.Cut(segment, "#")

	ticker, err := url.PathUnescape(segment)
	if err != nil {
		ticker = segment
	}
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return "", false
	}
	return ticker, true
}
