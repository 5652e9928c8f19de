/*
Package sector scans a set of market segments for disclosed labour code
provisions, one quick search per company.
*/
package sector

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/shanehull/labourscan/internal/config"
	"github.com/shanehull/labourscan/internal/search"
)

const (
	StatusProvisionLikely = "Provision Likely"
	StatusNotDisclosed    = "Not Disclosed"
	StatusError           = "Error"

	ImpactHigh    = "High Impact"
	ImpactMedium  = "Medium Impact"
	ImpactStable  = "Stable"
	ImpactUnknown = "Unknown"

	queryTemplate = `"%s" %s financial results "exceptional item" "labour code" provision amount crore`
)

var amountPattern = regexp.MustCompile(`(?i)(?:Rs\.?|INR|₹)\s?(\d+[\.,]?\d*)\s?(crore|cr)`)

type Finding struct {
	Segment   string `json:"segment"`
	Company   string `json:"company"`
	Status    string `json:"status"`
	Amount    string `json:"amount"`
	Impact    string `json:"impact"`
	SourceURL string `json:"source_url"`
}

type Scanner struct {
	searcher search.Searcher
	quarter  string
}

func NewScanner(searcher search.Searcher, periods config.Periods) *Scanner {
	quarter := periods.Quarter
	if quarter == "" {
		quarter = "Q3 FY26"
	}
	return &Scanner{searcher: searcher, quarter: quarter}
}

// Scan returns one finding per company. Segments are visited in sorted order
// and companies in the order given.
func (s *Scanner) Scan(ctx context.Context, segments map[string][]string) []Finding {
	names := make([]string, 0, len(segments))
	for name := range segments {
		names = append(names, name)
	}
	sort.Strings(names)

	var findings []Finding
	for _, segment := range names {
		for _, company := range segments[segment] {
			f := s.scanCompany(ctx, company)
			f.Segment = segment
			findings = append(findings, f)
		}
	}
	return findings
}

func (s *Scanner) Query(company string) string {
	return fmt.Sprintf(queryTemplate, company, s.quarter)
}

func (s *Scanner) scanCompany(ctx context.Context, company string) Finding {
	results, err := s.searcher.Search(ctx, s.Query(company), search.Options{MaxResults: 1, Depth: search.DepthBasic})
	if err != nil {
		log.Printf("Warning: sector search failed for %s: %v", company, err)
		return Finding{Company: company, Status: StatusError, Amount: "-", Impact: ImpactUnknown, SourceURL: "#"}
	}

	f := Finding{Company: company, Status: StatusNotDisclosed, Amount: "-", Impact: ImpactStable, SourceURL: "#"}
	if len(results) == 0 {
		return f
	}

	top := results[0]
	if top.URL != "" {
		f.SourceURL = top.URL
	}
	Classify(top.Content, &f)
	return f
}

// Classify sets status, amount and impact from a search snippet. A crore
// figure only counts when the snippet also mentions a provision or an
// exceptional item.
func Classify(content string, f *Finding) {
	lower := strings.ToLower(content)
	if !strings.Contains(lower, "provision") && !strings.Contains(lower, "exceptional") {
		return
	}

	f.Status = StatusProvisionLikely
	f.Impact = ImpactMedium
	if m := amountPattern.FindStringSubmatch(content); m != nil {
		f.Amount = fmt.Sprintf("₹ %s Cr", m[1])
		f.Impact = ImpactHigh
	}
}
