package types

import (
	"sort"
	"strings"
)

type TargetEntity struct {
	CanonicalName string
	Ticker        string
	PoisonTerms   []string
}

func (t TargetEntity) HasTicker() bool {
	return t.Ticker != ""
}

// SafeName is the filesystem-friendly form of the canonical name used for
// stored documents and reports.
func (t TargetEntity) SafeName() string {
	return SafeName(t.CanonicalName)
}

func SafeName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `"`, "")
	return strings.ReplaceAll(name, " ", "_")
}

type DocumentCategory int

const (
	FinancialResults DocumentCategory = iota
	InvestorPresentation
	AnnualReportVendors
	SustainabilityReport

	// SupportingDocument marks files supplied by hand rather than hunted.
	SupportingDocument
)

// AllCategories is the fixed order in which categories are hunted.
var AllCategories = []DocumentCategory{
	FinancialResults,
	InvestorPresentation,
	AnnualReportVendors,
	SustainabilityReport,
}

func (c DocumentCategory) Tag() string {
	switch c {
	case FinancialResults:
		return "Financial_Results_Q3"
	case InvestorPresentation:
		return "Investor_Presentation"
	case AnnualReportVendors:
		return "Annual_Report_Vendors"
	case SustainabilityReport:
		return "BRSR_Report"
	}
	return "Supporting_Document"
}

func (c DocumentCategory) Label() string {
	switch c {
	case FinancialResults:
		return "Quarterly Results"
	case InvestorPresentation:
		return "Investor Presentation"
	case AnnualReportVendors:
		return "Annual Financial Report"
	case SustainabilityReport:
		return "BRSR / Sustainability Report"
	}
	return "Supporting Document"
}

func (c DocumentCategory) String() string {
	return c.Tag()
}

type CandidateDocument struct {
	SourceURL string
	TempPath  string
	Category  DocumentCategory
}

type VerifiedDocument struct {
	Category      DocumentCategory
	Filename      string
	StoragePath   string
	SourceURL     string
	ExtractedText string
}

// Extraction is what the document analyzer returns for one file. A failed
// extraction has empty Text.
type Extraction struct {
	Text      string
	Source    string
	Encrypted bool
	Scanned   bool
	Pages     int
}

// ExclusionSet only ever grows within a run.
type ExclusionSet struct {
	terms map[string]struct{}
}

func NewExclusionSet(terms ...string) *ExclusionSet {
	s := &ExclusionSet{terms: make(map[string]struct{})}
	s.Add(terms...)
	return s
}

// Add inserts the terms and returns how many were new.
func (s *ExclusionSet) Add(terms ...string) int {
	added := 0
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := s.terms[t]; !ok {
			s.terms[t] = struct{}{}
			added++
		}
	}
	return added
}

func (s *ExclusionSet) Contains(term string) bool {
	_, ok := s.terms[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

func (s *ExclusionSet) Len() int {
	return len(s.terms)
}

// Terms returns a sorted snapshot.
func (s *ExclusionSet) Terms() []string {
	out := make([]string, 0, len(s.terms))
	for t := range s.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

type RejectionRecord struct {
	SourceURL string
	Category  DocumentCategory
	Reason    string
	Learned   []string
}

type AttemptState struct {
	Attempt     int
	Exclusions  []string
	Accepted    []VerifiedDocument
	Rejections  []RejectionRecord
	AllRejected bool
}

type MarketData struct {
	Ticker       string `json:"ticker"`
	Revenue      string `json:"revenue"`
	EBITDA       string `json:"ebitda"`
	NetIncome    string `json:"net_income"`
	EmployeeCost string `json:"employee_cost"`
}

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

type ProgressEvent struct {
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	Progress   int          `json:"progress"`
	ReportData *AuditReport `json:"report_data,omitempty"`
}

func (e ProgressEvent) Terminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusError
}

// Conglomerate maps a group root name to keywords identifying its sibling
// entities.
type Conglomerate struct {
	Root   string   `yaml:"root"`
	Poison []string `yaml:"poison"`
}

// AliasRule lists legally equivalent names accepted for any target whose name
// contains Root.
type AliasRule struct {
	Root    string   `yaml:"root"`
	Aliases []string `yaml:"aliases"`
}
