/*
Package report renders audit reports as Markdown and HTML documents and keeps
the master compliance tracking table up to date.
*/
package report

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/shanehull/labourscan/internal/types"
)

const reportBase = "_Consolidated_Report"

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var funcs = template.FuncMap{
	"join": strings.Join,
	"cell": func(s string) string {
		s = strings.ReplaceAll(s, "|", `\|`)
		return strings.Join(strings.Fields(s), " ")
	},
	"orNA": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return types.NotAvailable
		}
		return s
	},
}

var markdownTmpl = template.Must(template.New("report").Funcs(funcs).Parse(markdownTemplate))

// Paths lists the files written for one report.
type Paths struct {
	Markdown string
	HTML     string
}

type Renderer struct {
	dir     string
	tracker Tracker
}

// NewRenderer writes documents into dir. A nil tracker disables the tracking
// table.
func NewRenderer(dir string, tracker Tracker) *Renderer {
	return &Renderer{dir: dir, tracker: tracker}
}

// Render writes the Markdown and HTML reports for name and upserts the
// tracker row. Tracker failures are logged, not returned.
func (r *Renderer) Render(ctx context.Context, name string, report *types.AuditReport) (Paths, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("failed to create report directory %s: %w", r.dir, err)
	}

	md, err := Markdown(report)
	if err != nil {
		return Paths{}, err
	}
	htmlDoc, err := HTML(md, report.CompanyName)
	if err != nil {
		return Paths{}, err
	}

	base := filepath.Join(r.dir, types.SafeName(name)+reportBase)
	paths := Paths{Markdown: base + ".md", HTML: base + ".html"}

	if err := os.WriteFile(paths.Markdown, []byte(md), 0o644); err != nil {
		return Paths{}, fmt.Errorf("failed to write %s: %w", paths.Markdown, err)
	}
	if err := os.WriteFile(paths.HTML, []byte(htmlDoc), 0o644); err != nil {
		return Paths{}, fmt.Errorf("failed to write %s: %w", paths.HTML, err)
	}

	if r.tracker != nil {
		if err := r.tracker.Upsert(ctx, Flatten(report)); err != nil {
			log.Printf("Warning: failed to update compliance tracker: %v", err)
		} else {
			log.Printf("Master tracker updated.")
		}
	}
	return paths, nil
}

func Markdown(report *types.AuditReport) (string, error) {
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("failed to render markdown report: %w", err)
	}
	return buf.String(), nil
}

// HTML converts a Markdown report into a standalone HTML page.
func HTML(md string, title string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&page, "<title>%s Labour Compliance Audit</title>\n", html.EscapeString(title))
	page.WriteString("<style>body{font-family:Arial,sans-serif;max-width:960px;margin:auto;color:#333}table{border-collapse:collapse;width:100%}th,td{border:1px solid #ddd;padding:6px;text-align:left}th{background:#0A1F44;color:#fff}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

const markdownTemplate = `# {{.CompanyName}}: Labour Compliance Audit

**Period:** {{orNA .ReportPeriod}} | **Overall Risk:** {{orNA .OverallRiskScore}}{{if .Degraded}} | **Status:** Degraded{{end}}

## Executive Summary

{{orNA .ExecutiveSummary.Overview}}

> **Key finding:** {{orNA .ExecutiveSummary.KeyFinding}}

## Labour Code Impact

| Provision | Description | Period |
|---|---|---|
| {{cell (orNA .LabourCodeImpact.ProvisionAmount)}} | {{cell (orNA .LabourCodeImpact.ImpactDescription)}} | {{cell (orNA .LabourCodeImpact.FiscalPeriod)}} |

## Financials

| Revenue | EBITDA | Net Income | Employee Cost |
|---|---|---|---|
| {{cell (orNA .APIFinancials.Revenue)}} | {{cell (orNA .APIFinancials.EBITDA)}} | {{cell (orNA .APIFinancials.NetIncome)}} | {{cell (orNA .APIFinancials.EmployeeCost)}} |

## Labour Code Analysis

| Area | Check | Status | Evidence | Source |
|---|---|---|---|---|
{{with .LaborCodeAnalysis.Wages}}| Wages | Minimum wage | {{cell .MinimumWageStatus.Status}} | {{cell .MinimumWageStatus.EvidenceSnippet}} | {{cell .MinimumWageStatus.SourceRef}} |
| Wages | Equal pay | {{cell .EqualPayStatus.Status}} | {{cell .EqualPayStatus.EvidenceSnippet}} | {{cell .EqualPayStatus.SourceRef}} |
| Wages | Profit sharing | {{cell .ProfitSharingStatus.Status}} | {{cell .ProfitSharingStatus.EvidenceSnippet}} | {{cell .ProfitSharingStatus.SourceRef}} |
{{end}}{{with .LaborCodeAnalysis.OSH}}| OSH | Safety systems | {{cell .SafetySystemsStatus.Status}} | {{cell .SafetySystemsStatus.EvidenceSnippet}} | {{cell .SafetySystemsStatus.SourceRef}} |
| OSH | Accident records | {{cell .AccidentRecordsStatus.Status}} | {{cell .AccidentRecordsStatus.EvidenceSnippet}} | {{cell .AccidentRecordsStatus.SourceRef}} |
| OSH | Audit scores | {{cell .AuditScoresStatus.Status}} | {{cell .AuditScoresStatus.EvidenceSnippet}} | {{cell .AuditScoresStatus.SourceRef}} |
{{end}}{{with .LaborCodeAnalysis.IR}}| IR | Unionization | {{cell .UnionizationStatus.Status}} | {{cell .UnionizationStatus.EvidenceSnippet}} | {{cell .UnionizationStatus.SourceRef}} |
| IR | Collective bargaining | {{cell .CollectiveBargainingStatus.Status}} | {{cell .CollectiveBargainingStatus.EvidenceSnippet}} | {{cell .CollectiveBargainingStatus.SourceRef}} |
| IR | Disputes and strikes | {{cell .DisputesStrikesStatus.Status}} | {{cell .DisputesStrikesStatus.EvidenceSnippet}} | {{cell .DisputesStrikesStatus.SourceRef}} |
{{end}}{{with .LaborCodeAnalysis.SocialSecurity}}| Social security | Leave policy | {{cell .LeavePolicyStatus.Status}} | {{cell .LeavePolicyStatus.EvidenceSnippet}} | {{cell .LeavePolicyStatus.SourceRef}} |
| Social security | Retirement benefits | {{cell .RetirementBenefitsStatus.Status}} | {{cell .RetirementBenefitsStatus.EvidenceSnippet}} | {{cell .RetirementBenefitsStatus.SourceRef}} |
| Social security | Healthcare and welfare | {{cell .HealthcareWelfareStatus.Status}} | {{cell .HealthcareWelfareStatus.EvidenceSnippet}} | {{cell .HealthcareWelfareStatus.SourceRef}} |
{{end}}
## Supply Chain

| Check | Status | Evidence |
|---|---|---|
{{with .SupplyChainCompliance}}| Due diligence | {{cell .DueDiligence.Status}} | {{cell .DueDiligence.EvidenceSnippet}} |
| Forced labour policies | {{cell .ForcedLaborPolicies.Status}} | {{cell .ForcedLaborPolicies.EvidenceSnippet}} |
| Conflict minerals | {{cell .ConflictMinerals.Status}} | {{cell .ConflictMinerals.EvidenceSnippet}} |

**Principal employer liability:** {{orNA .PrincipalEmployerLiability}}
{{end}}
{{if .Vendors}}**Key vendors:** {{join .Vendors ", "}}
{{end}}
## Workforce Profile
{{if .WorkforceProfile}}
| Category | Total | Male | Female | Turnover |
|---|---|---|---|---|
{{range .WorkforceProfile}}| {{cell .Category}} | {{cell .TotalCount}} | {{cell .MaleCount}} | {{cell .FemaleCount}} | {{cell .TurnoverRate}} |
{{end}}{{else}}
Not disclosed.
{{end}}
## Business Intelligence

- **Market position:** {{orNA .BusinessIntel.MarketPosition}}
- **Key products:** {{if .BusinessIntel.KeyProducts}}{{join .BusinessIntel.KeyProducts ", "}}{{else}}N/A{{end}}
- **Major customers:** {{if .BusinessIntel.MajorCustomers}}{{join .BusinessIntel.MajorCustomers ", "}}{{else}}N/A{{end}}

## Business Impact

- **Operational efficiency:** {{orNA .BusinessImpact.OperationalEfficiency}}
- **Financial performance:** {{orNA .BusinessImpact.FinancialPerformance}}
- **Brand reputation:** {{orNA .BusinessImpact.BrandReputation}}
- **Innovation and R&D:** {{orNA .BusinessImpact.InnovationRnD}}

## Strategic Plan
{{range .StrategicPlan.Recommendations}}
1. {{.}}{{end}}
`
