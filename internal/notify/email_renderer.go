package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// HTMLEmailRenderer renders audit summaries as HTML emails with a plain text
// fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Funcs(template.FuncMap{
		"riskClass": riskClass,
	}).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

func (r *HTMLEmailRenderer) Render(data AuditSummary) (*RenderedMessage, error) {
	if data.Report == nil {
		return nil, fmt.Errorf("no report to render")
	}
	subject := fmt.Sprintf("Labour Audit: %s - %s risk", data.Report.CompanyName, data.Report.OverallRiskScore)

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

func riskClass(score string) string {
	switch strings.ToLower(score) {
	case "low":
		return "risk-low"
	case "medium":
		return "risk-medium"
	}
	return "risk-high"
}

func renderPlainText(data AuditSummary) string {
	r := data.Report
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s - Labour Compliance Audit (%s)\n", r.CompanyName, r.ReportPeriod))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if r.Degraded {
		sb.WriteString("DEGRADED REPORT\n\n")
	}

	sb.WriteString(fmt.Sprintf("Risk Score: %s\n", r.OverallRiskScore))
	sb.WriteString(fmt.Sprintf("Labour Code Provision: %s\n", r.LabourCodeImpact.ProvisionAmount))
	if len(data.Coverage) > 0 {
		sb.WriteString(fmt.Sprintf("Documents: %s\n", strings.Join(data.Coverage, ", ")))
	}
	if data.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s\n", data.RunID))
	}
	sb.WriteString("\n")

	if r.ExecutiveSummary.Overview != "" {
		sb.WriteString("SUMMARY\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		sb.WriteString(r.ExecutiveSummary.Overview + "\n\n")
	}

	if len(r.StrategicPlan.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		for _, rec := range r.StrategicPlan.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
