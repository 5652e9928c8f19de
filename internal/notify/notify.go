/*
Package notify reports finished audits on the console and by email.
*/
package notify

import (
	"fmt"
	"io"
	"strings"

	"github.com/shanehull/labourscan/internal/types"
)

// AuditSummary is everything a notification needs about one finished audit.
type AuditSummary struct {
	RunID      string
	Report     *types.AuditReport
	Coverage   []string
	ReportPath string
	Cached     bool
}

type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

type Renderer interface {
	Render(data AuditSummary) (*RenderedMessage, error)
}

type Sender interface {
	Send(msg *RenderedMessage) error
}

// Notifier renders a summary and hands it to a sender.
type Notifier struct {
	renderer Renderer
	sender   Sender
}

func NewNotifier(r Renderer, s Sender) *Notifier {
	return &Notifier{renderer: r, sender: s}
}

func (n *Notifier) Notify(data AuditSummary) error {
	msg, err := n.renderer.Render(data)
	if err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}
	return n.sender.Send(msg)
}

// PrintSummary writes a console summary of the audit to w.
func PrintSummary(w io.Writer, data AuditSummary) {
	r := data.Report
	if r == nil {
		fmt.Fprintln(w, "\n-------------------------------------------")
		fmt.Fprintln(w, "No report produced.")
		fmt.Fprintln(w, "-------------------------------------------")
		return
	}

	fmt.Fprintln(w, "\n===========================================")
	fmt.Fprintf(w, "AUDIT COMPLETE: %s\n", r.CompanyName)
	fmt.Fprintln(w, "===========================================")
	fmt.Fprintf(w, "Period:     %s\n", r.ReportPeriod)
	fmt.Fprintf(w, "Risk Score: %s\n", r.OverallRiskScore)
	fmt.Fprintf(w, "Provision:  %s\n", r.LabourCodeImpact.ProvisionAmount)
	if data.Cached {
		fmt.Fprintln(w, "Source:     archive")
	} else if len(data.Coverage) > 0 {
		fmt.Fprintf(w, "Documents:  %s\n", strings.Join(data.Coverage, ", "))
	}
	if r.Degraded {
		fmt.Fprintln(w, "Status:     DEGRADED (synthesis unavailable)")
	}
	if r.ExecutiveSummary.KeyFinding != "" {
		fmt.Fprintf(w, "Key Finding:\n\t%s\n", r.ExecutiveSummary.KeyFinding)
	}
	if recs := r.StrategicPlan.Recommendations; len(recs) > 0 {
		fmt.Fprintf(w, "Recommendations:\n%s", formatBulletList(recs))
	}

	fmt.Fprintln(w, "\n===========================================")
	if data.ReportPath != "" {
		fmt.Fprintf(w, "Report saved to %s.\n", data.ReportPath)
	}
	fmt.Fprintln(w, "===========================================")
}

func formatBulletList(points []string) string {
	var sb strings.Builder
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("\t- %s\n", p))
	}
	return sb.String()
}
