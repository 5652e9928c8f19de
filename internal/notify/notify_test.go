package notify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/mail.v2"

	"github.com/shanehull/labourscan/internal/config"
	"github.com/shanehull/labourscan/internal/types"
)

func sampleSummary() AuditSummary {
	r := &types.AuditReport{
		CompanyName:      "Tata Motors Ltd",
		ReportPeriod:     "Q3 FY26",
		OverallRiskScore: "High",
		ExecutiveSummary: types.ExecutiveSummary{Overview: "Heavy contract labour.", KeyFinding: "Provision of <61> Cr"},
		LabourCodeImpact: types.LabourCodeProvision{ProvisionAmount: "61 Crores"},
		StrategicPlan:    types.StrategicPlan{Recommendations: []string{"Audit vendors", "Disclose wage ratios"}},
	}
	return AuditSummary{RunID: "run-1", Report: r, Coverage: []string{"BRSR", "Financials"}}
}

func TestHTMLEmailRenderer(t *testing.T) {
	msg, err := NewHTMLEmailRenderer().Render(sampleSummary())
	require.NoError(t, err)

	assert.Equal(t, "Labour Audit: Tata Motors Ltd - High risk", msg.Subject)
	assert.Contains(t, msg.HTML, `class="badge risk-high"`)
	assert.Contains(t, msg.HTML, "Provision of &lt;61&gt; Cr")
	assert.Contains(t, msg.HTML, "BRSR, Financials")
	assert.Contains(t, msg.HTML, "<li>Audit vendors</li>")
	assert.Contains(t, msg.Text, "Risk Score: High")
	assert.Contains(t, msg.Text, "• Disclose wage ratios")
	assert.Contains(t, msg.Text, "Run: run-1")
}

func TestHTMLEmailRendererDegraded(t *testing.T) {
	msg, err := NewHTMLEmailRenderer().Render(AuditSummary{Report: types.DegradedReport("Acme", "AI Error")})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "DEGRADED REPORT")
	assert.Contains(t, msg.HTML, "Degraded")
}

func TestHTMLEmailRendererNilReport(t *testing.T) {
	_, err := NewHTMLEmailRenderer().Render(AuditSummary{})
	assert.Error(t, err)
}

func TestRiskClass(t *testing.T) {
	assert.Equal(t, "risk-low", riskClass("Low"))
	assert.Equal(t, "risk-medium", riskClass("MEDIUM"))
	assert.Equal(t, "risk-high", riskClass("High"))
	assert.Equal(t, "risk-high", riskClass("N/A"))
}

func TestEmailSenderBuildsMessage(t *testing.T) {
	s := NewEmailSender(config.Email{SMTPUser: "bot@example.com", ToEmail: "desk@example.com"})
	var sent *gomail.Message
	s.send = func(m *gomail.Message) error {
		sent = m
		return nil
	}

	require.NoError(t, s.Send(&RenderedMessage{Subject: "S", Text: "plain", HTML: "<p>html</p>"}))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"bot@example.com"}, sent.GetHeader("From"))
	assert.Equal(t, []string{"desk@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"S"}, sent.GetHeader("Subject"))
}

func TestEmailSenderPropagatesError(t *testing.T) {
	s := NewEmailSender(config.Email{ToEmail: "desk@example.com"})
	s.send = func(*gomail.Message) error { return errors.New("dial failed") }
	assert.Error(t, s.Send(&RenderedMessage{Subject: "S", Text: "plain"}))
}

type recordingSender struct{ msgs []*RenderedMessage }

func (r *recordingSender) Send(msg *RenderedMessage) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestNotify(t *testing.T) {
	s := &recordingSender{}
	require.NoError(t, NewNotifier(NewHTMLEmailRenderer(), s).Notify(sampleSummary()))
	require.Len(t, s.msgs, 1)
	assert.Contains(t, s.msgs[0].Subject, "Tata Motors Ltd")

	assert.Error(t, NewNotifier(NewHTMLEmailRenderer(), s).Notify(AuditSummary{}))
	assert.Len(t, s.msgs, 1)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	data := sampleSummary()
	data.ReportPath = "/tmp/Tata_Motors_Consolidated_Report.md"
	PrintSummary(&buf, data)

	out := buf.String()
	assert.Contains(t, out, "AUDIT COMPLETE: Tata Motors Ltd")
	assert.Contains(t, out, "Documents:  BRSR, Financials")
	assert.Contains(t, out, "\t- Audit vendors\n")
	assert.Contains(t, out, "Report saved to /tmp/Tata_Motors_Consolidated_Report.md.")

	buf.Reset()
	PrintSummary(&buf, AuditSummary{})
	assert.Contains(t, buf.String(), "No report produced.")
}
