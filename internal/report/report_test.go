package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/labourscan/internal/types"
)

func sampleReport() *types.AuditReport {
	r := &types.AuditReport{
		CompanyName:      "Bajaj Auto Ltd",
		ReportPeriod:     "Q3 FY26",
		OverallRiskScore: "Medium",
		ExecutiveSummary: types.ExecutiveSummary{Overview: "Stable posture.", KeyFinding: "Gratuity provision | one-time"},
		LabourCodeImpact: types.LabourCodeProvision{ProvisionAmount: "61 Crores", FiscalPeriod: "Q3 FY26"},
		WorkforceProfile: []types.WorkforceData{{Category: "Permanent Employees", TotalCount: "10000", TurnoverRate: "7.86%"}},
		StrategicPlan:    types.StrategicPlan{Recommendations: []string{"Audit contract labour", "Publish pay ratios"}},
		Vendors:          []string{"A", "B", "C", "D", "E", "F"},
		BusinessIntel:    types.BusinessIntelligence{KeyProducts: []string{"Pulsar", "Chetak"}},
	}
	r.LaborCodeAnalysis.Wages.EqualPayStatus = types.Evidence{Status: types.StatusRiskIdentified, EvidenceSnippet: "Ratio 0.75", SourceRef: "[Source: BRSR, Page 12]"}
	r.LaborCodeAnalysis.Wages.MinimumWageStatus = types.Evidence{Status: types.StatusCompliant}
	return r
}

type recordingTracker struct {
	rows []Row
	err  error
}

func (r *recordingTracker) Upsert(ctx context.Context, row Row) error {
	r.rows = append(r.rows, row)
	return r.err
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(sampleReport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# Bajaj Auto Ltd: Labour Compliance Audit"))
	assert.Contains(t, md, "| Wages | Equal pay | Risk Identified | Ratio 0.75 | [Source: BRSR, Page 12] |")
	assert.Contains(t, md, `Gratuity provision | one-time`)
	assert.Contains(t, md, "| 61 Crores | N/A | Q3 FY26 |")
	assert.Contains(t, md, "1. Publish pay ratios")
	assert.Contains(t, md, "Pulsar, Chetak")
}

func TestMarkdownDegraded(t *testing.T) {
	md, err := Markdown(types.DegradedReport("Acme", "Insufficient Data"))
	require.NoError(t, err)
	assert.Contains(t, md, "**Status:** Degraded")
	assert.Contains(t, md, "Not disclosed.")
}

func TestHTML(t *testing.T) {
	page, err := HTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n", "Tata <Motors>")
	require.NoError(t, err)

	assert.Contains(t, page, "<title>Tata &lt;Motors&gt; Labour Compliance Audit</title>")
	assert.Contains(t, page, "<h1>Title</h1>")
	assert.Contains(t, page, "<table>")
}

func TestRenderWritesFilesAndTracksRow(t *testing.T) {
	dir := t.TempDir()
	tracker := &recordingTracker{}

	paths, err := NewRenderer(dir, tracker).Render(context.Background(), "Bajaj Auto", sampleReport())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Bajaj_Auto_Consolidated_Report.md"), paths.Markdown)
	assert.FileExists(t, paths.Markdown)
	assert.FileExists(t, paths.HTML)
	require.Len(t, tracker.rows, 1)
	assert.Equal(t, "Bajaj Auto Ltd", tracker.rows[0].Company)
}

func TestRenderIgnoresTrackerFailure(t *testing.T) {
	_, err := NewRenderer(t.TempDir(), &recordingTracker{err: errors.New("db down")}).
		Render(context.Background(), "Bajaj Auto", sampleReport())
	assert.NoError(t, err)
}

func TestFlatten(t *testing.T) {
	row := Flatten(sampleReport())

	assert.Equal(t, "Bajaj Auto Ltd", row.Company)
	assert.Equal(t, "61 Crores", row.LabourProvision)
	assert.Equal(t, types.NotAvailable, row.ProvisionDesc)
	assert.Equal(t, "A, B, C, D, E", row.TopVendors)
	assert.Equal(t, "Compliant", row.WageStatus)
	assert.Equal(t, types.NotAvailable, row.HealthStatus)
	assert.Equal(t, "7.86%", row.WorkforceTurnover)
	assert.Equal(t, "Audit contract labour", row.StrategicAction)
}

func TestCSVTrackerLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	tracker := NewCSVTracker(dir)
	ctx := context.Background()

	require.NoError(t, tracker.Upsert(ctx, Row{Company: "Bajaj Auto Ltd", Period: "Q3 FY26", RiskScore: "Low"}))
	require.NoError(t, tracker.Upsert(ctx, Row{Company: "Tata Motors Ltd", Period: "Q3 FY26", RiskScore: "High"}))
	require.NoError(t, tracker.Upsert(ctx, Row{Company: "Bajaj Auto Ltd", Period: "Q3 FY26", RiskScore: "Medium, revised"}))
	require.NoError(t, tracker.Upsert(ctx, Row{Company: "Bajaj Auto Ltd", Period: "Q2 FY26", RiskScore: "Low"}))

	rows, err := tracker.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tata Motors Ltd", rows[0].Company)
	assert.Equal(t, "Medium, revised", rows[1].RiskScore)
	assert.Equal(t, "Q2 FY26", rows[2].Period)

	data, err := os.ReadFile(tracker.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Company,Period,Risk Score,"))
}
