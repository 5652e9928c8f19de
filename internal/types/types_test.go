package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusionSetGrowsMonotonically(t *testing.T) {
	s := NewExclusionSet("Finance", " holdings ")
	assert.Equal(t, 2, s.Len())

	added := s.Add("finance", "housing", "")
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"finance", "holdings", "housing"}, s.Terms())
	assert.True(t, s.Contains("HOLDINGS"))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "Bajaj_Auto_Ltd", SafeName(` "Bajaj Auto Ltd" `))
	assert.Equal(t, "Tata_Motors", TargetEntity{CanonicalName: "Tata Motors"}.SafeName())
}

func TestCategoryOrderAndTags(t *testing.T) {
	assert.Len(t, AllCategories, 4)
	assert.Equal(t, FinancialResults, AllCategories[0])
	assert.Equal(t, "BRSR_Report", SustainabilityReport.Tag())
	assert.Equal(t, "Investor Presentation", InvestorPresentation.Label())
	assert.NotContains(t, AllCategories, SupportingDocument)
	assert.Equal(t, "Supporting_Document", SupportingDocument.Tag())
}

func TestDegradedReport(t *testing.T) {
	r := DegradedReport("Acme", "Insufficient Data")
	assert.True(t, r.Degraded)
	assert.Equal(t, "High", r.OverallRiskScore)
	assert.Equal(t, StatusGap, r.LaborCodeAnalysis.Wages.EqualPayStatus.Status)
	assert.Equal(t, "Insufficient Data", r.ExecutiveSummary.KeyFinding)
}
