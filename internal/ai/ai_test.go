package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/labourscan/internal/types"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

var longText = strings.Repeat("Bajaj Auto Limited exceptional item labour code provision. ", 20)

func TestShortTextIsDegraded(t *testing.T) {
	gen := &fakeGenerator{}
	r := NewSynthesizer(gen, 0).Synthesize(context.Background(), "too short", "Bajaj Auto", nil)

	assert.True(t, r.Degraded)
	assert.Equal(t, "Insufficient Data", r.ExecutiveSummary.KeyFinding)
	assert.Empty(t, gen.prompts)
}

func TestNilGeneratorIsDegraded(t *testing.T) {
	r := NewSynthesizer(nil, 0).Synthesize(context.Background(), longText, "Bajaj Auto", nil)
	assert.True(t, r.Degraded)
	assert.Equal(t, "Bajaj Auto", r.CompanyName)
}

func TestGeneratorErrorIsDegraded(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	r := NewSynthesizer(gen, 0).Synthesize(context.Background(), longText, "Bajaj Auto", nil)

	assert.True(t, r.Degraded)
	assert.Equal(t, "High", r.OverallRiskScore)
	assert.Contains(t, r.ExecutiveSummary.KeyFinding, "quota exceeded")
}

func TestSynthesizeParsesAndPatches(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"company_name": "Bajaj Auto Ltd",
		"report_period": "Q3 FY26",
		"overall_risk_score": "Medium",
		"api_financials": {"revenue": "₹12,000 Cr", "ebitda": "N/A", "net_income": "", "employee_cost": "0"},
		"labour_code_impact": {"provision_amount": "61 Crores"}
	}`}
	market := &types.MarketData{Ticker: "BAJAJ-AUTO.NS", Revenue: "₹49,870.54 Cr", EBITDA: "₹10,125.00 Cr", NetIncome: "₹7,650.00 Cr"}

	r := NewSynthesizer(gen, 0).Synthesize(context.Background(), longText, "Bajaj Auto", market)

	require.False(t, r.Degraded)
	assert.Equal(t, "Bajaj Auto Ltd", r.CompanyName)
	assert.Equal(t, "61 Crores", r.LabourCodeImpact.ProvisionAmount)
	assert.Equal(t, "₹12,000 Cr", r.APIFinancials.Revenue)
	assert.Equal(t, "₹10,125.00 Cr (API)", r.APIFinancials.EBITDA)
	assert.Equal(t, "₹7,650.00 Cr (API)", r.APIFinancials.NetIncome)
	assert.Equal(t, "N/A (API)", r.APIFinancials.EmployeeCost)
	assert.Equal(t, []string{"Refer to Annual Report Note: Related Party Disclosures"}, r.Vendors)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "TARGET COMPANY: Bajaj Auto")
	assert.Contains(t, gen.prompts[0], "labour code provision")
}

func TestMalformedJSONIsRepaired(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"company_name\": \"Tata Motors Ltd\", \"overall_risk_score\": \"Low\", \"vendors\": [\"Tata AutoComp\",]}\n```"}

	r := NewSynthesizer(gen, 0).Synthesize(context.Background(), longText, "Tata Motors", nil)

	require.False(t, r.Degraded)
	assert.Equal(t, "Tata Motors Ltd", r.CompanyName)
	assert.Equal(t, []string{"Tata AutoComp"}, r.Vendors)
}

func TestPatchFinancialsNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		PatchFinancials(nil, &types.MarketData{})
		PatchFinancials(&types.AuditReport{}, nil)
	})
}

func TestReportSchemaRequiresCoreSections(t *testing.T) {
	s := reportSchema()
	assert.Contains(t, s.Required, "labor_code_analysis")
	assert.Contains(t, s.Properties, "labour_code_impact")
	assert.Len(t, s.Properties["labor_code_analysis"].Properties["wages"].Properties["equal_pay_status"].Properties["status"].Enum, 8)
}
