package types

const NotAvailable = "N/A"

// Evidence statuses the synthesizer may emit.
const (
	StatusCompliant      = "Compliant"
	StatusNonCompliant   = "Non-Compliant"
	StatusRiskIdentified = "Risk Identified"
	StatusNotDisclosed   = "Not Disclosed"
	StatusGap            = "Gap"
	StatusPositive       = "Positive"
	StatusNegative       = "Negative"
)

type Evidence struct {
	Status          string `json:"status"`
	EvidenceSnippet string `json:"evidence_snippet"`
	MetricValue     string `json:"metric_value,omitempty"`
	SourceRef       string `json:"source_ref"`
}

type WagesCompliance struct {
	MinimumWageStatus   Evidence `json:"minimum_wage_status"`
	EqualPayStatus      Evidence `json:"equal_pay_status"`
	ProfitSharingStatus Evidence `json:"profit_sharing_status"`
}

type OSHCompliance struct {
	SafetySystemsStatus   Evidence `json:"safety_systems_status"`
	AccidentRecordsStatus Evidence `json:"accident_records_status"`
	AuditScoresStatus     Evidence `json:"audit_scores_status"`
}

type IndustrialRelations struct {
	UnionizationStatus         Evidence `json:"unionization_status"`
	CollectiveBargainingStatus Evidence `json:"collective_bargaining_status"`
	DisputesStrikesStatus      Evidence `json:"disputes_strikes_status"`
}

type SocialSecurityWelfare struct {
	LeavePolicyStatus        Evidence `json:"leave_policy_status"`
	RetirementBenefitsStatus Evidence `json:"retirement_benefits_status"`
	HealthcareWelfareStatus  Evidence `json:"healthcare_welfare_status"`
}

type ExecutiveSummary struct {
	Overview   string `json:"overview"`
	KeyFinding string `json:"key_finding"`
}

type LaborCodeAnalysis struct {
	Wages          WagesCompliance       `json:"wages"`
	OSH            OSHCompliance         `json:"osh"`
	IR             IndustrialRelations   `json:"ir"`
	SocialSecurity SocialSecurityWelfare `json:"social_security"`
}

type SupplyChainCompliance struct {
	DueDiligence               Evidence `json:"due_diligence"`
	ForcedLaborPolicies        Evidence `json:"forced_labor_policies"`
	ConflictMinerals           Evidence `json:"conflict_minerals"`
	PrincipalEmployerLiability string   `json:"principal_employer_liability"`
}

type BusinessImpact struct {
	OperationalEfficiency string `json:"operational_efficiency"`
	FinancialPerformance  string `json:"financial_performance"`
	BrandReputation       string `json:"brand_reputation"`
	InnovationRnD         string `json:"innovation_rnd"`
}

type StrategicPlan struct {
	Recommendations []string `json:"recommendations"`
}

type WorkforceData struct {
	Category     string `json:"category"`
	TotalCount   string `json:"total_count"`
	MaleCount    string `json:"male_count"`
	FemaleCount  string `json:"female_count"`
	TurnoverRate string `json:"turnover_rate"`
}

type FinancialMetrics struct {
	Revenue      string `json:"revenue"`
	EBITDA       string `json:"ebitda"`
	NetIncome    string `json:"net_income"`
	EmployeeCost string `json:"employee_cost"`
}

type VendorProfile struct {
	VendorName       string `json:"vendor_name"`
	Relationship     string `json:"relationship"`
	ComplianceStatus string `json:"compliance_status"`
	KeyMetrics       string `json:"key_metrics"`
}

type BusinessIntelligence struct {
	KeyProducts    []string `json:"key_products"`
	MajorCustomers []string `json:"major_customers"`
	MarketPosition string   `json:"market_position"`
}

type LabourCodeProvision struct {
	ProvisionAmount   string `json:"provision_amount"`
	ImpactDescription string `json:"impact_description"`
	FiscalPeriod      string `json:"fiscal_period"`
}

type AuditReport struct {
	CompanyName           string                `json:"company_name"`
	ReportPeriod          string                `json:"report_period"`
	OverallRiskScore      string                `json:"overall_risk_score"`
	ExecutiveSummary      ExecutiveSummary      `json:"executive_summary"`
	LaborCodeAnalysis     LaborCodeAnalysis     `json:"labor_code_analysis"`
	SupplyChainCompliance SupplyChainCompliance `json:"supply_chain_compliance"`
	BusinessImpact        BusinessImpact        `json:"business_impact"`
	StrategicPlan         StrategicPlan         `json:"strategic_plan"`
	WorkforceProfile      []WorkforceData       `json:"workforce_profile"`
	SupplyChainProfile    []VendorProfile       `json:"supply_chain_profile"`
	APIFinancials         FinancialMetrics      `json:"api_financials"`
	LabourCodeImpact      LabourCodeProvision   `json:"labour_code_impact"`
	BusinessIntel         BusinessIntelligence  `json:"business_intel"`
	Vendors               []string              `json:"vendors"`

	// Degraded is set when the synthesizer could not produce a real report.
	Degraded bool `json:"degraded,omitempty"`
}

// DegradedReport is the placeholder returned when synthesis fails. Every
// evidence field carries the failure message with status Gap.
func DegradedReport(company string, reason string) *AuditReport {
	ev := Evidence{Status: StatusGap, EvidenceSnippet: reason, SourceRef: "System"}
	return &AuditReport{
		CompanyName:      company,
		ReportPeriod:     NotAvailable,
		OverallRiskScore: "High",
		ExecutiveSummary: ExecutiveSummary{Overview: "Failed.", KeyFinding: reason},
		LaborCodeAnalysis: LaborCodeAnalysis{
			Wages:          WagesCompliance{MinimumWageStatus: ev, EqualPayStatus: ev, ProfitSharingStatus: ev},
			OSH:            OSHCompliance{SafetySystemsStatus: ev, AccidentRecordsStatus: ev, AuditScoresStatus: ev},
			IR:             IndustrialRelations{UnionizationStatus: ev, CollectiveBargainingStatus: ev, DisputesStrikesStatus: ev},
			SocialSecurity: SocialSecurityWelfare{LeavePolicyStatus: ev, RetirementBenefitsStatus: ev, HealthcareWelfareStatus: ev},
		},
		SupplyChainCompliance: SupplyChainCompliance{
			DueDiligence:               ev,
			ForcedLaborPolicies:        ev,
			ConflictMinerals:           ev,
			PrincipalEmployerLiability: NotAvailable,
		},
		BusinessImpact: BusinessImpact{
			OperationalEfficiency: NotAvailable,
			FinancialPerformance:  NotAvailable,
			BrandReputation:       NotAvailable,
			InnovationRnD:         NotAvailable,
		},
		StrategicPlan:      StrategicPlan{Recommendations: []string{"Retry Audit"}},
		WorkforceProfile:   []WorkforceData{},
		SupplyChainProfile: []VendorProfile{},
		APIFinancials: FinancialMetrics{
			Revenue:      NotAvailable,
			EBITDA:       NotAvailable,
			NetIncome:    NotAvailable,
			EmployeeCost: NotAvailable,
		},
		LabourCodeImpact: LabourCodeProvision{
			ProvisionAmount:   NotAvailable,
			ImpactDescription: NotAvailable,
			FiscalPeriod:      "Q3 FY26",
		},
		BusinessIntel: BusinessIntelligence{MarketPosition: NotAvailable},
		Vendors:       []string{},
		Degraded:      true,
	}
}
