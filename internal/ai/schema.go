package ai

import "google.golang.org/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func strList(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: desc}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func evidence(desc string) *genai.Schema {
	s := object(map[string]*genai.Schema{
		"status": {
			Type: genai.TypeString,
			Enum: []string{"Compliant", "Non-Compliant", "Risk Identified", "Not Disclosed", "Gap", "Positive", "Negative", "N/A"},
		},
		"evidence_snippet": str("Verbatim text extracted from the document."),
		"metric_value":     str("Extracted number, e.g. '220.4%' or 'ISO 45001'."),
		"source_ref":       str("Citation in the format '[Source: DocName, Page X]'."),
	}, "status", "evidence_snippet", "source_ref")
	s.Description = desc
	return s
}

func reportSchema() *genai.Schema {
	wages := object(map[string]*genai.Schema{
		"minimum_wage_status":   evidence("Minimum wage compliance."),
		"equal_pay_status":      evidence("Equal pay ratios."),
		"profit_sharing_status": evidence("Profit sharing or performance bonuses."),
	}, "minimum_wage_status", "equal_pay_status", "profit_sharing_status")

	osh := object(map[string]*genai.Schema{
		"safety_systems_status":   evidence("ISO 45001, safety committees, management systems."),
		"accident_records_status": evidence("Fatality and injury counts, LTIFR."),
		"audit_scores_status":     evidence("Internal safety audit scores."),
	}, "safety_systems_status", "accident_records_status", "audit_scores_status")

	ir := object(map[string]*genai.Schema{
		"unionization_status":          evidence("Union membership rates."),
		"collective_bargaining_status": evidence("CBA coverage percentage."),
		"disputes_strikes_status":      evidence("Strikes, lockouts or work stoppages."),
	}, "unionization_status", "collective_bargaining_status", "disputes_strikes_status")

	social := object(map[string]*genai.Schema{
		"leave_policy_status":        evidence("Parental, sick and family care leave."),
		"retirement_benefits_status": evidence("Pension, gratuity and PF compliance."),
		"healthcare_welfare_status":  evidence("Clinics, wellness and mental health support."),
	}, "leave_policy_status", "retirement_benefits_status", "healthcare_welfare_status")

	workforce := object(map[string]*genai.Schema{
		"category":      str("e.g. 'Permanent Employees' or 'Contract Workers'."),
		"total_count":   str(""),
		"male_count":    str(""),
		"female_count":  str(""),
		"turnover_rate": str(""),
	}, "category")

	vendor := object(map[string]*genai.Schema{
		"vendor_name":       str(""),
		"relationship":      str(""),
		"compliance_status": str(""),
		"key_metrics":       str(""),
	}, "vendor_name", "relationship", "compliance_status", "key_metrics")

	return object(map[string]*genai.Schema{
		"company_name":       str("Official listed name of the company."),
		"report_period":      str("Fiscal period covered, e.g. 'Q3 FY26'."),
		"overall_risk_score": str("Low, Medium or High."),
		"executive_summary": object(map[string]*genai.Schema{
			"overview":    str("High-level summary of the labour compliance posture."),
			"key_finding": str("The single most critical insight."),
		}, "overview", "key_finding"),
		"labor_code_analysis": object(map[string]*genai.Schema{
			"wages":           wages,
			"osh":             osh,
			"ir":              ir,
			"social_security": social,
		}, "wages", "osh", "ir", "social_security"),
		"supply_chain_compliance": object(map[string]*genai.Schema{
			"due_diligence":                evidence("Supplier ESG assessments and audits."),
			"forced_labor_policies":        evidence("Zero tolerance policies for forced or child labour."),
			"conflict_minerals":            evidence("Responsible mineral sourcing."),
			"principal_employer_liability": str("Liability risks regarding contract labour."),
		}, "due_diligence", "forced_labor_policies", "conflict_minerals", "principal_employer_liability"),
		"business_impact": object(map[string]*genai.Schema{
			"operational_efficiency": str(""),
			"financial_performance":  str(""),
			"brand_reputation":       str(""),
			"innovation_rnd":         str(""),
		}, "operational_efficiency", "financial_performance", "brand_reputation", "innovation_rnd"),
		"strategic_plan": object(map[string]*genai.Schema{
			"recommendations": strList("3-4 actionable strategic recommendations."),
		}, "recommendations"),
		"workforce_profile":    {Type: genai.TypeArray, Items: workforce},
		"supply_chain_profile": {Type: genai.TypeArray, Items: vendor},
		"api_financials": object(map[string]*genai.Schema{
			"revenue":       str(""),
			"ebitda":        str(""),
			"net_income":    str(""),
			"employee_cost": str(""),
		}),
		"labour_code_impact": object(map[string]*genai.Schema{
			"provision_amount":   str("Exact provision amount for the new Labour Codes."),
			"impact_description": str(""),
			"fiscal_period":      str(""),
		}),
		"business_intel": object(map[string]*genai.Schema{
			"key_products":    strList(""),
			"major_customers": strList(""),
			"market_position": str(""),
		}),
		"vendors": strList("Top industrial vendors from related party disclosures."),
	}, "company_name", "report_period", "overall_risk_score", "executive_summary", "labor_code_analysis",
		"supply_chain_compliance", "business_impact", "strategic_plan", "workforce_profile", "supply_chain_profile")
}
