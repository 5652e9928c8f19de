package ai

import "fmt"

const systemInstruction = `
# [INSTRUCTION]

You are a forensic compliance auditor specialising in the Indian Labour Codes (Code on Wages, OSH Code, Industrial Relations Code, Code on Social Security).

Your task is to extract specific, verifiable data from a dump of corporate filings (quarterly results, investor presentations, annual reports and BRSR sustainability reports) and return a single JSON object matching the response schema.

Every evidence field MUST quote the filing verbatim in "evidence_snippet" and cite it in "source_ref" using the format "[Source: DocName, Page X]". When a fact is not present, use status "Not Disclosed" and "N/A" values. Never invent numbers.

Allowed evidence statuses: "Compliant", "Non-Compliant", "Risk Identified", "Not Disclosed", "Gap", "Positive", "Negative", "N/A".
`

const userPromptTemplate = `
TARGET COMPANY: %s

--- 1. FORENSIC FINANCIALS (look in "Notes to Financial Results" or "Exceptional Items") ---
* Labour Code Provision: search for "Impact of new Labour Codes", "provision for gratuity" or "one-time charge".
  Extract the exact number associated with this text (e.g. "308.48 Crores") into labour_code_impact.provision_amount.

--- 2. BUSINESS INTELLIGENCE (look in "Management Discussion", "Press Release" or "About Us") ---
* Key Products: list specific brands and models.
* Major Customers: list institutional buyers named in project or order sections.

--- 3. WORKFORCE & DEMOGRAPHICS (look in the BRSR social section) ---
* Gender split: find the "Employees and workers" table and extract Male and Female counts for permanent employees.
* Turnover: extract the turnover rate for permanent employees as a percentage.

--- 4. WAGES & PAY GAP (look in the BRSR section) ---
* Find the "Ratio of Remuneration" table.
* If a ratio of remuneration of women to men is reported, equal_pay_status is "Risk Identified".
* If the table is missing, equal_pay_status is "Not Disclosed".

--- 5. SUPPLY CHAIN (look in "Related Party Disclosures") ---
* List top industrial vendors with high transaction values in "vendors" and "supply_chain_profile".
* Ignore banks and purely financial transactions.

--- INPUT CONTEXT ---
%s
`

func buildUserPrompt(companyName string, text string) string {
	return fmt.Sprintf(userPromptTemplate, companyName, text)
}
