/*
Package ai turns the consolidated filing text into a structured labour-law
compliance report using the Gemini API.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"google.golang.org/genai"

	"github.com/shanehull/labourscan/internal/types"
)

const (
	DefaultMinLength = 500
	maxInputChars    = 1_500_000

	apiMarker = " (API)"
)

// Generator returns the raw model response for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey string, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: modelName}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: prompt}},
			Role:  "user",
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    reportSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	return resp.Text(), nil
}

type Synthesizer struct {
	gen       Generator
	minLength int
}

// NewSynthesizer accepts a nil generator; every report is then degraded.
func NewSynthesizer(gen Generator, minLength int) *Synthesizer {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Synthesizer{gen: gen, minLength: minLength}
}

// Synthesize never fails. Short input or any model failure yields a degraded
// report. Financial fields the model left empty are filled from market.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, companyName string, market *types.MarketData) *types.AuditReport {
	log.Printf("AI Auditor: analyzing %s (%d chars)...", companyName, len(text))

	if len(text) < s.minLength {
		return types.DegradedReport(companyName, "Insufficient Data")
	}
	if s.gen == nil {
		return types.DegradedReport(companyName, "AI Reasoning Unavailable")
	}

	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	raw, err := s.gen.Generate(ctx, buildUserPrompt(companyName, text))
	if err != nil {
		log.Printf("Warning: AI reasoning failed for %s: %v", companyName, err)
		return types.DegradedReport(companyName, fmt.Sprintf("AI Error: %v", err))
	}

	report, err := decodeReport(raw)
	if err != nil {
		log.Printf("Warning: %v", err)
		return types.DegradedReport(companyName, "AI Error: malformed response")
	}

	if report.CompanyName == "" {
		report.CompanyName = companyName
	}
	PatchFinancials(report, market)
	if len(report.Vendors) == 0 {
		report.Vendors = []string{"Refer to Annual Report Note: Related Party Disclosures"}
	}
	return report
}

// decodeReport parses the model output, repairing it first when it is not
// valid JSON.
func decodeReport(raw string) (*types.AuditReport, error) {
	var report types.AuditReport
	if err := json.Unmarshal([]byte(raw), &report); err == nil {
		return &report, nil
	}

	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to repair gemini JSON response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, truncate(raw, 200))
	}
	return &report, nil
}

// PatchFinancials fills missing financial fields from market data and marks
// them with an (API) suffix.
func PatchFinancials(report *types.AuditReport, market *types.MarketData) {
	if report == nil || market == nil {
		return
	}

	patch := func(dst *string, value string) {
		if missing(*dst) {
			if value == "" {
				value = types.NotAvailable
			}
			*dst = value + apiMarker
		}
	}

	patch(&report.APIFinancials.Revenue, market.Revenue)
	patch(&report.APIFinancials.EBITDA, market.EBITDA)
	patch(&report.APIFinancials.NetIncome, market.NetIncome)
	patch(&report.APIFinancials.EmployeeCost, market.EmployeeCost)
}

func missing(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "0", types.NotAvailable:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
