package sector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/labourscan/internal/config"
	"github.com/shanehull/labourscan/internal/search"
)

type fakeSearcher struct {
	byQuery map[string][]search.Result
	fail    map[string]bool
	opts    []search.Options
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	f.opts = append(f.opts, opts)
	if f.fail[query] {
		return nil, errors.New("rate limited")
	}
	return f.byQuery[query], nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  string
		amount  string
		impact  string
	}{
		{"amount", "Exceptional item of Rs. 61.5 crore towards labour codes", StatusProvisionLikely, "₹ 61.5 Cr", ImpactHigh},
		{"rupee symbol", "exceptional one-time hit of ₹120 Cr", StatusProvisionLikely, "₹ 120 Cr", ImpactHigh},
		{"amount without provision", "Tata Motors posts quarterly revenue of Rs 5000 crore", StatusNotDisclosed, "-", ImpactStable},
		{"mention only", "The company made a provision for gratuity.", StatusProvisionLikely, "-", ImpactMedium},
		{"nothing", "Revenue grew 12% year on year.", StatusNotDisclosed, "-", ImpactStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Finding{Status: StatusNotDisclosed, Amount: "-", Impact: ImpactStable}
			Classify(tt.content, &f)
			assert.Equal(t, tt.status, f.Status)
			assert.Equal(t, tt.amount, f.Amount)
			assert.Equal(t, tt.impact, f.Impact)
		})
	}
}

func TestScan(t *testing.T) {
	s := NewScanner(nil, config.Periods{Quarter: "Q3 FY26"})
	fake := &fakeSearcher{
		byQuery: map[string][]search.Result{
			s.Query("Tata Motors"): {{URL: "https://example.com/tata.pdf", Content: "exceptional item INR 300 crore"}},
			s.Query("Bosch Ltd"):   {{Content: "quarterly update"}},
		},
		fail: map[string]bool{s.Query("Uno Minda"): true},
	}
	s.searcher = fake

	findings := s.Scan(context.Background(), map[string][]string{
		"OEMs":        {"Tata Motors", "Hero MotoCorp"},
		"Ancillaries": {"Bosch Ltd", "Uno Minda"},
	})

	require.Len(t, findings, 4)

	assert.Equal(t, Finding{Segment: "Ancillaries", Company: "Bosch Ltd", Status: StatusNotDisclosed, Amount: "-", Impact: ImpactStable, SourceURL: "#"}, findings[0])
	assert.Equal(t, StatusError, findings[1].Status)
	assert.Equal(t, ImpactUnknown, findings[1].Impact)
	assert.Equal(t, "₹ 300 Cr", findings[2].Amount)
	assert.Equal(t, "https://example.com/tata.pdf", findings[2].SourceURL)
	assert.Equal(t, StatusNotDisclosed, findings[3].Status)

	for _, o := range fake.opts {
		assert.Equal(t, 1, o.MaxResults)
		assert.Equal(t, search.DepthBasic, o.Depth)
	}
}

func TestQuery(t *testing.T) {
	s := NewScanner(nil, config.Periods{})
	assert.Equal(t, `"Bajaj Auto" Q3 FY26 financial results "exceptional item" "labour code" provision amount crore`, s.Query("Bajaj Auto"))
}
