package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/labourscan/internal/hunter"
	"github.com/shanehull/labourscan/internal/types"
	"github.com/shanehull/labourscan/internal/validate"
)

// scriptedHunter writes each scripted text to a temp file and hands it to the
// inspector, removing the file on rejection like the real hunter.
type scriptedHunter struct {
	t      *testing.T
	dir    string
	script func(call int, category types.DocumentCategory, exclusions []string) []string

	calls      int
	exclusions [][]string
}

func (h *scriptedHunter) HuntCategory(ctx context.Context, target types.TargetEntity, category types.DocumentCategory, exclusions []string, inspect hunter.Inspector) (int, bool) {
	call := h.calls
	h.calls++
	h.exclusions = append(h.exclusions, exclusions)

	inspected := 0
	for i, text := range h.script(call, category, exclusions) {
		path := filepath.Join(h.dir, fmt.Sprintf("cand_%d_%d.pdf", call, i))
		require.NoError(h.t, os.WriteFile(path, []byte(text), 0o644))
		inspected++

		cand := types.CandidateDocument{SourceURL: fmt.Sprintf("https://example.com/%d/%d.pdf", call, i), TempPath: path, Category: category}
		if inspect(cand) {
			return inspected, true
		}
		os.Remove(path)
	}
	return inspected, false
}

// fileAnalyzer treats the file content as the extracted text.
type fileAnalyzer struct{}

func (fileAnalyzer) Analyze(ctx context.Context, path string, category types.DocumentCategory) types.Extraction {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Extraction{Source: "Error"}
	}
	return types.Extraction{Text: string(data), Source: filepath.Base(path)}
}

func bajajAuto() types.TargetEntity {
	return types.TargetEntity{
		CanonicalName: "Bajaj Auto Ltd",
		PoisonTerms:   []string{"finserv", "holdings", "electricals", "allianz"},
	}
}

func newController(t *testing.T, h *scriptedHunter, maxAttempts int) (*Controller, string) {
	t.Helper()
	store := t.TempDir()
	h.t = t
	h.dir = t.TempDir()
	return New(h, fileAnalyzer{}, validate.New(nil, validate.DefaultLeadWindow), Options{
		MaxAttempts: maxAttempts,
		StoreDir:    store,
	}), store
}

func TestCleanFirstAttempt(t *testing.T) {
	h := &scriptedHunter{script: func(call int, c types.DocumentCategory, _ []string) []string {
		return []string{"Bajaj Auto Limited " + c.Label()}
	}}
	ctrl, store := newController(t, h, 3)

	var events []types.ProgressEvent
	acq, err := ctrl.Acquire(context.Background(), bajajAuto(), func(e types.ProgressEvent) { events = append(events, e) })

	require.NoError(t, err)
	require.Len(t, acq.Documents, 4)
	assert.Len(t, acq.Attempts, 1)
	assert.Equal(t, 4, h.calls)

	for i, doc := range acq.Documents {
		assert.Equal(t, types.AllCategories[i], doc.Category)
		assert.Equal(t, "Bajaj_Auto_Ltd_"+doc.Category.Tag()+".pdf", doc.Filename)
		assert.FileExists(t, filepath.Join(store, doc.Filename))
	}

	text := acq.Text()
	assert.Contains(t, text, "=== SOURCE DOCUMENT: Quarterly Results (Bajaj_Auto_Ltd_Financial_Results_Q3.pdf) ===")
	assert.Contains(t, text, "Bajaj Auto Limited BRSR / Sustainability Report")

	require.Len(t, events, 1)
	assert.Equal(t, 10, events[0].Progress)
}

func TestAllRejectedLearnsAndRetries(t *testing.T) {
	h := &scriptedHunter{script: func(call int, c types.DocumentCategory, excl []string) []string {
		for _, e := range excl {
			if e == "housing" {
				return []string{"Bajaj Auto Limited results"}
			}
		}
		return []string{"Bajaj Housing Finance Limited annual report"}
	}}
	ctrl, _ := newController(t, h, 3)

	acq, err := ctrl.Acquire(context.Background(), bajajAuto(), nil)

	require.NoError(t, err)
	require.Len(t, acq.Attempts, 2)
	assert.True(t, acq.Attempts[0].AllRejected)
	assert.Len(t, acq.Attempts[0].Rejections, 4)
	assert.Equal(t, "IdentityNotConfirmed", acq.Attempts[0].Rejections[0].Reason)
	assert.Equal(t, []string{"finance", "housing"}, acq.Attempts[0].Rejections[0].Learned)

	assert.Empty(t, h.exclusions[0])
	assert.Equal(t, []string{"finance", "housing"}, h.exclusions[4])
	assert.Equal(t, []string{"finance", "housing"}, acq.Exclusions)
	assert.Len(t, acq.Documents, 4)
}

func TestMixedAttemptKeepsAcceptedSubset(t *testing.T) {
	h := &scriptedHunter{script: func(call int, c types.DocumentCategory, _ []string) []string {
		if c == types.AnnualReportVendors {
			return []string{"Bajaj Finserv Limited annual report"}
		}
		if c == types.FinancialResults {
			return []string{"Bajaj Auto Limited Q3"}
		}
		return nil
	}}
	ctrl, _ := newController(t, h, 3)

	acq, err := ctrl.Acquire(context.Background(), bajajAuto(), nil)

	require.NoError(t, err)
	assert.Len(t, acq.Attempts, 1)
	require.Len(t, acq.Documents, 1)
	assert.Equal(t, types.FinancialResults, acq.Documents[0].Category)
	require.Len(t, acq.Attempts[0].Rejections, 1)
	assert.Equal(t, `PoisonMatch("finserv")`, acq.Attempts[0].Rejections[0].Reason)
	assert.Equal(t, []string{"Quarterly Results"}, acq.Coverage())
}

func TestZeroResultsExhaustsAttempts(t *testing.T) {
	h := &scriptedHunter{script: func(int, types.DocumentCategory, []string) []string { return nil }}
	ctrl, store := newController(t, h, 3)

	acq, err := ctrl.Acquire(context.Background(), bajajAuto(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAcquisitionFailed))
	assert.Len(t, acq.Attempts, 3)
	assert.Equal(t, 12, h.calls)
	assert.Empty(t, acq.Documents)

	entries, _ := os.ReadDir(store)
	assert.Empty(t, entries)
}

func TestAttemptsBoundedWhenEverythingRejected(t *testing.T) {
	h := &scriptedHunter{script: func(int, types.DocumentCategory, []string) []string {
		return []string{"Hero MotoCorp Limited"}
	}}
	ctrl, _ := newController(t, h, 2)

	acq, err := ctrl.Acquire(context.Background(), bajajAuto(), nil)

	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.Len(t, acq.Attempts, 2)
	assert.Equal(t, 8, h.calls)
}

func TestRejectedCandidatesAreRemoved(t *testing.T) {
	h := &scriptedHunter{script: func(int, types.DocumentCategory, []string) []string {
		return []string{"Bajaj Finserv"}
	}}
	ctrl, _ := newController(t, h, 1)

	_, err := ctrl.Acquire(context.Background(), bajajAuto(), nil)
	require.Error(t, err)

	entries, _ := os.ReadDir(h.dir)
	assert.Empty(t, entries)
}

func TestLearnTermsSkipsOwnName(t *testing.T) {
	ctrl := New(nil, nil, validate.New(nil, 0), Options{})

	terms := ctrl.LearnTerms("bajaj finance limited consumer electricals division", types.TargetEntity{CanonicalName: "Bajaj Finance Ltd"})

	assert.Equal(t, []string{"consumer", "electrical"}, terms)
}

func TestIdempotentWithFreshState(t *testing.T) {
	script := func(call int, c types.DocumentCategory, _ []string) []string {
		return []string{"Bajaj Auto Limited " + c.Tag()}
	}

	run := func() []string {
		h := &scriptedHunter{script: script}
		ctrl, _ := newController(t, h, 3)
		acq, err := ctrl.Acquire(context.Background(), bajajAuto(), nil)
		require.NoError(t, err)

		var names []string
		for _, d := range acq.Documents {
			names = append(names, d.Filename+"|"+d.ExtractedText)
		}
		return names
	}

	assert.Equal(t, run(), run())
}
