/*
Package acquire drives the bounded retry loop that gathers verified filings for
a target. Each attempt hunts every category with the current exclusion set;
when everything found is rejected, terms learned from the rejected documents
widen the exclusions for the next attempt.
*/
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shanehull/labourscan/internal/hunter"
	"github.com/shanehull/labourscan/internal/types"
	"github.com/shanehull/labourscan/internal/validate"
)

const (
	DefaultMaxAttempts = 3

	sourceFooter = "==========================================="
)

var ErrAcquisitionFailed = errors.New("acquisition failed")

var DefaultTriggers = []string{"finance", "holdings", "consumer", "electrical", "finserv", "housing", "logistics"}

type Hunter interface {
	HuntCategory(ctx context.Context, target types.TargetEntity, category types.DocumentCategory, exclusions []string, inspect hunter.Inspector) (int, bool)
}

type Analyzer interface {
	Analyze(ctx context.Context, path string, category types.DocumentCategory) types.Extraction
}

type Options struct {
	MaxAttempts int
	Triggers    []string
	StoreDir    string
}

type Controller struct {
	hunter      Hunter
	analyzer    Analyzer
	validator   *validate.Validator
	maxAttempts int
	triggers    []string
	storeDir    string
}

func New(h Hunter, a Analyzer, v *validate.Validator, opts Options) *Controller {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Triggers == nil {
		opts.Triggers = DefaultTriggers
	}
	return &Controller{
		hunter:      h,
		analyzer:    a,
		validator:   v,
		maxAttempts: opts.MaxAttempts,
		triggers:    append([]string(nil), opts.Triggers...),
		storeDir:    opts.StoreDir,
	}
}

type Acquisition struct {
	Target     types.TargetEntity
	Documents  []types.VerifiedDocument
	Attempts   []types.AttemptState
	Exclusions []string
}

// Text is the consolidated text handed to synthesis.
func (a *Acquisition) Text() string {
	return Consolidate(a.Documents)
}

// Coverage lists the labels of the categories that yielded a document.
func (a *Acquisition) Coverage() []string {
	labels := make([]string, 0, len(a.Documents))
	for _, d := range a.Documents {
		labels = append(labels, d.Category.Label())
	}
	return labels
}

// Consolidate joins extracted texts under per-document headers.
func Consolidate(docs []types.VerifiedDocument) string {
	var sb strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&sb, "\n\n=== SOURCE DOCUMENT: %s (%s) ===\n", d.Category.Label(), d.Filename)
		sb.WriteString(d.ExtractedText)
		sb.WriteString("\n" + sourceFooter + "\n")
	}
	return sb.String()
}

// Acquire runs up to maxAttempts attempts. It succeeds as soon as an attempt
// accepts at least one document; ErrAcquisitionFailed means no attempt did.
func (c *Controller) Acquire(ctx context.Context, target types.TargetEntity, progress func(types.ProgressEvent)) (*Acquisition, error) {
	notify := func(pct int, format string, args ...any) {
		if progress != nil {
			progress(types.ProgressEvent{Status: types.StatusProcessing, Message: fmt.Sprintf(format, args...), Progress: pct})
		}
	}

	acq := &Acquisition{Target: target}
	exclusions := types.NewExclusionSet()

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		notify(10+attempt*10, "Attempt %d/%d: hunting documents for %s", attempt+1, c.maxAttempts, target.CanonicalName)

		state := types.AttemptState{Attempt: attempt, Exclusions: exclusions.Terms()}
		learned := types.NewExclusionSet()
		candidates := 0

		for _, category := range types.AllCategories {
			n, _ := c.hunter.HuntCategory(ctx, target, category, state.Exclusions, func(cand types.CandidateDocument) bool {
				return c.inspect(ctx, target, cand, &state, learned)
			})
			candidates += n
		}

		if len(state.Accepted) > 0 {
			acq.Attempts = append(acq.Attempts, state)
			acq.Documents = state.Accepted
			acq.Exclusions = exclusions.Terms()
			log.Printf("Attempt %d accepted %d document(s), rejected %d.", attempt+1, len(state.Accepted), len(state.Rejections))
			return acq, nil
		}

		if candidates == 0 {
			log.Printf("Attempt %d found no candidate documents.", attempt+1)
		} else {
			state.AllRejected = true
			added := exclusions.Add(learned.Terms()...)
			log.Printf("Attempt %d rejected all %d candidate(s). Learned %d new exclusion(s): %v", attempt+1, candidates, added, learned.Terms())
		}
		acq.Attempts = append(acq.Attempts, state)
	}

	acq.Exclusions = exclusions.Terms()
	return acq, fmt.Errorf("%w: no verified documents for %s after %d attempts", ErrAcquisitionFailed, target.CanonicalName, c.maxAttempts)
}

func (c *Controller) inspect(ctx context.Context, target types.TargetEntity, cand types.CandidateDocument, state *types.AttemptState, learned *types.ExclusionSet) bool {
	ext := c.analyzer.Analyze(ctx, cand.TempPath, cand.Category)

	if rej := c.validator.Validate(ext, target, state.Exclusions); rej != nil {
		terms := c.LearnTerms(c.validator.LeadText(ext.Text), target)
		learned.Add(terms...)
		state.Rejections = append(state.Rejections, types.RejectionRecord{
			SourceURL: cand.SourceURL,
			Category:  cand.Category,
			Reason:    rej.Error(),
			Learned:   terms,
		})
		log.Printf("Rejected %s (%s): %s", cand.SourceURL, cand.Category.Label(), rej)
		return false
	}

	doc, err := c.promote(cand, ext, target)
	if err != nil {
		log.Printf("Warning: failed to store accepted document %s: %v", cand.SourceURL, err)
		state.Rejections = append(state.Rejections, types.RejectionRecord{
			SourceURL: cand.SourceURL,
			Category:  cand.Category,
			Reason:    err.Error(),
		})
		return false
	}

	state.Accepted = append(state.Accepted, doc)
	log.Printf("Verified %s for %s: %s", cand.Category.Label(), target.CanonicalName, doc.Filename)
	return true
}

// LearnTerms returns the trigger words occurring anywhere in the lead text,
// skipping any that appear in the target's own name.
func (c *Controller) LearnTerms(lead string, target types.TargetEntity) []string {
	name := strings.ToLower(target.CanonicalName)

	var terms []string
	for _, trigger := range c.triggers {
		trigger = strings.ToLower(strings.TrimSpace(trigger))
		if trigger == "" || strings.Contains(name, trigger) {
			continue
		}
		if strings.Contains(lead, trigger) {
			terms = append(terms, trigger)
		}
	}
	return terms
}

func (c *Controller) promote(cand types.CandidateDocument, ext types.Extraction, target types.TargetEntity) (types.VerifiedDocument, error) {
	filename := fmt.Sprintf("%s_%s.pdf", target.SafeName(), cand.Category.Tag())

	dir := c.storeDir
	if dir == "" {
		dir = filepath.Dir(cand.TempPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.VerifiedDocument{}, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	dest := filepath.Join(dir, filename)
	if err := os.Rename(cand.TempPath, dest); err != nil {
		return types.VerifiedDocument{}, fmt.Errorf("failed to promote %s: %w", cand.TempPath, err)
	}

	return types.VerifiedDocument{
		Category:      cand.Category,
		Filename:      filename,
		StoragePath:   dest,
		SourceURL:     cand.SourceURL,
		ExtractedText: ext.Text,
	}, nil
}
