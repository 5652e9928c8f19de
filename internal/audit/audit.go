/*
Package audit runs one company audit end to end: archive lookup, entity
resolution, document acquisition, market data, synthesis, rendering and
notification. Progress is reported as an ordered stream of events.
*/
package audit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shanehull/labourscan/internal/acquire"
	"github.com/shanehull/labourscan/internal/archive"
	"github.com/shanehull/labourscan/internal/history"
	"github.com/shanehull/labourscan/internal/market"
	"github.com/shanehull/labourscan/internal/notify"
	"github.com/shanehull/labourscan/internal/report"
	"github.com/shanehull/labourscan/internal/types"
)

const DefaultMinTextLength = 100

var ErrInsufficientData = errors.New("insufficient data")

type Resolver interface {
	Resolve(ctx context.Context, companyName string) types.TargetEntity
}

type Acquirer interface {
	Acquire(ctx context.Context, target types.TargetEntity, progress func(types.ProgressEvent)) (*acquire.Acquisition, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, companyName string, market *types.MarketData) *types.AuditReport
}

type Renderer interface {
	Render(ctx context.Context, name string, rep *types.AuditReport) (report.Paths, error)
}

type Notifier interface {
	Notify(data notify.AuditSummary) error
}

type Recorder interface {
	Record(run history.Run)
}

// Deps wires an Auditor. NewAcquirer is called once per run so each run hunts
// with its own seen set. Notifier and History are optional.
type Deps struct {
	Archive       *archive.Archive
	Resolver      Resolver
	NewAcquirer   func() Acquirer
	Analyzer      acquire.Analyzer
	Market        market.Feed
	Synthesizer   Synthesizer
	Renderer      Renderer
	Notifier      Notifier
	History       Recorder
	MinTextLength int
}

type Auditor struct {
	deps Deps
}

func New(deps Deps) *Auditor {
	if deps.MinTextLength <= 0 {
		deps.MinTextLength = DefaultMinTextLength
	}
	return &Auditor{deps: deps}
}

// Result is what a completed run produced.
type Result struct {
	RunID       string
	Report      *types.AuditReport
	Cached      bool
	Coverage    []string
	Attempts    int
	ArchivePath string
	Paths       report.Paths
}

type emitter func(pct int, format string, args ...any)

func newEmitter(progress func(types.ProgressEvent)) emitter {
	return func(pct int, format string, args ...any) {
		if progress != nil {
			progress(types.ProgressEvent{Status: types.StatusProcessing, Message: fmt.Sprintf(format, args...), Progress: pct})
		}
	}
}

// Run audits company. Fatal failures return an error and leave the archive
// untouched.
func (a *Auditor) Run(ctx context.Context, company string, progress func(types.ProgressEvent)) (*Result, error) {
	emit := newEmitter(progress)
	run := history.Run{ID: uuid.NewString(), Company: company, StartedAt: time.Now()}

	emit(2, "Checking archive for %s", company)
	if a.deps.Archive != nil {
		if cached, ok := a.deps.Archive.Lookup(company); ok {
			emit(90, "Loaded archived report for %s", cached.CompanyName)
			run.Outcome = history.OutcomeCached
			run.RiskScore = cached.OverallRiskScore
			a.record(run)
			return &Result{RunID: run.ID, Report: cached, Cached: true, ArchivePath: a.deps.Archive.Path(company)}, nil
		}
	}

	emit(5, "Resolving entity for %s", company)
	target := a.deps.Resolver.Resolve(ctx, company)
	if target.HasTicker() {
		emit(5, "Resolved %s to ticker %s", target.CanonicalName, target.Ticker)
	}

	acq, err := a.deps.NewAcquirer().Acquire(ctx, target, progress)
	if acq != nil {
		run.Attempts = len(acq.Attempts)
		run.Exclusions = acq.Exclusions
	}
	if err != nil {
		return nil, a.fail(run, err)
	}

	run.Coverage = acq.Coverage()
	emit(50, "Locked %d document(s): %s", len(acq.Documents), strings.Join(run.Coverage, ", "))

	res, err := a.finish(ctx, target, acq.Documents, emit, &run)
	if err != nil {
		return nil, a.fail(run, err)
	}
	res.Attempts = run.Attempts
	return res, nil
}

// RunFiles audits company from local PDF files without searching. Files are
// not identity-checked.
func (a *Auditor) RunFiles(ctx context.Context, company string, paths []string, progress func(types.ProgressEvent)) (*Result, error) {
	emit := newEmitter(progress)
	run := history.Run{ID: uuid.NewString(), Company: company, StartedAt: time.Now()}
	target := types.TargetEntity{CanonicalName: strings.TrimSpace(company)}

	var docs []types.VerifiedDocument
	for i, path := range paths {
		emit(10+i*30/len(paths), "Reading %s", filepath.Base(path))

		ext := a.deps.Analyzer.Analyze(ctx, path, types.SupportingDocument)
		if ext.Encrypted || ext.Text == "" {
			log.Printf("Warning: skipping %s (encrypted: %t, no text extracted)", path, ext.Encrypted)
			continue
		}
		docs = append(docs, types.VerifiedDocument{
			Category:      types.SupportingDocument,
			Filename:      filepath.Base(path),
			StoragePath:   path,
			ExtractedText: ext.Text,
		})
	}

	run.Coverage = []string{fmt.Sprintf("%d uploaded file(s)", len(docs))}
	emit(50, "Read %d of %d file(s)", len(docs), len(paths))

	res, err := a.finish(ctx, target, docs, emit, &run)
	if err != nil {
		return nil, a.fail(run, err)
	}
	return res, nil
}

func (a *Auditor) finish(ctx context.Context, target types.TargetEntity, docs []types.VerifiedDocument, emit emitter, run *history.Run) (*Result, error) {
	extracted := 0
	for _, d := range docs {
		extracted += len(strings.TrimSpace(d.ExtractedText))
	}
	if extracted < a.deps.MinTextLength {
		return nil, fmt.Errorf("%w: %d characters extracted for %s", ErrInsufficientData, extracted, target.CanonicalName)
	}
	text := acquire.Consolidate(docs)

	emit(60, "Fetching market data for %s", target.CanonicalName)
	var md *types.MarketData
	if a.deps.Market != nil {
		if data, ok := a.deps.Market.Fetch(ctx, target.CanonicalName, target.Ticker); ok {
			md = data
		} else {
			log.Printf("Warning: market data unavailable for %s", target.CanonicalName)
		}
	}

	emit(70, "Synthesizing compliance report")
	rep := a.deps.Synthesizer.Synthesize(ctx, text, target.CanonicalName, md)
	if rep.Degraded {
		emit(80, "Synthesis degraded: %s", rep.ExecutiveSummary.KeyFinding)
	} else {
		emit(80, "Synthesis complete")
	}

	emit(90, "Archiving report")
	res := &Result{RunID: run.ID, Report: rep, Coverage: run.Coverage}

	if a.deps.Archive != nil {
		path, err := a.deps.Archive.Save(target.CanonicalName, rep)
		if err != nil {
			log.Printf("Warning: failed to archive report for %s: %v", target.CanonicalName, err)
		}
		res.ArchivePath = path
	}
	if a.deps.Renderer != nil {
		paths, err := a.deps.Renderer.Render(ctx, target.CanonicalName, rep)
		if err != nil {
			log.Printf("Warning: failed to render report for %s: %v", target.CanonicalName, err)
		}
		res.Paths = paths
	}

	if a.deps.Notifier != nil {
		summary := notify.AuditSummary{RunID: run.ID, Report: rep, Coverage: run.Coverage, ReportPath: res.Paths.Markdown}
		if err := a.deps.Notifier.Notify(summary); err != nil {
			log.Printf("Warning: completion notification failed: %v", err)
		}
	}

	run.Outcome = history.OutcomeCompleted
	run.RiskScore = rep.OverallRiskScore
	run.Degraded = rep.Degraded
	a.record(*run)
	return res, nil
}

func (a *Auditor) fail(run history.Run, err error) error {
	run.Outcome = history.OutcomeFailed
	run.Error = err.Error()
	a.record(run)
	log.Printf("Audit %s for %s failed: %v", run.ID, run.Company, err)
	return err
}

func (a *Auditor) record(run history.Run) {
	if a.deps.History == nil {
		return
	}
	run.FinishedAt = time.Now()
	a.deps.History.Record(run)
}

// Start runs the audit in its own goroutine. The returned channel yields
// processing events, then exactly one completed or error event, then closes.
func (a *Auditor) Start(ctx context.Context, company string) <-chan types.ProgressEvent {
	return stream(func(progress func(types.ProgressEvent)) (*Result, error) {
		return a.Run(ctx, company, progress)
	})
}

func (a *Auditor) StartFiles(ctx context.Context, company string, paths []string) <-chan types.ProgressEvent {
	return stream(func(progress func(types.ProgressEvent)) (*Result, error) {
		return a.RunFiles(ctx, company, paths, progress)
	})
}

func stream(run func(progress func(types.ProgressEvent)) (*Result, error)) <-chan types.ProgressEvent {
	events := make(chan types.ProgressEvent, 16)

	go func() {
		defer close(events)

		res, err := run(func(e types.ProgressEvent) {
			if !e.Terminal() {
				events <- e
			}
		})
		if err != nil {
			events <- types.ProgressEvent{Status: types.StatusError, Message: err.Error()}
			return
		}
		events <- types.ProgressEvent{
			Status:     types.StatusCompleted,
			Message:    CompletionMessage(res),
			Progress:   100,
			ReportData: res.Report,
		}
	}()

	return events
}

// CompletionMessage names where the report came from and what it covers.
func CompletionMessage(res *Result) string {
	if res.Cached {
		return fmt.Sprintf("Report for %s loaded from archive", res.Report.CompanyName)
	}
	msg := fmt.Sprintf("Audit complete for %s", res.Report.CompanyName)
	if len(res.Coverage) > 0 {
		msg += fmt.Sprintf(" (coverage: %s)", strings.Join(res.Coverage, ", "))
	}
	if res.Paths.Markdown != "" {
		msg += fmt.Sprintf(". Report saved to %s", res.Paths.Markdown)
	}
	return msg
}
