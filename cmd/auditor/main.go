package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shanehull/labourscan/internal/acquire"
	"github.com/shanehull/labourscan/internal/ai"
	"github.com/shanehull/labourscan/internal/archive"
	"github.com/shanehull/labourscan/internal/audit"
	"github.com/shanehull/labourscan/internal/config"
	"github.com/shanehull/labourscan/internal/entity"
	"github.com/shanehull/labourscan/internal/history"
	"github.com/shanehull/labourscan/internal/hunter"
	"github.com/shanehull/labourscan/internal/market"
	"github.com/shanehull/labourscan/internal/notify"
	"github.com/shanehull/labourscan/internal/pdftext"
	"github.com/shanehull/labourscan/internal/report"
	"github.com/shanehull/labourscan/internal/search"
	"github.com/shanehull/labourscan/internal/sector"
	"github.com/shanehull/labourscan/internal/types"
	"github.com/shanehull/labourscan/internal/validate"
)

const timezone = "Asia/Kolkata"

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var (
	company     = flag.String("company", "", "(-c) Company to audit, e.g. 'Bajaj Auto Ltd'")
	configPath  = flag.String("config", "", "YAML config file laid over the built-in defaults")
	dataDir     = flag.String("data-dir", "", "(-d) Data directory (overrides config)")
	maxAttempts = flag.Int("attempts", 0, "(-a) Maximum acquisition attempts (overrides config)")
	filesStr    = flag.String("files", "", "(-f) Comma-separated local PDFs to audit instead of searching")
	listReports = flag.Bool("list", false, "(-l) List archived reports and exit")
	compareStr  = flag.String("compare", "", "Comma-separated companies to compare from the archive")
	scanSector  = flag.Bool("sector", false, "(-s) Scan configured sector companies for labour code provisions")
	showHistory = flag.Int("history", 0, "Show the N most recent audit runs and exit")
	jsonOutput  = flag.Bool("json", false, "Emit progress events and results as JSON lines")

	smtpServer = flag.String("smtp-server", "", "SMTP server address (overrides SMTP_SERVER)")
	smtpPort   = flag.Int("smtp-port", 0, "SMTP server port (overrides SMTP_PORT)")
	smtpUser   = flag.String("smtp-user", "", "SMTP username (email address)")
	smtpPass   = flag.String("smtp-pass", "", "SMTP password or App Password")
	toEmail    = flag.String("to-email", "", "Recipient email address")
	fromEmail  = flag.String("from-email", "", "Sender email address (default: smtp-user)")
)

func init() {
	flag.StringVar(company, "c", "", "(-c) Company to audit (shorthand)")
	flag.StringVar(dataDir, "d", "", "(-d) Data directory (shorthand)")
	flag.IntVar(maxAttempts, "a", 0, "(-a) Maximum acquisition attempts (shorthand)")
	flag.StringVar(filesStr, "f", "", "(-f) Comma-separated local PDFs (shorthand)")
	flag.BoolVar(listReports, "l", false, "(-l) List archived reports (shorthand)")
	flag.BoolVar(scanSector, "s", false, "(-s) Sector provision scan (shorthand)")

	flag.Usage = func() {
		flagSet := flag.CommandLine
		fmt.Printf("Usage of %s:\n", "auditor")

		order := []string{
			"company",
			"config",
			"data-dir",
			"attempts",
			"files",
			"list",
			"compare",
			"sector",
			"history",
			"json",
			"smtp-server",
			"smtp-port",
			"smtp-user",
			"smtp-pass",
			"to-email",
			"from-email",
		}

		for _, name := range order {
			f := flagSet.Lookup(name)
			if f != nil {
				fmt.Printf("  -%s\n", f.Name)
				fmt.Printf("    %s\n", f.Usage)
			}
		}
	}
}

func applyFlags(cfg *config.Config) {
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *maxAttempts > 0 {
		cfg.MaxAttempts = *maxAttempts
	}
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.Email.SMTPServer, *smtpServer)
	setString(&cfg.Email.SMTPUser, *smtpUser)
	setString(&cfg.Email.SMTPPass, *smtpPass)
	setString(&cfg.Email.ToEmail, *toEmail)
	setString(&cfg.Email.FromEmail, *fromEmail)
	if *smtpPort > 0 {
		cfg.Email.SMTPPort = *smtpPort
	}
}

func newSearcher(cfg *config.Config) search.Chain {
	var chain search.Chain
	if cfg.TavilyAPIKey != "" {
		chain = append(chain, search.NewTavily(cfg.TavilyAPIKey, cfg.Timeouts.Search))
	}
	return append(chain, search.NewDuckDuckGo(cfg.Timeouts.Search))
}

func newTracker(ctx context.Context, cfg *config.Config) (report.Tracker, func()) {
	if cfg.DatabaseURL != "" {
		pg, err := report.NewPostgresTracker(ctx, cfg.DatabaseURL)
		if err == nil {
			return pg, pg.Close
		}
		log.Printf("Warning: Postgres tracker unavailable, falling back to CSV: %v", err)
	}
	return report.NewCSVTracker(cfg.StructuredDir()), func() {}
}

func newSynthesizer(ctx context.Context, cfg *config.Config) *ai.Synthesizer {
	if cfg.Gemini.APIKey == "" {
		log.Printf("Warning: GEMINI_API_KEY not set. Reports will be degraded.")
		return ai.NewSynthesizer(nil, cfg.MinSynthesisLength)
	}
	gen, err := ai.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Printf("Warning: failed to create Gemini client: %v", err)
		return ai.NewSynthesizer(nil, cfg.MinSynthesisLength)
	}
	return ai.NewSynthesizer(gen, cfg.MinSynthesisLength)
}

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Fatal error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Fatal error in flags: %v\n", err)
		os.Exit(1)
	}

	arch, err := archive.New(cfg.StructuredDir())
	if err != nil {
		fmt.Printf("Fatal error setting up archive: %v\n", err)
		os.Exit(1)
	}

	historyManager, err := history.NewManager(cfg.DataDir, timezone)
	if err != nil {
		fmt.Printf("Fatal error setting up history: %v\n", err)
		os.Exit(1)
	}

	searcher := newSearcher(cfg)

	switch {
	case *listReports:
		printList(arch)
		return
	case *compareStr != "":
		printComparison(arch, parseList(*compareStr))
		return
	case *showHistory > 0:
		printHistory(historyManager.Recent(*showHistory))
		return
	case *scanSector:
		printSector(sector.NewScanner(searcher, cfg.Periods).Scan(ctx, cfg.Sector))
		return
	}

	if *company == "" {
		fmt.Println("Error: Company is required.")
		fmt.Println("Usage: auditor -company 'Bajaj Auto Ltd' [-files a.pdf,b.pdf] [-json] --smtp-server=... --to-email=...")
		os.Exit(1)
	}

	tracker, closeTracker := newTracker(ctx, cfg)
	defer closeTracker()

	disambiguator := entity.NewDisambiguator(searcher, entity.NewTable(cfg.Conglomerates))
	analyzer := pdftext.NewAnalyzer(cfg.Timeouts.PDF)
	validator := validate.New(cfg.Aliases, cfg.LeadWindow)

	deps := audit.Deps{
		Archive:  arch,
		Resolver: disambiguator,
		NewAcquirer: func() audit.Acquirer {
			h := hunter.New(searcher, hunter.NewSeenSet(), hunter.Options{
				TempDir: cfg.RawDir(),
				Periods: cfg.Periods,
				Timeout: cfg.Timeouts.Download,
			})
			return acquire.New(h, analyzer, validator, acquire.Options{
				MaxAttempts: cfg.MaxAttempts,
				Triggers:    cfg.Triggers,
				StoreDir:    cfg.RawDir(),
			})
		},
		Analyzer:      analyzer,
		Market:        market.NewYahooFeed(disambiguator, cfg.Timeouts.Market),
		Synthesizer:   newSynthesizer(ctx, cfg),
		Renderer:      report.NewRenderer(cfg.StructuredDir(), tracker),
		History:       historyManager,
		MinTextLength: cfg.MinTextLength,
	}
	if cfg.EmailEnabled() {
		deps.Notifier = notify.NewNotifier(notify.NewHTMLEmailRenderer(), notify.NewEmailSender(cfg.Email))
	}
	auditor := audit.New(deps)

	files := parseList(*filesStr)

	if *jsonOutput {
		var events <-chan types.ProgressEvent
		if len(files) > 0 {
			events = auditor.StartFiles(ctx, *company, files)
		} else {
			events = auditor.Start(ctx, *company)
		}
		if !streamJSON(events) {
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Starting labour compliance audit for %s.\n", *company)
	printProgress := func(e types.ProgressEvent) {
		fmt.Printf("[%3d%%] %s\n", e.Progress, e.Message)
	}

	var res *audit.Result
	if len(files) > 0 {
		res, err = auditor.RunFiles(ctx, *company, files, printProgress)
	} else {
		res, err = auditor.Run(ctx, *company, printProgress)
	}
	if err != nil {
		fmt.Printf("Audit failed: %v\n", err)
		os.Exit(1)
	}

	notify.PrintSummary(os.Stdout, notify.AuditSummary{
		RunID:      res.RunID,
		Report:     res.Report,
		Coverage:   res.Coverage,
		ReportPath: reportLocation(res),
		Cached:     res.Cached,
	})
}

func reportLocation(res *audit.Result) string {
	if res.Paths.Markdown != "" {
		return res.Paths.Markdown
	}
	return res.ArchivePath
}

// streamJSON writes one JSON line per event and reports whether the stream
// ended in success.
func streamJSON(events <-chan types.ProgressEvent) bool {
	enc := json.NewEncoder(os.Stdout)
	ok := false
	for e := range events {
		if err := enc.Encode(e); err != nil {
			log.Printf("Warning: failed to encode event: %v", err)
		}
		if e.Terminal() {
			ok = e.Status == types.StatusCompleted
		}
	}
	return ok
}

func printList(arch *archive.Archive) {
	entries, err := arch.List()
	if err != nil {
		fmt.Printf("Fatal error listing archive: %v\n", err)
		os.Exit(1)
	}
	if *jsonOutput {
		_ = json.NewEncoder(os.Stdout).Encode(entries)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No archived reports.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\n", e.Name, e.Filename)
	}
}

func printComparison(arch *archive.Archive, names []string) {
	reports, err := arch.Compare(names)
	if err != nil {
		fmt.Printf("Fatal error comparing reports: %v\n", err)
		os.Exit(1)
	}
	if *jsonOutput {
		_ = json.NewEncoder(os.Stdout).Encode(reports)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Company\tPeriod\tRisk\tProvision\tEmployee Cost")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.CompanyName, r.ReportPeriod, r.OverallRiskScore,
			r.LabourCodeImpact.ProvisionAmount, r.APIFinancials.EmployeeCost)
	}
	w.Flush()
}

func printSector(findings []sector.Finding) {
	if *jsonOutput {
		_ = json.NewEncoder(os.Stdout).Encode(findings)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Segment\tCompany\tStatus\tAmount\tImpact\tSource")
	for _, f := range findings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", f.Segment, f.Company, f.Status, f.Amount, f.Impact, f.SourceURL)
	}
	w.Flush()
}

func printHistory(runs []history.Run) {
	if *jsonOutput {
		_ = json.NewEncoder(os.Stdout).Encode(runs)
		return
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-10s %s", r.FinishedAt.Format("2006-01-02 15:04"), r.Outcome, r.Company)
		if r.RiskScore != "" {
			line += fmt.Sprintf(" (risk %s)", r.RiskScore)
		}
		if r.Error != "" {
			line += ": " + r.Error
		}
		fmt.Println(line)
	}
}
