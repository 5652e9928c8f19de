package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shanehull/labourscan/internal/types"
)

const TrackerFileName = "Master_Compliance_Tracker.csv"

// Columns is the tracker header, in order.
var Columns = []string{
	"Company", "Period", "Risk Score",
	"Labour_Provision", "Labour_Provision_Desc",
	"Top_Products", "Major_Customers", "Top_Vendors",
	"Wage_Status", "Health_Status", "Strike_Risk",
	"Workforce_Turnover", "Strategic_Action",
}

// Row is one flattened report, keyed by (Company, Period).
type Row struct {
	Company           string
	Period            string
	RiskScore         string
	LabourProvision   string
	ProvisionDesc     string
	TopProducts       string
	MajorCustomers    string
	TopVendors        string
	WageStatus        string
	HealthStatus      string
	StrikeRisk        string
	WorkforceTurnover string
	StrategicAction   string
}

func (r Row) values() []string {
	return []string{
		r.Company, r.Period, r.RiskScore,
		r.LabourProvision, r.ProvisionDesc,
		r.TopProducts, r.MajorCustomers, r.TopVendors,
		r.WageStatus, r.HealthStatus, r.StrikeRisk,
		r.WorkforceTurnover, r.StrategicAction,
	}
}

func rowFromValues(v []string) Row {
	for len(v) < len(Columns) {
		v = append(v, "")
	}
	return Row{
		Company: v[0], Period: v[1], RiskScore: v[2],
		LabourProvision: v[3], ProvisionDesc: v[4],
		TopProducts: v[5], MajorCustomers: v[6], TopVendors: v[7],
		WageStatus: v[8], HealthStatus: v[9], StrikeRisk: v[10],
		WorkforceTurnover: v[11], StrategicAction: v[12],
	}
}

func Flatten(r *types.AuditReport) Row {
	orNA := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return types.NotAvailable
		}
		return s
	}

	vendors := r.Vendors
	if len(vendors) > 5 {
		vendors = vendors[:5]
	}

	turnover := types.NotAvailable
	if len(r.WorkforceProfile) > 0 {
		turnover = orNA(r.WorkforceProfile[0].TurnoverRate)
	}
	action := types.NotAvailable
	if len(r.StrategicPlan.Recommendations) > 0 {
		action = r.StrategicPlan.Recommendations[0]
	}

	return Row{
		Company:           orNA(r.CompanyName),
		Period:            orNA(r.ReportPeriod),
		RiskScore:         orNA(r.OverallRiskScore),
		LabourProvision:   orNA(r.LabourCodeImpact.ProvisionAmount),
		ProvisionDesc:     orNA(r.LabourCodeImpact.ImpactDescription),
		TopProducts:       strings.Join(r.BusinessIntel.KeyProducts, ", "),
		MajorCustomers:    strings.Join(r.BusinessIntel.MajorCustomers, ", "),
		TopVendors:        strings.Join(vendors, ", "),
		WageStatus:        orNA(r.LaborCodeAnalysis.Wages.MinimumWageStatus.Status),
		HealthStatus:      orNA(r.LaborCodeAnalysis.OSH.SafetySystemsStatus.Status),
		StrikeRisk:        orNA(r.LaborCodeAnalysis.IR.DisputesStrikesStatus.Status),
		WorkforceTurnover: turnover,
		StrategicAction:   action,
	}
}

// Tracker upserts flattened rows; the last write for a (Company, Period) key
// wins.
type Tracker interface {
	Upsert(ctx context.Context, row Row) error
}

type CSVTracker struct {
	mutex sync.Mutex
	path  string
}

func NewCSVTracker(dir string) *CSVTracker {
	return &CSVTracker{path: filepath.Join(dir, TrackerFileName)}
}

func (t *CSVTracker) Path() string {
	return t.path
}

func (t *CSVTracker) Upsert(ctx context.Context, row Row) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	rows, err := t.read()
	if err != nil {
		return err
	}

	kept := rows[:0]
	for _, existing := range rows {
		if existing.Company != row.Company || existing.Period != row.Period {
			kept = append(kept, existing)
		}
	}

	return t.write(append(kept, row))
}

// Rows returns the current table contents.
func (t *CSVTracker) Rows() ([]Row, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.read()
}

func (t *CSVTracker) read() ([]Row, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open tracker %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker %s: %w", t.path, err)
	}

	var rows []Row
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == Columns[0] {
			continue
		}
		rows = append(rows, rowFromValues(rec))
	}
	return rows, nil
}

func (t *CSVTracker) write(rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("failed to create tracker directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), ".tracker_*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp tracker: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write tracker header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.values()); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("failed to write tracker row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush tracker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp tracker: %w", err)
	}
	return os.Rename(tmpName, t.path)
}

const createTrackerTable = `
	CREATE TABLE IF NOT EXISTS compliance_tracker (
		company             TEXT NOT NULL,
		period              TEXT NOT NULL,
		risk_score          TEXT,
		labour_provision    TEXT,
		provision_desc      TEXT,
		top_products        TEXT,
		major_customers     TEXT,
		top_vendors         TEXT,
		wage_status         TEXT,
		health_status       TEXT,
		strike_risk         TEXT,
		workforce_turnover  TEXT,
		strategic_action    TEXT,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (company, period)
	)
`

const upsertTrackerRow = `
	INSERT INTO compliance_tracker (
		company, period, risk_score, labour_provision, provision_desc,
		top_products, major_customers, top_vendors,
		wage_status, health_status, strike_risk,
		workforce_turnover, strategic_action
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (company, period)
	DO UPDATE SET
		risk_score = EXCLUDED.risk_score,
		labour_provision = EXCLUDED.labour_provision,
		provision_desc = EXCLUDED.provision_desc,
		top_products = EXCLUDED.top_products,
		major_customers = EXCLUDED.major_customers,
		top_vendors = EXCLUDED.top_vendors,
		wage_status = EXCLUDED.wage_status,
		health_status = EXCLUDED.health_status,
		strike_risk = EXCLUDED.strike_risk,
		workforce_turnover = EXCLUDED.workforce_turnover,
		strategic_action = EXCLUDED.strategic_action,
		updated_at = NOW()
`

// PostgresTracker keeps the tracking table in Postgres.
type PostgresTracker struct {
	pool *pgxpool.Pool
}

func NewPostgresTracker(ctx context.Context, databaseURL string) (*PostgresTracker, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTrackerTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create compliance_tracker table: %w", err)
	}
	return &PostgresTracker{pool: pool}, nil
}

func (t *PostgresTracker) Upsert(ctx context.Context, row Row) error {
	if t.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	args := make([]any, 0, len(Columns))
	for _, v := range row.values() {
		args = append(args, v)
	}
	if _, err := t.pool.Exec(ctx, upsertTrackerRow, args...); err != nil {
		return fmt.Errorf("failed to upsert tracker row for %s: %w", row.Company, err)
	}
	return nil
}

func (t *PostgresTracker) Close() {
	if t.pool != nil {
		t.pool.Close()
	}
}
