/*
Package history keeps a ledger of audit runs on disk so operators can see what
ran, what was excluded along the way and how each run ended.
*/
package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
	_ "time/tzdata"
)

const (
	historyFileName = "audit_run_history.json"
	maxRuns         = 200
)

const (
	OutcomeCompleted = "completed"
	OutcomeCached    = "cached"
	OutcomeFailed    = "failed"
)

type Run struct {
	ID         string    `json:"id"`
	Company    string    `json:"company"`
	Outcome    string    `json:"outcome"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Attempts   int       `json:"attempts,omitempty"`
	Exclusions []string  `json:"exclusions,omitempty"`
	Coverage   []string  `json:"coverage,omitempty"`
	RiskScore  string    `json:"risk_score,omitempty"`
	Degraded   bool      `json:"degraded,omitempty"`
	Error      string    `json:"error,omitempty"`
}

type History struct {
	Runs []Run `json:"runs"`
}

type Manager struct {
	history         History
	mutex           sync.Mutex
	historyFilePath string
	location        *time.Location
}

func NewManager(dir string, tzName string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone name '%s': %w", tzName, err)
	}

	m := &Manager{
		historyFilePath: filepath.Join(dir, historyFileName),
		location:        loc,
	}

	m.loadHistory()
	return m, nil
}

func (m *Manager) loadHistory() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	data, err := os.ReadFile(m.historyFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("History file %s not found. Starting fresh ledger.", m.historyFilePath)
			return
		}
		log.Printf("Error reading history file (%s): %v. Starting fresh ledger.", m.historyFilePath, err)
		return
	}

	var loaded History
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("Error unmarshalling history JSON: %v. Starting fresh ledger.", err)
		return
	}
	m.history = loaded
	log.Printf("Loaded %d previous audit run(s).", len(m.history.Runs))
}

func (m *Manager) saveHistory() {
	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		log.Printf("Error marshalling history for save: %v", err)
		return
	}

	if err := os.WriteFile(m.historyFilePath, data, 0o644); err != nil {
		log.Printf("Error writing history file %s: %v", m.historyFilePath, err)
	}
}

// Record appends run to the ledger, stamping the finish time when unset, and
// keeps only the most recent runs.
func (m *Manager) Record(run Run) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.In(m.location)
	run.FinishedAt = run.FinishedAt.In(m.location)

	m.history.Runs = append(m.history.Runs, run)
	if over := len(m.history.Runs) - maxRuns; over > 0 {
		m.history.Runs = append([]Run(nil), m.history.Runs[over:]...)
	}
	m.saveHistory()
}

// Recent returns up to n runs, newest first.
func (m *Manager) Recent(n int) []Run {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	runs := m.history.Runs
	if n <= 0 || n > len(runs) {
		n = len(runs)
	}
	out := make([]Run, 0, n)
	for i := len(runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, runs[i])
	}
	return out
}

func (m *Manager) HistoryFilePath() string {
	return m.historyFilePath
}
