/*
Package archive stores finished audit reports as JSON and answers lookups for
previously audited companies, tolerating spelling mistakes in the request.
*/
package archive

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/shanehull/labourscan/internal/types"
)

const (
	reportSuffix = "_Consolidated_Report.json"
	fuzzyCutoff  = 0.6
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

type Archive struct {
	mutex sync.Mutex
	dir   string
}

// Entry is one distinct company in the archive.
type Entry struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

func New(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &Archive{dir: dir}, nil
}

func (a *Archive) Dir() string {
	return a.dir
}

// Path is where the report for name is saved.
func (a *Archive) Path(name string) string {
	return filepath.Join(a.dir, types.SafeName(name)+reportSuffix)
}

// Lookup finds a stored report for name by substring or fuzzy match. A hit is
// also written under the requested name so the next lookup matches exactly.
func (a *Archive) Lookup(name string) (*types.AuditReport, bool) {
	requested := RequestKey(name)
	if requested == "" {
		return nil, false
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	files, err := a.reportFiles()
	if err != nil {
		log.Printf("Warning: failed to list archive %s: %v", a.dir, err)
		return nil, false
	}
	if len(files) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(files))
	byKey := make(map[string]string, len(files))
	for _, f := range files {
		key := StoredKey(filepath.Base(f))
		if _, dup := byKey[key]; !dup {
			keys = append(keys, key)
		}
		byKey[key] = f
	}

	matched, how := "", ""
	for _, key := range keys {
		if key == "" {
			continue
		}
		if strings.Contains(requested, key) || strings.Contains(key, requested) {
			matched, how = byKey[key], "Substring Match"
			break
		}
	}
	if matched == "" {
		if best, ok := closestMatch(requested, keys, fuzzyCutoff); ok {
			matched, how = byKey[best], fmt.Sprintf("Fuzzy Match (%s)", best)
		}
	}
	if matched == "" {
		return nil, false
	}

	report, err := readReport(matched)
	if err != nil {
		log.Printf("Warning: error reading cache file %s: %v", matched, err)
		return nil, false
	}
	log.Printf("Cache hit [%s]: requested '%s' -> found '%s'", how, name, filepath.Base(matched))

	if alias := a.Path(name); alias != matched {
		if err := a.write(alias, report); err != nil {
			log.Printf("Warning: failed to write cache alias %s: %v", alias, err)
		}
	}
	return report, true
}

// Save writes the report under name, replacing any previous one.
func (a *Archive) Save(name string, report *types.AuditReport) (string, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	path := a.Path(name)
	if err := a.write(path, report); err != nil {
		return "", err
	}
	log.Printf("Successfully saved report to %s.", path)
	return path, nil
}

// List returns one entry per company, keyed on the official name recorded in
// each report, sorted by name.
func (a *Archive) List() ([]Entry, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	files, err := a.reportFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list archive %s: %w", a.dir, err)
	}

	seen := make(map[string]bool)
	var entries []Entry
	for _, f := range files {
		report, err := readReport(f)
		if err != nil {
			log.Printf("Warning: error reading %s: %v", f, err)
			continue
		}
		if report.CompanyName == "" {
			continue
		}

		key := OfficialKey(report.CompanyName)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, Entry{Name: report.CompanyName, Filename: filepath.Base(f)})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Compare loads the stored report for each requested company, matching the
// official name exactly first and then by case-insensitive containment.
// Companies without a report are skipped.
func (a *Archive) Compare(names []string) ([]*types.AuditReport, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	files, err := a.reportFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list archive %s: %w", a.dir, err)
	}

	var officialNames []string
	reports := make(map[string]*types.AuditReport)
	for _, f := range files {
		report, err := readReport(f)
		if err != nil || report.CompanyName == "" {
			continue
		}
		if _, ok := reports[report.CompanyName]; !ok {
			officialNames = append(officialNames, report.CompanyName)
		}
		reports[report.CompanyName] = report
	}

	var out []*types.AuditReport
	for _, name := range names {
		if r, ok := reports[name]; ok {
			out = append(out, r)
			continue
		}

		lower := strings.ToLower(name)
		found := false
		for _, official := range officialNames {
			o := strings.ToLower(official)
			if strings.Contains(o, lower) || strings.Contains(lower, o) {
				out = append(out, reports[official])
				found = true
				break
			}
		}
		if !found {
			log.Printf("Warning: report not found for %s", name)
		}
	}
	return out, nil
}

// RequestKey normalizes a requested company name: lower-cased, alphanumerics
// only.
func RequestKey(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}

// StoredKey derives the match key from a report filename.
func StoredKey(filename string) string {
	core := strings.ToLower(strings.TrimSuffix(filename, reportSuffix))
	core = strings.ReplaceAll(core, "_", "")
	core = strings.ReplaceAll(core, "ltd", "")
	core = strings.ReplaceAll(core, "limited", "")
	return nonAlphanumeric.ReplaceAllString(core, "")
}

// OfficialKey identifies a company across differently named report files.
func OfficialKey(name string) string {
	key := strings.ToLower(name)
	for _, w := range []string{"ltd", "limited", "india"} {
		key = strings.ReplaceAll(key, w, "")
	}
	return nonAlphanumeric.ReplaceAllString(key, "")
}

func (a *Archive) reportFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(a.dir, "*"+reportSuffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func readReport(path string) (*types.AuditReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report types.AuditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// write replaces path atomically. Callers hold the mutex.
func (a *Archive) write(path string, report *types.AuditReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tmp, err := os.CreateTemp(a.dir, ".report_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", a.dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move report into place at %s: %w", path, err)
	}
	return nil
}
