// Package history persists per-ticker reports, archives run snapshots,
// and computes confidence deltas between runs.
package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jfields/renewlens/internal/models"
)

// reportFileRe extracts the ticker from a report filename.
var reportFileRe = regexp.MustCompile(`^executive_summary_([A-Z0-9\-.]+)\.json$`)

// Store reads and writes report files under a working directory and an
// archive root. Archive snapshots are immutable once created.
type Store struct {
	reportsDir string
	archiveDir string
}

func NewStore(reportsDir, archiveDir string) *Store {
	return &Store{reportsDir: reportsDir, archiveDir: archiveDir}
}

// ReportPath returns the current-run file path for a ticker.
func (s *Store) ReportPath(ticker string) string {
	return filepath.Join(s.reportsDir, reportFilename(ticker))
}

func reportFilename(ticker string) string {
	return fmt.Sprintf("executive_summary_%s.json", strings.ToUpper(ticker))
}

// SaveReport writes a report to the current working set, replacing any
// previous report for the same ticker.
func (s *Store) SaveReport(report *models.ExecutiveSummary) error {
	if report == nil || report.Ticker == "" {
		return fmt.Errorf("cannot save report without a ticker")
	}
	report.Ticker = strings.ToUpper(report.Ticker)
	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		return fmt.Errorf("creating reports dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report for %s: %w", report.Ticker, err)
	}
	path := s.ReportPath(report.Ticker)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// LoadCurrent loads all current-run reports keyed by ticker.
func (s *Store) LoadCurrent() (map[string]*models.ExecutiveSummary, error) {
	return loadRunDir(s.reportsDir)
}

// LoadReport loads a single current-run report, or nil when absent.
func (s *Store) LoadReport(ticker string) (*models.ExecutiveSummary, error) {
	path := s.ReportPath(ticker)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	var report models.ExecutiveSummary
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	report.Ticker = strings.ToUpper(ticker)
	return &report, nil
}

// loadRunDir loads every executive_summary_*.json in a directory. Files
// that fail to parse are logged and skipped so one corrupt report does
// not hide the rest of the run.
func loadRunDir(dir string) (map[string]*models.ExecutiveSummary, error) {
	reports := make(map[string]*models.ExecutiveSummary)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return reports, nil
		}
		return nil, fmt.Errorf("reading run dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := reportFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[History] skipping unreadable report %s: %v", path, err)
			continue
		}
		var report models.ExecutiveSummary
		if err := json.Unmarshal(data, &report); err != nil {
			log.Printf("[History] skipping corrupt report %s: %v", path, err)
			continue
		}
		ticker := strings.ToUpper(m[1])
		report.Ticker = ticker
		reports[ticker] = &report
	}
	return reports, nil
}
