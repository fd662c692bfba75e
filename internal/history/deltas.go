package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jfields/renewlens/consts"
	"github.com/jfields/renewlens/internal/models"
)

// Trend direction labels.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// interpretationRe captures the text after an "Interpretation:" marker
// in a role summary.
var interpretationRe = regexp.MustCompile(`(?i)interpretation[:\-]?\s*(.+)`)

// interpretationRoles is the role priority when several summaries carry
// an interpretation marker.
var interpretationRoles = []string{
	consts.RoleEarnings,
	consts.RoleValuation,
	consts.RoleMomentum,
}

const interpretationMaxRunes = 400

// Delta is one row of the run comparison table. Confidence values are
// on a 0-100 percentage scale for display.
type Delta struct {
	Ticker         string  `json:"ticker"`
	Outlook        string  `json:"outlook"`
	Confidence     float64 `json:"confidence"`
	Delta          float64 `json:"delta"`
	Direction      string  `json:"direction"`
	Interpretation string  `json:"interpretation"`
}

// LoadCurrentAndPrevious loads the current report set and the most
// recent archived set. previousDir is "" when no archive exists.
func (s *Store) LoadCurrentAndPrevious() (current, previous map[string]*models.ExecutiveSummary, previousDir string, err error) {
	current, err = s.LoadCurrent()
	if err != nil {
		return nil, nil, "", err
	}

	previousDir, err = s.LatestArchiveDir()
	if err != nil {
		return nil, nil, "", err
	}
	if previousDir == "" {
		return current, map[string]*models.ExecutiveSummary{}, "", nil
	}

	previous, err = loadRunDir(filepath.Join(s.archiveDir, previousDir))
	if err != nil {
		return nil, nil, "", err
	}
	return current, previous, previousDir, nil
}

// LoadCurrentAndBaseline is LoadCurrentAndPrevious with an explicit
// archive directory as the comparison baseline.
func (s *Store) LoadCurrentAndBaseline(baseline string) (current, previous map[string]*models.ExecutiveSummary, err error) {
	current, err = s.LoadCurrent()
	if err != nil {
		return nil, nil, err
	}

	path := filepath.Join(s.archiveDir, baseline)
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, nil, fmt.Errorf("baseline archive %s: %w", baseline, statErr)
	}
	previous, err = loadRunDir(path)
	if err != nil {
		return nil, nil, err
	}
	return current, previous, nil
}

// ComputeConfidenceDeltas compares the current run against a previous
// one, ticker by ticker. Tickers only present in previous are ignored;
// a ticker absent from previous is compared against a zero baseline.
func ComputeConfidenceDeltas(current, previous map[string]*models.ExecutiveSummary) []Delta {
	rows := make([]Delta, 0, len(current))
	for ticker, report := range current {
		prevConf := 0.0
		if prev, ok := previous[ticker]; ok && prev != nil {
			prevConf = prev.Confidence
		}

		delta := round1((report.Confidence - prevConf) * 100)
		interp := ExtractInterpretation(report.Agents)
		if interp == "" {
			interp = "—"
		}

		rows = append(rows, Delta{
			Ticker:         ticker,
			Outlook:        string(report.MarketOutlook),
			Confidence:     round1(report.Confidence * 100),
			Delta:          delta,
			Direction:      direction(delta),
			Interpretation: interp,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Ticker < rows[j].Ticker })
	return rows
}

func direction(delta float64) string {
	switch {
	case delta > 0:
		return DirectionUp
	case delta < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ExtractInterpretation pulls a short interpretation line out of the
// per-role summaries, preferring the earnings, valuation, and momentum
// roles in that order. Without a marker it falls back to the first two
// sentences of the highest-priority summary.
func ExtractInterpretation(agents map[string]models.AgentSummary) string {
	if len(agents) == 0 {
		return ""
	}

	ordered := orderedRoles(agents)
	for _, role := range ordered {
		text := agents[role].Summary
		if text == "" {
			continue
		}
		if m := interpretationRe.FindStringSubmatch(text); m != nil {
			return clipInterpretation(m[1])
		}
	}

	for _, role := range ordered {
		if text := agents[role].Summary; text != "" {
			return firstSentences(text, 2)
		}
	}
	return ""
}

// orderedRoles lists role names with the priority roles first and the
// rest sorted, so extraction is deterministic across runs.
func orderedRoles(agents map[string]models.AgentSummary) []string {
	seen := make(map[string]bool, len(agents))
	ordered := make([]string, 0, len(agents))
	for _, role := range interpretationRoles {
		if _, ok := agents[role]; ok {
			seen[role] = true
			ordered = append(ordered, role)
		}
	}

	var rest []string
	for role := range agents {
		if !seen[role] {
			rest = append(rest, role)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func clipInterpretation(text string) string {
	// Keep only the first paragraph.
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > interpretationMaxRunes {
		return string(runes[:interpretationMaxRunes]) + "…"
	}
	return text
}

func firstSentences(text string, n int) string {
	parts := strings.SplitN(text, ".", n+1)
	if len(parts) > n {
		parts = parts[:n]
	}
	joined := strings.TrimSpace(strings.Join(parts, "."))
	if joined != "" && !strings.HasSuffix(joined, ".") {
		joined += "."
	}
	return joined
}

// WriteCSV writes the delta table in CSV form.
func WriteCSV(w io.Writer, rows []Delta) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Ticker", "Outlook", "Confidence", "Delta", "Direction", "Interpretation"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Ticker,
			row.Outlook,
			fmt.Sprintf("%.1f", row.Confidence),
			fmt.Sprintf("%.1f", row.Delta),
			row.Direction,
			row.Interpretation,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", row.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RunRecord is one ticker's entry in one archived run, with the delta
// against the same ticker's previous archived run.
type RunRecord struct {
	Archive    string    `json:"archive"`
	RunDate    time.Time `json:"run_date"`
	Ticker     string    `json:"ticker"`
	Confidence float64   `json:"confidence"`
	Outlook    string    `json:"outlook"`
	Delta      float64   `json:"delta"`
	Direction  string    `json:"direction"`
}

// ScanRunHistory walks every archive directory oldest first and builds
// the per-ticker timeline with consecutive-run deltas.
func (s *Store) ScanRunHistory() ([]RunRecord, error) {
	dirs, err := s.ArchiveDirs()
	if err != nil {
		return nil, err
	}

	var records []RunRecord
	lastConf := make(map[string]float64)
	seen := make(map[string]bool)

	for _, dir := range dirs {
		reports, err := loadRunDir(filepath.Join(s.archiveDir, dir))
		if err != nil {
			return nil, err
		}

		runDate, timeErr := time.Parse(archiveLayout, dir)
		if timeErr != nil {
			// Foreign directories under archive/ are skipped rather
			// than poisoning the timeline.
			continue
		}

		for _, ticker := range sortedTickers(reports) {
			report := reports[ticker]
			conf := round1(report.Confidence * 100)

			delta := 0.0
			if seen[ticker] {
				delta = round1(conf - lastConf[ticker])
			}
			records = append(records, RunRecord{
				Archive:    dir,
				RunDate:    runDate,
				Ticker:     ticker,
				Confidence: conf,
				Outlook:    string(report.MarketOutlook),
				Delta:      delta,
				Direction:  direction(delta),
			})
			lastConf[ticker] = conf
			seen[ticker] = true
		}
	}
	return records, nil
}

func sortedTickers(reports map[string]*models.ExecutiveSummary) []string {
	tickers := make([]string, 0, len(reports))
	for ticker := range reports {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}
