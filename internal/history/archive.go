package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// archiveLayout names archive directories so lexicographic order equals
// chronological order.
const archiveLayout = "20060102_1504"

// Archive moves the current report set into a new timestamped archive
// directory and returns the directory name. With no current reports it
// is a no-op returning "". Unlike interactive runs, archive I/O errors
// are surfaced: this is an operator-facing batch action.
func (s *Store) Archive() (string, error) {
	return s.archiveAt(time.Now())
}

func (s *Store) archiveAt(now time.Time) (string, error) {
	current, err := s.LoadCurrent()
	if err != nil {
		return "", err
	}
	if len(current) == 0 {
		return "", nil
	}

	name := now.Format(archiveLayout)
	dest := filepath.Join(s.archiveDir, name)

	// Exclusive creation guards against two archive attempts for the
	// same timestamp interleaving writes.
	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive root: %w", err)
	}
	if err := os.Mkdir(dest, 0o755); err != nil {
		return "", fmt.Errorf("creating archive dir %s: %w", dest, err)
	}

	for ticker := range current {
		src := s.ReportPath(ticker)
		if err := os.Rename(src, filepath.Join(dest, reportFilename(ticker))); err != nil {
			return "", fmt.Errorf("archiving %s: %w", src, err)
		}
	}
	return name, nil
}

// ArchiveDirs lists archive directory names, oldest first.
func (s *Store) ArchiveDirs() ([]string, error) {
	entries, err := os.ReadDir(s.archiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive root: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// LatestArchiveDir returns the most recent archive directory name, or
// "" when no archives exist.
func (s *Store) LatestArchiveDir() (string, error) {
	dirs, err := s.ArchiveDirs()
	if err != nil {
		return "", err
	}
	if len(dirs) == 0 {
		return "", nil
	}
	return dirs[len(dirs)-1], nil
}
