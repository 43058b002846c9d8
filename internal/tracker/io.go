package tracker

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/attend-io/attend/internal/store"
	"github.com/attend-io/attend/internal/usage"
)

// Save persists the collection to dir, rotating the previous contents
// into its backup subdirectory.
func (m *Manager) Save(dir string) (int, error) {
	if len(m.activities) == 0 {
		return 0, usage.Errorf("there are no loaded activities to save")
	}
	n, err := store.Save(dir, m.all())
	if err != nil {
		return 0, err
	}
	m.log.Infof("wrote %d activity files at %s", n, dir)
	return n, nil
}

// Load reads activities from dir into the collection, indexing each.
// Activities already in memory are kept; identical ids are replaced.
func (m *Manager) Load(dir string) (int, error) {
	loaded, err := store.Load(dir, m.resolver)
	if err != nil {
		return 0, err
	}
	for _, a := range loaded {
		m.Add(a)
	}
	m.log.Infof("loaded %d activities from %s", len(loaded), dir)
	return len(loaded), nil
}

// Import creates one activity per non-blank line of a plain-text file.
// Lines starting with "#" are skipped. Keyword rules apply as if each
// line had been given to the "new" verb.
func (m *Manager) Import(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := m.New([]string{line}, nil); err != nil {
			return count, fmt.Errorf("line %q: %w", line, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read import file: %w", err)
	}
	return count, nil
}
