// Package store persists the activity collection as a directory of
// JSON files, one per activity, with a wholesale backup rotation on
// each save.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/attend-io/attend/internal/config"
	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/models"
)

// Save writes every activity to dir/activities/<id>.json. The previous
// directory contents are first moved into a .bak subdirectory, which is
// replaced each save. This is not crash-safe: a failure between the
// move and the writes leaves the dataset only in .bak.
func Save(dir string, activities []*models.Activity) (int, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return 0, fmt.Errorf("%s exists and is not a directory", dir)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	default:
		return 0, err
	}

	if err := rotateBackup(dir); err != nil {
		return 0, err
	}

	activityDir := filepath.Join(dir, config.ActivitiesDirName)
	if err := os.MkdirAll(activityDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", activityDir, err)
	}

	for _, a := range activities {
		data, err := json.MarshalIndent(a.Record(), "", "    ")
		if err != nil {
			return 0, fmt.Errorf("failed to marshal activity %s: %w", a.IDHex(), err)
		}
		path := filepath.Join(activityDir, a.IDHex()+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return len(activities), nil
}

// rotateBackup replaces dir/.bak with the current non-hidden contents
// of dir.
func rotateBackup(dir string) error {
	backupDir := filepath.Join(dir, config.BackupDirName)
	if err := os.RemoveAll(backupDir); err != nil {
		return fmt.Errorf("failed to clear backup dir: %w", err)
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		from := filepath.Join(dir, entry.Name())
		to := filepath.Join(backupDir, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to move %s to backup: %w", from, err)
		}
	}
	return nil
}

// Load reads every activity file under dir/activities. Files that do
// not end in .json are skipped.
func Load(dir string, resolver *dates.Resolver) ([]*models.Activity, error) {
	activityDir := filepath.Join(dir, config.ActivitiesDirName)
	entries, err := os.ReadDir(activityDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", activityDir, err)
	}

	var out []*models.Activity
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(activityDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var rec models.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		a, err := models.Rehydrate(resolver, rec)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild %s: %w", path, err)
		}
		out = append(out, a)
	}
	return out, nil
}
