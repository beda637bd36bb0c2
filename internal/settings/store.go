// Package settings persists per-trigger {enabled, cooldown} adjustments as
// a flat JSON object keyed by trigger id. The filesystem is abstracted
// behind afero so tests run against an in-memory fs.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/battlecast/battlecast/internal/trigger"
)

// Store loads and saves trigger settings at a fixed path.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a settings store. A nil fs uses the OS filesystem.
func NewStore(fs afero.Fs, path string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, path: path}
}

// Load reads persisted settings. A missing file is not an error: it returns
// an empty settings map so first launch works without setup.
func (s *Store) Load() (trigger.Settings, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return trigger.Settings{}, nil
		}
		return nil, fmt.Errorf("settings: reading %s: %w", s.path, err)
	}

	var settings trigger.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("settings: parsing %s: %w", s.path, err)
	}
	return settings, nil
}

// Save writes settings, creating parent directories as needed.
func (s *Store) Save(settings trigger.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encoding: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("settings: creating %s: %w", dir, err)
		}
	}

	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: writing %s: %w", s.path, err)
	}
	return nil
}
