package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Preferences holds userctl defaults stored in ~/.mediator-go/userctl.json.
// This file stores ONLY preferences, never connection settings.
type Preferences struct {
	// Output format used when --output is not given: table or json
	Output string `json:"output,omitempty"`

	// Page size for "user list" when --limit is not given
	PageSize int `json:"page_size,omitempty"`
}

// PreferencesStore manages loading and saving CLI preferences
type PreferencesStore struct {
	path string
}

// NewPreferencesStore creates a store in dir, or in ~/.mediator-go when dir
// is empty.
func NewPreferencesStore(dir string) (*PreferencesStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".mediator-go")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}

	return &PreferencesStore{path: filepath.Join(dir, "userctl.json")}, nil
}

// Load reads the preferences from disk. A missing file yields empty preferences.
func (s *PreferencesStore) Load() (*Preferences, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Preferences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}

	return &prefs, nil
}

// Save writes the preferences to disk
func (s *PreferencesStore) Save(prefs *Preferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	return nil
}

// Update loads the preferences, applies change and saves the result
func (s *PreferencesStore) Update(change func(*Preferences)) error {
	prefs, err := s.Load()
	if err != nil {
		return err
	}
	change(prefs)
	return s.Save(prefs)
}

// Path returns the path to the preferences file
func (s *PreferencesStore) Path() string {
	return s.path
}
