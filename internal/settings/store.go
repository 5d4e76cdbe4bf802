package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrInvalidRange indicates a window bound outside [0,255] or min > max.
	ErrInvalidRange = errors.New("gray window out of range")

	// ErrNotFound indicates an override target that is not a catalog entry.
	ErrNotFound = errors.New("image not found")
)

// Window is a threshold window: gray values at or below MinGray map to fully
// transparent, values at or above MaxGray map to fully opaque.
type Window struct {
	MinGray uint8 `json:"min_gray"`
	MaxGray uint8 `json:"max_gray"`
}

// DefaultWindow is the global window before the first update: the full gray
// range, which maps luminance to alpha one-to-one.
var DefaultWindow = Window{MinGray: 0, MaxGray: 255}

// Membership reports whether a file name is a known catalog entry. Overrides
// may only be set for names the catalog knows about.
type Membership interface {
	Contains(name string) (bool, error)
}

// ValidateWindow checks that both bounds are in [0,255] and min <= max.
// Returns ErrInvalidRange (wrapped with the offending values) otherwise.
func ValidateWindow(minGray, maxGray int) error {
	if minGray < 0 || minGray > 255 {
		return fmt.Errorf("min_gray %d: %w", minGray, ErrInvalidRange)
	}
	if maxGray < 0 || maxGray > 255 {
		return fmt.Errorf("max_gray %d: %w", maxGray, ErrInvalidRange)
	}
	if minGray > maxGray {
		return fmt.Errorf("min_gray %d > max_gray %d: %w", minGray, maxGray, ErrInvalidRange)
	}
	return nil
}

// Store holds the global window and the per-image override table, backed by a
// single JSON document on disk. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	catalog Membership
	state   document
}

// document is the serialized store layout.
type document struct {
	Global    Window            `json:"global"`
	Overrides map[string]Window `json:"overrides"`
}

// Open loads the store from path, creating default state if the file does not
// exist yet. The catalog is consulted when overrides are set; it must not be nil.
//
// A missing file is not an error (first run). A file that exists but cannot be
// read or parsed is: silently discarding committed settings would be worse
// than refusing to start.
func Open(path string, catalog Membership) (*Store, error) {
	s := &Store{
		path:    path,
		catalog: catalog,
		state: document{
			Global:    DefaultWindow,
			Overrides: make(map[string]Window),
		},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if s.state.Overrides == nil {
		s.state.Overrides = make(map[string]Window)
	}
	return s, nil
}

// Global returns the current global window.
func (s *Store) Global() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Global
}

// SetGlobal replaces the global window. The new value is persisted before it
// becomes visible to readers; on a persist failure the previous value stays
// in effect.
func (s *Store) SetGlobal(minGray, maxGray int) error {
	if err := ValidateWindow(minGray, maxGray); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Global
	s.state.Global = Window{MinGray: uint8(minGray), MaxGray: uint8(maxGray)}
	if err := s.persistLocked(); err != nil {
		s.state.Global = prev
		return err
	}
	return nil
}

// Override returns the override window for name and whether one exists.
func (s *Store) Override(name string) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.Overrides[name]
	return w, ok
}

// SetOverride creates or replaces the override window for name. The name must
// be a known catalog entry; orphaned overrides for files that do not exist are
// rejected rather than silently accepted.
func (s *Store) SetOverride(name string, minGray, maxGray int) error {
	if err := ValidateWindow(minGray, maxGray); err != nil {
		return err
	}

	ok, err := s.catalog.Contains(name)
	if err != nil {
		return fmt.Errorf("failed to check catalog for %q: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.state.Overrides[name]
	s.state.Overrides[name] = Window{MinGray: uint8(minGray), MaxGray: uint8(maxGray)}
	if err := s.persistLocked(); err != nil {
		if had {
			s.state.Overrides[name] = prev
		} else {
			delete(s.state.Overrides, name)
		}
		return err
	}
	return nil
}

// RemoveOverride deletes the override for name. Removing an override that does
// not exist is not an error.
func (s *Store) RemoveOverride(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.state.Overrides[name]
	if !had {
		return nil
	}
	delete(s.state.Overrides, name)
	if err := s.persistLocked(); err != nil {
		s.state.Overrides[name] = prev
		return err
	}
	return nil
}

// persistLocked writes the full document atomically: a temp file in the same
// directory, fsynced, then renamed over the target. Callers must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
