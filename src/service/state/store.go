package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

// ErrStateCorrupt marks a state file that exists but cannot be parsed.
// Corrupt state is never silently rebuilt; callers surface the error
// and require an explicit reset.
var ErrStateCorrupt = errors.New("state file is corrupt")

// Store reads and writes the per-language scan state under a root
type Store struct {
	cfg config.StateConfig
}

// NewStore creates a state store
func NewStore(cfg config.StateConfig) *Store {
	return &Store{cfg: cfg}
}

// Dir returns the state directory for a scanned root
func (s *Store) Dir(root string) string {
	dir := s.cfg.Dir
	if dir == "" {
		dir = ".debtwatch"
	}
	return filepath.Join(root, dir)
}

// Path returns the state file path for one language under a root
func (s *Store) Path(root, language string) string {
	return filepath.Join(s.Dir(root), fmt.Sprintf("state-%s.json", language))
}

// Load reads the persisted state for a language. A missing file yields
// a fresh empty state; an unreadable or unparsable file yields
// ErrStateCorrupt.
func (s *Store) Load(root, language string) (*model.ScanState, error) {
	path := s.Path(root, language)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			util.Debug("No state at %s, starting fresh", path)
			return model.NewScanState(language, root), nil
		}
		return nil, fmt.Errorf("reading state %s: %w", path, err)
	}

	var st model.ScanState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v (use scan --reset-state to rebuild)", ErrStateCorrupt, path, err)
	}
	if st.Version != model.StateVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrStateCorrupt, path, st.Version)
	}
	if st.Findings == nil {
		st.Findings = make(map[string]*model.Finding)
	}
	return &st, nil
}

// Save writes the state atomically: marshal to a temp file in the same
// directory, then rename over the target.
func (s *Store) Save(root string, st *model.ScanState) error {
	dir := s.Dir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	data = append(data, '\n')

	path := s.Path(root, st.Language)
	tmp, err := os.CreateTemp(dir, "state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp state: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state: %w", err)
	}
	util.Debug("Saved state to %s (%d findings)", path, len(st.Findings))
	return nil
}

// Reset deletes the persisted state for a language. Used only by
// scan --reset-state.
func (s *Store) Reset(root, language string) error {
	path := s.Path(root, language)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state: %w", err)
	}
	util.Info("State reset: %s", path)
	return nil
}
