package extract

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

// Adapter extracts a SymbolModel from source files of one language.
// Swapping adapters requires zero change to the rest of the system;
// the core never inspects which implementation is active.
type Adapter interface {
	// Language returns the adapter's language key
	Language() string

	// Match reports whether a relative path is a source file for this adapter
	Match(path string) bool

	// DetectRoot reports whether root looks like a project of this language
	DetectRoot(root string) bool

	// ExtractFile parses one source file into units and edges. A failure
	// skips the file; it never aborts the scan.
	ExtractFile(root, path string) (*FileResult, error)
}

// FileResult is the per-file output of an adapter
type FileResult struct {
	File  model.FileInfo
	Units []model.Unit
	Edges []model.Edge
}

// Service discovers source files and runs the adapter fan-out
type Service struct {
	cfg        *config.Config
	exclusions *util.ExclusionMatcher
	adapters   []Adapter
}

// NewService creates an extraction service with all adapters registered
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:        cfg,
		exclusions: util.NewExclusionMatcher(cfg.Exclusions),
		adapters:   []Adapter{NewTypeScriptAdapter(), NewGoAdapter()},
	}
}

// AdapterFor returns the adapter for an explicit language key, or
// auto-detects one from the root's marker files.
func (s *Service) AdapterFor(root, language string) (Adapter, error) {
	if language != "" && language != "auto" {
		for _, a := range s.adapters {
			if a.Language() == language {
				return a, nil
			}
		}
		return nil, fmt.Errorf("no adapter for language %q", language)
	}

	for _, a := range s.adapters {
		if a.DetectRoot(root) {
			util.Debug("Detected language %s under %s", a.Language(), root)
			return a, nil
		}
	}
	return nil, fmt.Errorf("could not detect a supported language under %s", root)
}

// Languages returns the registered adapter language keys
func (s *Service) Languages() []string {
	names := make([]string, len(s.adapters))
	for i, a := range s.adapters {
		names[i] = a.Language()
	}
	return names
}

// Extract walks root and builds the SymbolModel with a bounded per-file
// fan-out. A file the adapter cannot parse is skipped and recorded as a
// warning; partial results are acceptable and marked as such downstream.
func (s *Service) Extract(ctx context.Context, root string, adapter Adapter) (*model.SymbolModel, error) {
	paths, err := s.discover(root, adapter)
	if err != nil {
		return nil, err
	}

	util.Info("Extracting %d %s files from %s", len(paths), adapter.Language(), root)

	var (
		mu      sync.Mutex
		results = make([]*FileResult, len(paths))
		warns   []model.ExtractWarning
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(s.cfg.Concurrency.ExtractWorkers))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := adapter.ExtractFile(root, p)
			if err != nil {
				util.Warn("Skipping %s: %v", p, err)
				mu.Lock()
				warns = append(warns, model.ExtractWarning{File: p, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction aborted: %w", err)
	}

	// Merge in path order so the model is deterministic regardless of
	// which worker finished first.
	sm := &model.SymbolModel{Root: root, Language: adapter.Language()}
	for _, r := range results {
		if r == nil {
			continue
		}
		sm.Files = append(sm.Files, r.File)
		sm.Units = append(sm.Units, r.Units...)
		sm.Edges = append(sm.Edges, r.Edges...)
	}
	sort.Slice(warns, func(i, j int) bool { return warns[i].File < warns[j].File })
	sm.Warnings = warns

	util.Debug("Extracted %d units, %d edges (%d files skipped)", len(sm.Units), len(sm.Edges), len(warns))
	return sm, nil
}

func (s *Service) discover(root string, adapter Adapter) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if name == "node_modules" || name == "vendor" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !adapter.Match(rel) {
			return nil
		}
		if !s.cfg.Scan.IncludeTests && isTestPath(rel) {
			return nil
		}
		if s.exclusions.Matches(rel, "") {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func isTestPath(rel string) bool {
	base := filepath.Base(rel)
	if strings.Contains(base, "_test.") || strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	for _, seg := range strings.Split(filepath.Dir(rel), "/") {
		if seg == "test" || seg == "tests" || seg == "__tests__" || seg == "testdata" {
			return true
		}
	}
	return false
}

func workers(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}
