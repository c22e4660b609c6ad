package detector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

// Runner manages and runs all detectors.
// It handles detector registration, parallel execution with a
// concurrency cap, per-detector timeouts, and result aggregation.
type Runner struct {
	detectors []Detector
	cfg       *config.Config
}

// NewRunner creates a new detector runner with all detectors registered
func NewRunner(cfg *config.Config) *Runner {
	base := NewBaseDetector(cfg)

	detectors := []Detector{
		NewDupesDetector(base, cfg.Detectors.Dupes),
		NewCyclesDetector(base, cfg.Detectors.Cycles),
		NewCouplingDetector(base, cfg.Detectors.Coupling),
		NewStructureDetector(base, cfg.Detectors.Structure),
		NewOrphansDetector(base, cfg.Detectors.Orphans),
		NewNamingDetector(base, cfg.Detectors.Naming),
		NewSingleUseDetector(base, cfg.Detectors.SingleUse),
		NewPassthroughDetector(base, cfg.Detectors.Passthrough),
		NewMixedConcernsDetector(base, cfg.Detectors.MixedConcerns),
	}

	util.Debug("Detector runner initialized with %d detectors", len(detectors))
	for _, d := range detectors {
		status := "disabled"
		if d.IsEnabled() {
			status = "enabled"
		}
		util.Debug("  - %s: %s", d.Name(), status)
	}

	return &Runner{
		detectors: detectors,
		cfg:       cfg,
	}
}

// RunAll executes all enabled detectors against the symbol model and
// returns the combined raw findings plus a run record per detector.
// A detector that fails, times out, or panics contributes zero findings
// and an error record; it aborts the whole scan only under fail_fast.
func (r *Runner) RunAll(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, []model.DetectorRun, error) {
	startTime := time.Now()
	util.Info("Starting debt detection over %d units, %d edges", len(sm.Units), len(sm.Edges))

	var (
		findings []model.RawFinding
		runs     = make([]model.DetectorRun, 0, len(r.detectors))
		mu       sync.Mutex
		wg       sync.WaitGroup
		errChan  = make(chan error, len(r.detectors))
		sem      = make(chan struct{}, maxParallel(r.cfg.Concurrency.MaxParallelDetectors))
	)

	enabledCount := 0
	for _, d := range r.detectors {
		if !d.IsEnabled() {
			util.Debug("Skipping disabled detector: %s", d.Name())
			continue
		}
		enabledCount++

		wg.Add(1)
		go func(det Detector) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire semaphore
			defer func() { <-sem }() // Release semaphore

			detectorStart := time.Now()
			util.Debug("Running detector: %s", det.Name())

			found, err := r.runIsolated(ctx, det, sm)
			run := model.DetectorRun{
				Name:       det.Name(),
				Findings:   len(found),
				DurationMS: time.Since(detectorStart).Milliseconds(),
			}
			if err != nil {
				run.Error = err.Error()
				util.Error("Detector %s failed: %v", det.Name(), err)
				if r.cfg.Detectors.FailFast {
					errChan <- fmt.Errorf("detector %s: %w", det.Name(), err)
				}
			} else {
				util.Info("Detector %s found %d findings (took %v)", det.Name(), len(found), time.Since(detectorStart))
			}

			mu.Lock()
			findings = append(findings, found...)
			runs = append(runs, run)
			mu.Unlock()
		}(d)
	}

	util.Debug("Running %d enabled detectors (max parallel: %d)", enabledCount, maxParallel(r.cfg.Concurrency.MaxParallelDetectors))

	wg.Wait()
	close(errChan)

	// Check for errors
	if err, ok := <-errChan; ok {
		util.Error("Detection aborted due to error: %v", err)
		return nil, nil, err
	}

	// Deterministic order regardless of goroutine scheduling
	sort.Slice(runs, func(i, j int) bool { return runs[i].Name < runs[j].Name })
	SortFindings(findings)

	util.Info("Detection complete: %d findings (took %v)", len(findings), time.Since(startTime))
	return findings, runs, nil
}

type detectResult struct {
	findings []model.RawFinding
	err      error
}

// runIsolated runs one detector behind a timeout and panic recovery so
// a misbehaving detector never takes the scan down with it.
func (r *Runner) runIsolated(ctx context.Context, det Detector, sm *model.SymbolModel) ([]model.RawFinding, error) {
	timeout := r.cfg.Concurrency.DetectorTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resCh := make(chan detectResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resCh <- detectResult{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		found, err := det.Detect(dctx, sm)
		resCh <- detectResult{findings: found, err: err}
	}()

	select {
	case res := <-resCh:
		return res.findings, res.err
	case <-dctx.Done():
		return nil, fmt.Errorf("timed out after %v: %w", timeout, dctx.Err())
	}
}

// GetDetector returns a detector by name
func (r *Runner) GetDetector(name string) Detector {
	for _, d := range r.detectors {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// ListDetectors returns names of all registered detectors
func (r *Runner) ListDetectors() []string {
	names := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		names[i] = d.Name()
	}
	return names
}

// SortFindings orders raw findings by detector, file, line, then unit
// so identity assignment sees a stable first-writer order.
func SortFindings(fs []model.RawFinding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Detector != b.Detector {
			return a.Detector < b.Detector
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.UnitName < b.UnitName
	})
}

func maxParallel(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}
