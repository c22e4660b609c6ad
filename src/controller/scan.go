package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/service/detector"
	"debtwatch/src/service/extract"
	"debtwatch/src/service/identity"
	"debtwatch/src/service/query"
	"debtwatch/src/service/score"
	"debtwatch/src/service/state"
	"debtwatch/src/util"
)

// defaultHistoryLimit caps the per-state scan history when the config
// does not set one.
const defaultHistoryLimit = 50

// ScanController orchestrates the scan pipeline: lock, load state,
// extract, detect, assign identities, reconcile, score, save, report.
type ScanController struct {
	cfg *config.Config
}

// NewScanController creates a new scan controller
func NewScanController(cfg *config.Config) *ScanController {
	return &ScanController{cfg: cfg}
}

// ScanRequest represents a request to scan a codebase root
type ScanRequest struct {
	Root       string
	Language   string // empty or "auto" triggers detection
	ResetState bool
}

// Scan runs the full pipeline and returns the structured scan report.
// State is persisted before the report is built; a failure after the
// save still leaves a consistent state file behind.
func (c *ScanController) Scan(ctx context.Context, req ScanRequest) (*model.ScanReport, error) {
	startedAt := time.Now().UTC()
	util.Info("Starting scan of %s", req.Root)

	extractor := extract.NewService(c.cfg)
	adapter, err := extractor.AdapterFor(req.Root, req.Language)
	if err != nil {
		return nil, err
	}
	language := adapter.Language()

	store := state.NewStore(c.cfg.State)
	lockPath, err := state.AcquireLock(store.Dir(req.Root), c.cfg.Agent.Name, c.cfg.Agent.Version)
	if err != nil {
		return nil, err
	}
	defer state.ReleaseLock(lockPath)

	if req.ResetState {
		util.Warn("Resetting %s state under %s", language, req.Root)
		if err := store.Reset(req.Root, language); err != nil {
			return nil, fmt.Errorf("resetting state: %w", err)
		}
	}

	prior, err := store.Load(req.Root, language)
	if err != nil {
		return nil, err
	}

	sm, err := extractor.Extract(ctx, req.Root, adapter)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	runner := detector.NewRunner(c.cfg)
	raws, runs, err := runner.RunAll(ctx, sm)
	if err != nil {
		return nil, err
	}

	observed, merged := identity.Assign(raws)

	// Only detectors that completed cleanly may resolve their prior
	// findings; a failed or disabled detector freezes them instead.
	ranDetectors := make(map[string]bool, len(runs))
	detectorFailed := false
	for _, run := range runs {
		if run.Error == "" {
			ranDetectors[run.Name] = true
		} else {
			detectorFailed = true
		}
	}

	scan := prior.ScanCount + 1
	now := time.Now().UTC()
	next, stats := state.NewReconciler(c.cfg.State).Reconcile(prior, observed, ranDetectors, scan, now)
	stats.Merged = merged

	card := score.NewService(c.cfg.Scoring).Compute(next)

	runID := uuid.NewString()
	incomplete := detectorFailed || len(sm.Warnings) > 0
	next.Root = req.Root
	next.LastScanID = runID
	next.LastScanAt = now
	next.Incomplete = incomplete
	next.History = appendHistory(next.History, model.ScanSummary{
		Scan:       scan,
		RunID:      runID,
		At:         now,
		New:        stats.New,
		Reopened:   stats.Reopened,
		Fixed:      stats.Fixed,
		Open:       next.OpenCount(),
		Weighted:   card.Weighted,
		Strict:     card.Strict,
		Incomplete: incomplete,
	}, c.cfg.State.HistoryLimit)

	if err := store.Save(req.Root, next); err != nil {
		return nil, fmt.Errorf("saving state: %w", err)
	}

	open := openFindings(next)
	report := &model.ScanReport{
		RunID:        runID,
		Language:     language,
		Root:         req.Root,
		Scan:         scan,
		StartedAt:    startedAt,
		FinishedAt:   time.Now().UTC(),
		Files:        len(sm.Files),
		Units:        len(sm.Units),
		Edges:        len(sm.Edges),
		Detectors:    runs,
		Stats:        stats,
		Score:        card,
		OpenCount:    len(open),
		OpenFindings: open,
		Warnings:     sm.Warnings,
		Incomplete:   incomplete,
	}

	util.Info("Scan %d complete: %d observed, %d new, %d fixed, %d open, weighted score %.1f (took %v)",
		scan, stats.Observed, stats.New, stats.Fixed, len(open), card.Weighted, time.Since(startedAt))

	return report, nil
}

// DetectRequest represents a stateless single-detector run
type DetectRequest struct {
	Root     string
	Language string
	Detector string
}

// Detect extracts the symbol model and runs exactly one detector,
// returning its raw findings. No state is read or written, no
// identities are assigned; this is a preview of what a scan would see.
func (c *ScanController) Detect(ctx context.Context, req DetectRequest) ([]model.RawFinding, error) {
	extractor := extract.NewService(c.cfg)
	adapter, err := extractor.AdapterFor(req.Root, req.Language)
	if err != nil {
		return nil, err
	}

	runner := detector.NewRunner(c.cfg)
	det := runner.GetDetector(req.Detector)
	if det == nil {
		return nil, fmt.Errorf("unknown detector %q (available: %v)", req.Detector, runner.ListDetectors())
	}

	sm, err := extractor.Extract(ctx, req.Root, adapter)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	util.Info("Running detector %s over %d units", det.Name(), len(sm.Units))
	raws, err := det.Detect(ctx, sm)
	if err != nil {
		return nil, fmt.Errorf("detector %s: %w", det.Name(), err)
	}
	detector.SortFindings(raws)
	return raws, nil
}

// appendHistory adds a scan summary and trims the history to the limit,
// dropping the oldest entries first.
func appendHistory(history []model.ScanSummary, entry model.ScanSummary, limit int) []model.ScanSummary {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history = append(history, entry)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

// openFindings returns the open findings in working order: highest
// tier first, then oldest.
func openFindings(st *model.ScanState) []*model.Finding {
	var open []*model.Finding
	for _, f := range st.SortedFindings() {
		if f.Status == model.StatusOpen {
			open = append(open, f)
		}
	}
	query.Order(open)
	return open
}
