package state

import (
	"sort"
	"time"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

const reopenNote = "reopened: detected again after fixed"

// Reconciler merges one scan's observed findings into the prior state.
// It is a pure transformation: the prior state is cloned, never
// mutated, and the same inputs always produce the same output.
type Reconciler struct {
	onMissingDetector string
}

// NewReconciler creates a reconciler from state configuration
func NewReconciler(cfg config.StateConfig) *Reconciler {
	mode := cfg.OnMissingDetector
	if mode != "resolve" {
		mode = "freeze"
	}
	return &Reconciler{onMissingDetector: mode}
}

// Reconcile applies the observed findings of scan number `scan` to the
// prior state. ranDetectors must contain exactly the detectors that
// completed without error; findings owned by detectors that did not
// run are frozen rather than resolved (unless configured otherwise).
//
// Status rules: machine-set statuses (open, fixed) move freely between
// open and fixed; human-set statuses (wontfix, false_positive) are
// never changed here, only their location and evidence refresh.
func (r *Reconciler) Reconcile(prior *model.ScanState, observed map[string]model.RawFinding, ranDetectors map[string]bool, scan int, now time.Time) (*model.ScanState, model.ReconcileStats) {
	next := prior.Clone()
	next.ScanCount = scan

	stats := model.ReconcileStats{Observed: len(observed)}

	ids := make([]string, 0, len(observed))
	for id := range observed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		raw := observed[id]
		existing, ok := next.Findings[id]
		if !ok {
			next.Findings[id] = &model.Finding{
				ID:            id,
				Detector:      raw.Detector,
				Tier:          raw.Tier,
				File:          raw.File,
				StartLine:     raw.StartLine,
				EndLine:       raw.EndLine,
				UnitName:      raw.UnitName,
				Message:       raw.Message,
				Evidence:      raw.Evidence,
				Status:        model.StatusOpen,
				FirstSeenScan: scan,
				LastSeenScan:  scan,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			stats.New++
			continue
		}

		refreshFinding(existing, raw, scan, now)
		switch existing.Status {
		case model.StatusFixed:
			existing.Status = model.StatusOpen
			existing.ReopenCount++
			existing.Note = reopenNote
			stats.Reopened++
		default:
			// open stays open; human-set statuses are kept
			stats.Refreshed++
		}
	}

	for _, f := range next.SortedFindings() {
		if _, seen := observed[f.ID]; seen {
			continue
		}
		detectorRan := ranDetectors[f.Detector] || r.onMissingDetector == "resolve"
		if !detectorRan {
			if f.Status == model.StatusOpen {
				stats.Frozen++
			}
			continue
		}
		if f.Status == model.StatusOpen {
			f.Status = model.StatusFixed
			f.UpdatedAt = now
			stats.Fixed++
		}
		// fixed stays fixed; human-set statuses stay, LastSeenScan stale
	}

	util.Debug("Reconciled scan %d: %d observed, %d new, %d reopened, %d fixed, %d frozen",
		scan, stats.Observed, stats.New, stats.Reopened, stats.Fixed, stats.Frozen)
	return next, stats
}

// refreshFinding updates the mutable location and evidence of a known
// finding from this scan's observation. Status and note are handled by
// the caller.
func refreshFinding(f *model.Finding, raw model.RawFinding, scan int, now time.Time) {
	f.File = raw.File
	f.StartLine = raw.StartLine
	f.EndLine = raw.EndLine
	f.UnitName = raw.UnitName
	f.Tier = raw.Tier
	f.Message = raw.Message
	f.Evidence = raw.Evidence
	f.LastSeenScan = scan
	f.UpdatedAt = now
}
