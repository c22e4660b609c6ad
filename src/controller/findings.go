package controller

import (
	"fmt"
	"time"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/service/extract"
	"debtwatch/src/service/query"
	"debtwatch/src/service/score"
	"debtwatch/src/service/state"
	"debtwatch/src/util"
)

// historyTail is how many scan summaries the status report carries
const historyTail = 10

// FindingsController serves the read and resolve operations over
// persisted findings. Everything except Resolve is read-only.
type FindingsController struct {
	cfg   *config.Config
	store *state.Store
	query *query.Service
}

// NewFindingsController creates a new findings controller
func NewFindingsController(cfg *config.Config) *FindingsController {
	return &FindingsController{
		cfg:   cfg,
		store: state.NewStore(cfg.State),
		query: query.NewService(),
	}
}

// load resolves the language (auto-detecting from the root's marker
// files when unset) and loads the persisted state for it.
func (c *FindingsController) load(root, language string) (*model.ScanState, error) {
	adapter, err := extract.NewService(c.cfg).AdapterFor(root, language)
	if err != nil {
		return nil, err
	}
	return c.store.Load(root, adapter.Language())
}

// Status builds the health summary: scores, per-status counts, and the
// tail of the scan history.
func (c *FindingsController) Status(root, language string) (*model.StatusReport, error) {
	st, err := c.load(root, language)
	if err != nil {
		return nil, err
	}

	history := st.History
	if len(history) > historyTail {
		history = history[len(history)-historyTail:]
	}

	return &model.StatusReport{
		Language:   st.Language,
		Root:       root,
		ScanCount:  st.ScanCount,
		LastRunID:  st.LastScanID,
		LastScanAt: st.LastScanAt,
		Incomplete: st.Incomplete,
		Score:      score.NewService(c.cfg.Scoring).Compute(st),
		ByStatus:   st.CountByStatus(),
		History:    history,
	}, nil
}

// Show returns the findings matching a pattern, filtered and ordered
func (c *FindingsController) Show(root, language, pattern string, filter query.Filter) (*model.QueryResult, error) {
	st, err := c.load(root, language)
	if err != nil {
		return nil, err
	}

	matches := c.query.Match(st, pattern, filter)
	return &model.QueryResult{
		Pattern:  pattern,
		Tier:     filter.Tier,
		Status:   filter.Status,
		Count:    len(matches),
		Findings: matches,
	}, nil
}

// Next returns the n open findings to work on first
func (c *FindingsController) Next(root, language string, n int, tier model.Tier) (*model.QueryResult, error) {
	st, err := c.load(root, language)
	if err != nil {
		return nil, err
	}

	matches := c.query.Next(st, n, tier)
	return &model.QueryResult{
		Tier:     tier,
		Count:    len(matches),
		Findings: matches,
	}, nil
}

// Resolve sets a human judgment on every finding matching the pattern
// and persists the state. Returns the matched findings after mutation.
func (c *FindingsController) Resolve(root, language, status, pattern, note string) (*model.QueryResult, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q (want open, fixed, wontfix or false_positive)", status)
	}

	adapter, err := extract.NewService(c.cfg).AdapterFor(root, language)
	if err != nil {
		return nil, err
	}

	lockPath, err := state.AcquireLock(c.store.Dir(root), c.cfg.Agent.Name, c.cfg.Agent.Version)
	if err != nil {
		return nil, err
	}
	defer state.ReleaseLock(lockPath)

	st, err := c.store.Load(root, adapter.Language())
	if err != nil {
		return nil, err
	}

	matches := c.query.Match(st, pattern, query.Filter{})
	ids := make([]string, len(matches))
	for i, f := range matches {
		ids[i] = f.ID
	}

	n, err := state.ApplyResolution(st, ids, model.Status(status), note, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(root, st); err != nil {
		return nil, fmt.Errorf("saving state: %w", err)
	}

	util.Info("Resolved %d finding(s) as %s", n, status)
	return &model.QueryResult{
		Pattern:  pattern,
		Status:   model.Status(status),
		Count:    n,
		Findings: matches,
	}, nil
}

// Plan groups the open findings by descending tier so a caller can
// work from the heaviest debt down. Items per group are capped by
// output.max_items; Count always carries the full total.
func (c *FindingsController) Plan(root, language string) (*model.PlanReport, error) {
	st, err := c.load(root, language)
	if err != nil {
		return nil, err
	}

	open := openFindings(st)
	plan := &model.PlanReport{
		GeneratedAt: time.Now().UTC(),
		Language:    st.Language,
		Root:        root,
		OpenTotal:   len(open),
	}

	for tier := model.Tier4; tier >= model.Tier1; tier-- {
		var items []*model.Finding
		byDetector := make(map[string]int)
		for _, f := range open {
			if f.Tier != tier {
				continue
			}
			items = append(items, f)
			byDetector[f.Detector]++
		}
		if len(items) == 0 {
			continue
		}

		count := len(items)
		if max := c.cfg.Output.MaxItems; max > 0 && len(items) > max {
			items = items[:max]
		}
		plan.Groups = append(plan.Groups, model.PlanGroup{
			Tier:       tier,
			Label:      tier.Label(),
			Count:      count,
			ByDetector: byDetector,
			Items:      items,
		})
	}

	return plan, nil
}
