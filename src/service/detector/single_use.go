package detector

import (
	"context"
	"fmt"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

// SingleUseDetector finds units the rest of the codebase touches
// exactly once
type SingleUseDetector struct {
	BaseDetector
	cfg config.SingleUseConfig
}

// NewSingleUseDetector creates a new single-use detector
func NewSingleUseDetector(base BaseDetector, cfg config.SingleUseConfig) *SingleUseDetector {
	return &SingleUseDetector{BaseDetector: base, cfg: cfg}
}

// Name returns the detector name
func (d *SingleUseDetector) Name() string {
	return "single_use"
}

// IsEnabled checks if this detector is enabled in config
func (d *SingleUseDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect counts how many other units mention each unit by name. A
// single caller usually means an abstraction that never earned its
// keep, except when a long unit was extracted within the same file
// on purpose.
func (d *SingleUseDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	type ref struct {
		count    int
		lastFile string
	}
	refs := make(map[string]*ref, len(sm.Units))
	names := make(map[string][]int)
	for i := range sm.Units {
		name := shortName(sm.Units[i].Name)
		if name == "" || len(name) == 1 {
			continue
		}
		names[name] = append(names[name], i)
	}

	for i := range sm.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := &sm.Units[i]
		seen := make(map[string]struct{})
		for _, tok := range u.Tokens {
			idxs, ok := names[tok]
			if !ok {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			for _, j := range idxs {
				if j == i {
					continue
				}
				r := refs[sm.Units[j].ID]
				if r == nil {
					r = &ref{}
					refs[sm.Units[j].ID] = r
				}
				r.count++
				r.lastFile = u.File
			}
		}
	}

	minLines := d.cfg.SuppressMinLines
	if minLines <= 0 {
		minLines = 50
	}
	maxLines := d.cfg.SuppressMaxLines
	if maxLines <= 0 {
		maxLines = 200
	}

	var findings []model.RawFinding
	for i := range sm.Units {
		u := &sm.Units[i]
		r := refs[u.ID]
		if r == nil || r.count != 1 {
			continue
		}
		if d.ShouldExclude(u.File, u.Name) {
			continue
		}
		if r.lastFile == u.File && u.Metrics.Lines >= minLines && u.Metrics.Lines <= maxLines {
			continue
		}
		findings = append(findings, model.RawFinding{
			Detector:  "single_use",
			File:      u.File,
			StartLine: u.StartLine,
			EndLine:   u.EndLine,
			UnitName:  u.Name,
			Tier:      model.Tier2,
			Message:   fmt.Sprintf("Inline candidate: %s %s has exactly one caller (%s)", u.Kind, u.Name, r.lastFile),
			Evidence: map[string]any{
				"caller_file": r.lastFile,
				"kind":        string(u.Kind),
			},
			SignatureParts: []string{u.File, u.Name},
		})
	}
	return findings, nil
}
