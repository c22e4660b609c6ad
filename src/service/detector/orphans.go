package detector

import (
	"context"
	"fmt"
	"path"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

// OrphansDetector finds modules nothing depends on
type OrphansDetector struct {
	BaseDetector
	cfg config.OrphansConfig
}

// NewOrphansDetector creates a new orphans detector
func NewOrphansDetector(base BaseDetector, cfg config.OrphansConfig) *OrphansDetector {
	return &OrphansDetector{BaseDetector: base, cfg: cfg}
}

// Name returns the detector name
func (d *OrphansDetector) Name() string {
	return "orphans"
}

// IsEnabled checks if this detector is enabled in config
func (d *OrphansDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect reports modules with zero inbound dependencies that do not
// look like entry points. Entry patterns match against the full node
// label and its base name, so "cmd/**" and "main*" both work.
func (d *OrphansDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	g := buildGraph(sm)

	var findings []model.RawFinding
	for _, label := range g.sortedLabels() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.fanIn[label] > 0 {
			continue
		}
		if d.matchesEntry(label) {
			continue
		}
		if d.ShouldExclude(label, "") {
			continue
		}
		findings = append(findings, model.RawFinding{
			Detector:  "orphans",
			File:      label,
			StartLine: 1,
			Tier:      model.Tier2,
			Message:   fmt.Sprintf("Orphan module: nothing imports %s", label),
			Evidence: map[string]any{
				"fan_out": g.fanOut[label],
			},
			SignatureParts: []string{label},
		})
	}
	util.Debug("Orphans detector: %d orphan modules", len(findings))
	return findings, nil
}

func (d *OrphansDetector) matchesEntry(label string) bool {
	base := path.Base(label)
	for _, p := range d.cfg.EntryPatterns {
		if util.MatchGlob(p, label) || util.MatchGlob(p, base) {
			return true
		}
	}
	return false
}
