package detector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/topo"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

// CyclesDetector finds circular dependencies between modules
type CyclesDetector struct {
	BaseDetector
	cfg config.CyclesConfig
}

// NewCyclesDetector creates a new cycles detector
func NewCyclesDetector(base BaseDetector, cfg config.CyclesConfig) *CyclesDetector {
	return &CyclesDetector{BaseDetector: base, cfg: cfg}
}

// Name returns the detector name
func (d *CyclesDetector) Name() string {
	return "cycles"
}

// IsEnabled checks if this detector is enabled in config
func (d *CyclesDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect reports one finding per strongly connected component with
// more than one member. Members are sorted so the same cycle always
// produces the same finding no matter the traversal order.
func (d *CyclesDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	g := buildGraph(sm)

	var findings []model.RawFinding
	for _, scc := range topo.TarjanSCC(g.directed) {
		if len(scc) <= 1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		members := make([]string, 0, len(scc))
		for _, n := range scc {
			members = append(members, g.labelOf[n.ID()])
		}
		sort.Strings(members)

		excluded := true
		for _, m := range members {
			if !d.ShouldExclude(m, "") {
				excluded = false
				break
			}
		}
		if excluded {
			continue
		}
		findings = append(findings, d.createCycleFinding(members))
	}
	return findings, nil
}

func (d *CyclesDetector) createCycleFinding(members []string) model.RawFinding {
	maxFiles := d.cfg.SmallCycleMaxFiles
	if maxFiles <= 0 {
		maxFiles = 3
	}
	tier := model.Tier4
	if len(members) <= maxFiles {
		tier = model.Tier3
	}
	return model.RawFinding{
		Detector:  "cycles",
		File:      members[0],
		StartLine: 1,
		Tier:      tier,
		Message:   fmt.Sprintf("Dependency cycle across %d modules: %s", len(members), strings.Join(members, ", ")),
		Evidence: map[string]any{
			"members": members,
			"size":    len(members),
		},
		SignatureParts: members,
	}
}
