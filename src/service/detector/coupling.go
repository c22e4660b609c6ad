package detector

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/graph/network"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

// CouplingDetector flags modules whose dependency fan-in or fan-out
// is out of proportion with the rest of the graph
type CouplingDetector struct {
	BaseDetector
	cfg config.CouplingConfig
}

// NewCouplingDetector creates a new coupling detector
func NewCouplingDetector(base BaseDetector, cfg config.CouplingConfig) *CouplingDetector {
	return &CouplingDetector{
		BaseDetector: base,
		cfg:          cfg,
	}
}

// Name returns the detector name
func (d *CouplingDetector) Name() string {
	return "coupling"
}

// IsEnabled returns whether the detector is enabled
func (d *CouplingDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect runs coupling analysis over the dependency graph. PageRank
// separates genuinely load-bearing hubs from modules that merely have
// many inbound edges.
func (d *CouplingDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	g := buildGraph(sm)
	if len(g.idOf) == 0 {
		return nil, nil
	}

	maxFanIn := d.cfg.MaxFanIn
	if maxFanIn <= 0 {
		maxFanIn = 25
	}
	maxFanOut := d.cfg.MaxFanOut
	if maxFanOut <= 0 {
		maxFanOut = 20
	}
	hubFactor := d.cfg.HubScoreFactor
	if hubFactor <= 0 {
		hubFactor = 3.0
	}

	ranks := network.PageRank(g.directed, 0.85, 1e-6)
	var mean float64
	for _, r := range ranks {
		mean += r
	}
	mean /= float64(len(ranks))
	util.Debug("Coupling detector: %d nodes, mean rank %.4f", len(ranks), mean)

	var findings []model.RawFinding
	for _, label := range g.sortedLabels() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.ShouldExclude(label, "") {
			continue
		}
		fanIn := g.fanIn[label]
		fanOut := g.fanOut[label]
		rank := ranks[g.idOf[label]]

		sprawling := fanOut > maxFanOut
		hub := fanIn > maxFanIn && rank >= hubFactor*mean
		if !sprawling && !hub {
			continue
		}
		findings = append(findings, d.createCouplingFinding(label, fanIn, fanOut, maxFanOut, rank, mean, sprawling, hub))
	}
	return findings, nil
}

func (d *CouplingDetector) createCouplingFinding(label string, fanIn, fanOut, maxFanOut int, rank, mean float64, sprawling, hub bool) model.RawFinding {
	var (
		kind    string
		tier    model.Tier
		message string
	)
	switch {
	case sprawling && hub:
		kind = "choke-point"
		tier = model.Tier4
		message = fmt.Sprintf("Choke point: %d dependencies in, %d out (rank %.1fx mean)", fanIn, fanOut, rank/mean)
	case sprawling:
		kind = "sprawling"
		tier = model.Tier3
		message = fmt.Sprintf("Sprawling module: depends on %d others (max %d)", fanOut, maxFanOut)
	default:
		kind = "hub"
		tier = model.Tier3
		message = fmt.Sprintf("Hub module: %d dependents with %.1fx mean centrality", fanIn, rank/mean)
	}
	return model.RawFinding{
		Detector:  "coupling",
		File:      label,
		StartLine: 1,
		Tier:      tier,
		Message:   message,
		Evidence: map[string]any{
			"fan_in":  fanIn,
			"fan_out": fanOut,
			"rank":    rank,
			"mean":    mean,
			"kind":    kind,
		},
		SignatureParts: []string{label, kind},
	}
}
