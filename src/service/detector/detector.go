package detector

import (
	"context"
	"strings"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

// Detector is the interface for all structural debt detectors. Detect
// reads the SymbolModel only and never mutates it, so detectors are
// safe to run concurrently against the same model.
type Detector interface {
	// Name returns the detector name
	Name() string

	// IsEnabled returns whether the detector is enabled
	IsEnabled() bool

	// Detect analyzes the symbol model and returns raw findings
	Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error)
}

// BaseDetector provides common functionality for detectors
type BaseDetector struct {
	Cfg        *config.Config
	Exclusions *util.ExclusionMatcher
}

// NewBaseDetector creates a new base detector
func NewBaseDetector(cfg *config.Config) BaseDetector {
	return BaseDetector{
		Cfg:        cfg,
		Exclusions: util.NewExclusionMatcher(cfg.Exclusions),
	}
}

// ShouldExclude checks if a unit should be excluded
func (b *BaseDetector) ShouldExclude(filePath, unitName string) bool {
	return b.Exclusions.Matches(filePath, unitName)
}

// shortName strips the receiver or class qualifier from a unit name,
// leaving the plain identifier other units would reference it by
func shortName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
