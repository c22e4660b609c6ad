package detector

import (
	"context"
	"fmt"
	"math"
	"strings"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

// StructureDetector flags oversized units, classes and files
type StructureDetector struct {
	BaseDetector
	cfg config.StructureConfig
}

// NewStructureDetector creates a new structure detector
func NewStructureDetector(base BaseDetector, cfg config.StructureConfig) *StructureDetector {
	return &StructureDetector{BaseDetector: base, cfg: cfg}
}

// Name returns the detector name
func (d *StructureDetector) Name() string {
	return "structure"
}

// IsEnabled checks if this detector is enabled in config
func (d *StructureDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect scores every unit, class and file against its size limits.
// Each dimension contributes its relative excess over the limit; the
// summed composite picks the tier, so one extreme dimension and many
// mild ones can reach the same band.
func (d *StructureDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	var findings []model.RawFinding

	for i := range sm.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := &sm.Units[i]
		if d.ShouldExclude(u.File, u.Name) {
			continue
		}
		var f *model.RawFinding
		if u.Kind == model.UnitClass {
			f = d.checkClass(u)
		} else {
			f = d.checkUnit(u)
		}
		if f != nil {
			findings = append(findings, *f)
		}
	}

	for i := range sm.Files {
		fi := &sm.Files[i]
		if d.ShouldExclude(fi.Path, "") {
			continue
		}
		if f := d.checkFile(fi); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings, nil
}

func (d *StructureDetector) checkUnit(u *model.Unit) *model.RawFinding {
	var composite float64
	var violations []string

	if e := excess(u.Metrics.Lines, d.cfg.MaxUnitLines); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d lines", u.Metrics.Lines, d.cfg.MaxUnitLines))
	}
	if e := excess(u.Metrics.Params, d.cfg.MaxParams); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d params", u.Metrics.Params, d.cfg.MaxParams))
	}
	if e := excess(u.Metrics.Branches, d.cfg.MaxBranches); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d branches", u.Metrics.Branches, d.cfg.MaxBranches))
	}
	if e := excess(u.Metrics.Nesting, d.cfg.MaxNesting); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("nesting %d/%d", u.Metrics.Nesting, d.cfg.MaxNesting))
	}

	tier, ok := d.tierFor(composite)
	if !ok {
		return nil
	}
	return &model.RawFinding{
		Detector:  "structure",
		File:      u.File,
		StartLine: u.StartLine,
		EndLine:   u.EndLine,
		UnitName:  u.Name,
		Tier:      tier,
		Message:   fmt.Sprintf("Oversized %s %s: %s", u.Kind, u.Name, strings.Join(violations, ", ")),
		Evidence: map[string]any{
			"composite":  round3(composite),
			"violations": violations,
			"kind":       string(u.Kind),
		},
		SignatureParts: []string{u.File, u.Name, "unit"},
	}
}

func (d *StructureDetector) checkClass(u *model.Unit) *model.RawFinding {
	var composite float64
	var violations []string

	if e := excess(u.Metrics.Methods, d.cfg.MaxMethods); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d methods", u.Metrics.Methods, d.cfg.MaxMethods))
	}
	if e := excess(u.Metrics.Fields, d.cfg.MaxFields); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d fields", u.Metrics.Fields, d.cfg.MaxFields))
	}
	if e := excess(u.Metrics.Lines, d.cfg.MaxClassLines); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d lines", u.Metrics.Lines, d.cfg.MaxClassLines))
	}

	tier, ok := d.tierFor(composite)
	if !ok {
		return nil
	}
	return &model.RawFinding{
		Detector:  "structure",
		File:      u.File,
		StartLine: u.StartLine,
		EndLine:   u.EndLine,
		UnitName:  u.Name,
		Tier:      tier,
		Message:   fmt.Sprintf("God class %s: %s", u.Name, strings.Join(violations, ", ")),
		Evidence: map[string]any{
			"composite":  round3(composite),
			"violations": violations,
			"kind":       "class",
		},
		SignatureParts: []string{u.File, u.Name, "class"},
	}
}

func (d *StructureDetector) checkFile(fi *model.FileInfo) *model.RawFinding {
	var composite float64
	var violations []string

	if e := excess(fi.Lines, d.cfg.MaxFileLines); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d lines", fi.Lines, d.cfg.MaxFileLines))
	}
	if e := excess(fi.UnitCount, d.cfg.MaxFileUnits); e > 0 {
		composite += e
		violations = append(violations, fmt.Sprintf("%d/%d units", fi.UnitCount, d.cfg.MaxFileUnits))
	}

	tier, ok := d.tierFor(composite)
	if !ok {
		return nil
	}
	return &model.RawFinding{
		Detector:  "structure",
		File:      fi.Path,
		StartLine: 1,
		Tier:      tier,
		Message:   fmt.Sprintf("Oversized file: %s", strings.Join(violations, ", ")),
		Evidence: map[string]any{
			"composite":  round3(composite),
			"violations": violations,
			"kind":       "file",
		},
		SignatureParts: []string{fi.Path, "file"},
	}
}

// tierFor maps a composite excess onto a tier band
func (d *StructureDetector) tierFor(composite float64) (model.Tier, bool) {
	t4, t3, t2 := d.cfg.Tier4Band, d.cfg.Tier3Band, d.cfg.Tier2Band
	if t4 <= 0 {
		t4 = 3.0
	}
	if t3 <= 0 {
		t3 = 2.0
	}
	if t2 <= 0 {
		t2 = 1.0
	}
	switch {
	case composite >= t4:
		return model.Tier4, true
	case composite >= t3:
		return model.Tier3, true
	case composite >= t2:
		return model.Tier2, true
	default:
		return 0, false
	}
}

// excess returns how far value overshoots limit, as a fraction of the
// limit. Values at or under the limit contribute nothing.
func excess(value, limit int) float64 {
	if limit <= 0 || value <= limit {
		return 0
	}
	return float64(value)/float64(limit) - 1
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
