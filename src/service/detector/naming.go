package detector

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

var trailingDigitsRe = regexp.MustCompile(`[0-9]+$`)

// NamingDetector flags unit names that carry no meaning
type NamingDetector struct {
	BaseDetector
	cfg     config.NamingConfig
	generic map[string]struct{}
}

// NewNamingDetector creates a new naming detector
func NewNamingDetector(base BaseDetector, cfg config.NamingConfig) *NamingDetector {
	generic := make(map[string]struct{}, len(cfg.GenericNames))
	for _, n := range cfg.GenericNames {
		generic[strings.ToLower(n)] = struct{}{}
	}
	return &NamingDetector{BaseDetector: base, cfg: cfg, generic: generic}
}

// Name returns the detector name
func (d *NamingDetector) Name() string {
	return "naming"
}

// IsEnabled checks if this detector is enabled in config
func (d *NamingDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect checks every unit name for the usual sins: single letters,
// generic filler words, numbered suffixes and run-on names. Methods
// are judged by the segment after the receiver dot.
func (d *NamingDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	maxLen := d.cfg.MaxNameLength
	if maxLen <= 0 {
		maxLen = 45
	}

	var findings []model.RawFinding
	for i := range sm.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := &sm.Units[i]
		if d.ShouldExclude(u.File, u.Name) {
			continue
		}
		name := shortName(u.Name)
		if name == "" {
			continue
		}

		kind, message := d.classify(name, maxLen)
		if kind == "" {
			continue
		}
		findings = append(findings, model.RawFinding{
			Detector:  "naming",
			File:      u.File,
			StartLine: u.StartLine,
			EndLine:   u.EndLine,
			UnitName:  u.Name,
			Tier:      model.Tier1,
			Message:   message,
			Evidence: map[string]any{
				"name": name,
				"kind": kind,
			},
			SignatureParts: []string{u.File, u.Name, kind},
		})
	}
	return findings, nil
}

func (d *NamingDetector) classify(name string, maxLen int) (string, string) {
	lower := strings.ToLower(name)
	switch {
	case len(name) == 1:
		return "single-char", fmt.Sprintf("Single-character name %q", name)
	case d.isGeneric(lower):
		return "generic", fmt.Sprintf("Generic name %q says nothing about purpose", name)
	case trailingDigitsRe.MatchString(name):
		return "numbered", fmt.Sprintf("Numbered name %q suggests a copy-paste series", name)
	case len(name) > maxLen:
		return "run-on", fmt.Sprintf("Name %q is %d characters long (max %d)", name, len(name), maxLen)
	default:
		return "", ""
	}
}

func (d *NamingDetector) isGeneric(lower string) bool {
	_, ok := d.generic[lower]
	return ok
}
