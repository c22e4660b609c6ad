package detector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

// MixedConcernsDetector finds files whose units pull in too many
// directions at once
type MixedConcernsDetector struct {
	BaseDetector
	cfg config.MixedConcernsConfig
}

// NewMixedConcernsDetector creates a new mixed-concerns detector
func NewMixedConcernsDetector(base BaseDetector, cfg config.MixedConcernsConfig) *MixedConcernsDetector {
	return &MixedConcernsDetector{BaseDetector: base, cfg: cfg}
}

// Name returns the detector name
func (d *MixedConcernsDetector) Name() string {
	return "mixed_concerns"
}

// IsEnabled checks if this detector is enabled in config
func (d *MixedConcernsDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect groups each file's units by the leading word of their names.
// A file whose units open with many unrelated verbs is usually several
// files that never got split.
func (d *MixedConcernsDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	minUnits := d.cfg.MinUnits
	if minUnits <= 0 {
		minUnits = 8
	}
	minGroups := d.cfg.MinGroups
	if minGroups <= 0 {
		minGroups = 4
	}

	byFile := make(map[string][]string)
	for i := range sm.Units {
		u := &sm.Units[i]
		if u.Kind == model.UnitClass {
			continue
		}
		byFile[u.File] = append(byFile[u.File], u.Name)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	var findings []model.RawFinding
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		names := byFile[file]
		if len(names) < minUnits {
			continue
		}
		if d.ShouldExclude(file, "") {
			continue
		}

		groups := make(map[string]int)
		for _, n := range names {
			if w := leadingWord(n); w != "" {
				groups[w]++
			}
		}
		if len(groups) < minGroups {
			continue
		}

		words := make([]string, 0, len(groups))
		for w := range groups {
			words = append(words, w)
		}
		sort.Strings(words)

		findings = append(findings, model.RawFinding{
			Detector:  "mixed_concerns",
			File:      file,
			StartLine: 1,
			Tier:      model.Tier3,
			Message:   fmt.Sprintf("Split file: %d units across %d concern groups (%s)", len(names), len(groups), strings.Join(words, ", ")),
			Evidence: map[string]any{
				"units":  len(names),
				"groups": words,
			},
			SignatureParts: []string{file},
		})
	}
	return findings, nil
}

// leadingWord extracts the first word of a unit name: the method part
// after any receiver dot, split at the first underscore or interior
// uppercase letter, lowercased
func leadingWord(name string) string {
	name = shortName(name)
	name = strings.TrimLeft(name, "_$#")
	if name == "" {
		return ""
	}
	for i, r := range name {
		if i == 0 {
			continue
		}
		if r == '_' {
			return strings.ToLower(name[:i])
		}
		if unicode.IsUpper(r) {
			return strings.ToLower(name[:i])
		}
	}
	return strings.ToLower(name)
}
