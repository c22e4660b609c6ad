package detector

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

var (
	delegateRe = regexp.MustCompile(`(?:return|=>)\s+(?:await\s+)?([A-Za-z_$][\w$.]*)\s*\(([^()]*)\)[\s;}]*$`)
	bareArgRe  = regexp.MustCompile(`^(?:\.\.\.)?[A-Za-z_$][\w$]*$`)
)

// PassthroughDetector finds wrappers that only forward their
// parameters to one other call
type PassthroughDetector struct {
	BaseDetector
	cfg config.PassthroughConfig
}

// NewPassthroughDetector creates a new passthrough detector
func NewPassthroughDetector(base BaseDetector, cfg config.PassthroughConfig) *PassthroughDetector {
	return &PassthroughDetector{BaseDetector: base, cfg: cfg}
}

// Name returns the detector name
func (d *PassthroughDetector) Name() string {
	return "passthrough"
}

// IsEnabled checks if this detector is enabled in config
func (d *PassthroughDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect flags units whose whole body is one delegating return. The
// argument list must pass every parameter through untouched; any
// transformation means the wrapper earns its keep.
func (d *PassthroughDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	var findings []model.RawFinding
	for i := range sm.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := &sm.Units[i]
		if u.Kind == model.UnitClass {
			continue
		}
		if d.ShouldExclude(u.File, u.Name) {
			continue
		}
		target, ok := d.delegationTarget(u)
		if !ok {
			continue
		}
		findings = append(findings, model.RawFinding{
			Detector:  "passthrough",
			File:      u.File,
			StartLine: u.StartLine,
			EndLine:   u.EndLine,
			UnitName:  u.Name,
			Tier:      model.Tier1,
			Message:   fmt.Sprintf("Pass-through wrapper: %s only forwards to %s", u.Name, target),
			Evidence: map[string]any{
				"target": target,
			},
			SignatureParts: []string{u.File, u.Name},
		})
	}
	return findings, nil
}

// delegationTarget reports the callee when the unit is a pure
// forwarder, with every parameter handed over as a bare argument
func (d *PassthroughDetector) delegationTarget(u *model.Unit) (string, bool) {
	body := u.NormalizedBody
	if body == "" {
		return "", false
	}
	if strings.Count(body, "\n") > 2 {
		return "", false
	}
	m := delegateRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	target := m[1]
	if shortName(target) == shortName(u.Name) {
		return "", false
	}

	args := splitArgs(m[2])
	if len(args) != u.Metrics.Params {
		return "", false
	}
	for _, a := range args {
		if !bareArgRe.MatchString(a) {
			return "", false
		}
	}
	return target, true
}

func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
