package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

const informationURI = "https://github.com/debtwatch/debtwatch"

// Generator renders scan reports in the supported output formats
type Generator struct {
	cfg config.OutputConfig
}

// NewGenerator creates a new report generator
func NewGenerator(cfg config.OutputConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Generate renders a report in the specified format
func (g *Generator) Generate(rep *model.ScanReport, format string) (string, error) {
	util.Debug("Generating report in %s format (%d open findings)", format, rep.OpenCount)
	switch format {
	case "json":
		return g.generateJSON(rep)
	case "markdown", "md":
		return g.generateMarkdown(rep)
	case "sarif":
		return g.generateSARIF(rep)
	default:
		util.Warn("Unsupported report format requested: %s", format)
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// Write renders the report and writes it to dir as debt-<lang>.<ext>,
// returning the file path.
func (g *Generator) Write(rep *model.ScanReport, format, dir string) (string, error) {
	content, err := g.Generate(rep, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("debt-%s.%s", rep.Language, Extension(format)))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	util.Info("Report written to %s", path)
	return path, nil
}

// Extension maps a format name to its file extension
func Extension(format string) string {
	switch format {
	case "markdown", "md":
		return "md"
	case "sarif":
		return "sarif"
	default:
		return "json"
	}
}

func (g *Generator) generateJSON(rep *model.ScanReport) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *Generator) generateMarkdown(rep *model.ScanReport) (string, error) {
	var sb strings.Builder

	sb.WriteString("# Debt Report\n\n")
	sb.WriteString(fmt.Sprintf("**Root:** %s\n", rep.Root))
	sb.WriteString(fmt.Sprintf("**Language:** %s\n", rep.Language))
	sb.WriteString(fmt.Sprintf("**Scan:** #%d (%s)\n", rep.Scan, rep.FinishedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
	if rep.Incomplete {
		sb.WriteString("**Partial results:** some files or detectors failed\n")
	}
	sb.WriteString("\n## Score\n\n")
	sb.WriteString(fmt.Sprintf("- **Weighted:** %.1f/100\n", rep.Score.Weighted))
	sb.WriteString(fmt.Sprintf("- **Strict:** %.1f/100\n\n", rep.Score.Strict))

	sb.WriteString("### By Tier\n\n")
	sb.WriteString("| Tier | Effort | Open | Fixed | Wontfix | False positive |\n")
	sb.WriteString("|------|--------|------|-------|---------|----------------|\n")
	for _, tier := range []model.Tier{model.Tier4, model.Tier3, model.Tier2, model.Tier1} {
		tc := rep.Score.ByTier[tier]
		sb.WriteString(fmt.Sprintf("| T%d | %s | %d | %d | %d | %d |\n",
			tier, tier.Label(), tc.Open, tc.Fixed, tc.Wontfix, tc.FalsePositive))
	}
	sb.WriteString("\n### By Detector\n\n")
	sb.WriteString("| Detector | Weighted | Strict | Open | Fixed |\n")
	sb.WriteString("|----------|----------|--------|------|-------|\n")
	for _, name := range sortedDetectors(rep.Score.ByDetector) {
		ds := rep.Score.ByDetector[name]
		sb.WriteString(fmt.Sprintf("| %s | %.1f | %.1f | %d | %d |\n",
			name, ds.Weighted, ds.Strict, ds.Open, ds.Fixed))
	}

	sb.WriteString(fmt.Sprintf("\n## Open Findings (%d)\n\n", rep.OpenCount))
	limit := g.cfg.MaxItems
	if limit <= 0 {
		limit = 25
	}
	for i, f := range rep.OpenFindings {
		if i >= limit {
			sb.WriteString(fmt.Sprintf("\n…and %d more.\n", rep.OpenCount-limit))
			break
		}
		sb.WriteString(fmt.Sprintf("### T%d `%s`\n\n", f.Tier, f.ID))
		sb.WriteString(fmt.Sprintf("- **File:** `%s:%d-%d`\n", f.File, f.StartLine, f.EndLine))
		if f.UnitName != "" {
			sb.WriteString(fmt.Sprintf("- **Unit:** %s\n", f.UnitName))
		}
		sb.WriteString(fmt.Sprintf("- **Detector:** %s\n", f.Detector))
		sb.WriteString(fmt.Sprintf("- **Issue:** %s\n", f.Message))
		if f.ReopenCount > 0 {
			sb.WriteString(fmt.Sprintf("- **Reopened:** %d times\n", f.ReopenCount))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// generateSARIF renders the open findings as a SARIF 2.1.0 document:
// one rule per detector, one result per open finding.
func (g *Generator) generateSARIF(rep *model.ScanReport) (string, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return "", fmt.Errorf("creating sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("debtwatch", informationURI)
	rules := make(map[string]bool)

	for _, f := range rep.OpenFindings {
		level := tierToSarifLevel(f.Tier)
		if !rules[f.Detector] {
			rules[f.Detector] = true
			run.AddRule(f.Detector).
				WithDescription(detectorDescription(f.Detector)).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: level,
				})
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.File)).
				WithRegion(sarif.NewRegion().WithStartLine(f.StartLine)),
		)

		result := sarif.NewRuleResult(f.Detector).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(level).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	doc.AddRun(run)

	var buf bytes.Buffer
	if err := doc.PrettyWrite(&buf); err != nil {
		return "", fmt.Errorf("encoding sarif report: %w", err)
	}
	return buf.String(), nil
}

func tierToSarifLevel(t model.Tier) string {
	switch t {
	case model.Tier4:
		return "error"
	case model.Tier3:
		return "warning"
	default:
		return "note"
	}
}

func detectorDescription(name string) string {
	switch name {
	case "dupes":
		return "Duplicated or near-duplicated code units"
	case "cycles":
		return "Circular dependencies between modules"
	case "coupling":
		return "Modules with excessive fan-in or fan-out"
	case "structure":
		return "Oversized units, classes, or files"
	case "orphans":
		return "Modules nothing depends on"
	case "naming":
		return "Unit names that carry no meaning"
	case "single_use":
		return "Abstractions with exactly one caller"
	case "passthrough":
		return "Wrappers that only forward their arguments"
	case "mixed_concerns":
		return "Files mixing too many unrelated concerns"
	default:
		return name
	}
}

func sortedDetectors(byDetector map[string]model.DimensionScore) []string {
	names := make([]string, 0, len(byDetector))
	for name := range byDetector {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
