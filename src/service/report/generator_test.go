package report

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

func sampleReport() *model.ScanReport {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	open := []*model.Finding{
		{
			ID: "cycles:aabbccdd00112233", Detector: "cycles", Tier: model.Tier4,
			File: "src/api", StartLine: 1, Message: "Dependency cycle across 2 modules: src/api, src/db",
			Status: model.StatusOpen, FirstSeenScan: 1, LastSeenScan: 2,
		},
		{
			ID: "dupes:ffee000011112222", Detector: "dupes", Tier: model.Tier3,
			File: "src/api/cart.ts", StartLine: 40, EndLine: 80, UnitName: "recalc",
			Message: "Near-duplicate of src/api/order.ts:total (similarity 0.91)",
			Status:  model.StatusOpen, FirstSeenScan: 2, LastSeenScan: 2,
		},
		{
			ID: "naming:1234567890abcdef", Detector: "naming", Tier: model.Tier1,
			File: "src/util/helper.ts", StartLine: 3, UnitName: "helper",
			Message: `Generic name "helper" says nothing about purpose`,
			Status:  model.StatusOpen, FirstSeenScan: 1, LastSeenScan: 2,
		},
	}
	return &model.ScanReport{
		RunID:      "3f1c9a2e-0000-0000-0000-000000000000",
		Language:   "typescript",
		Root:       "/tmp/proj",
		Scan:       2,
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
		Files:      12,
		Units:      80,
		Edges:      31,
		Score: model.Scorecard{
			Weighted: 40.0,
			Strict:   40.0,
			ByDetector: map[string]model.DimensionScore{
				"cycles": {Weighted: 0, Strict: 0, Open: 1},
				"dupes":  {Weighted: 50, Strict: 50, Open: 1, Fixed: 1},
				"naming": {Weighted: 0, Strict: 0, Open: 1},
			},
			ByTier: map[model.Tier]model.TierCounts{
				model.Tier4: {Open: 1},
				model.Tier3: {Open: 1, Fixed: 1},
				model.Tier1: {Open: 1},
			},
		},
		OpenCount:    3,
		OpenFindings: open,
	}
}

func newGenerator() *Generator {
	return NewGenerator(config.DefaultConfig().Output)
}

func TestGenerateJSONRoundTrips(t *testing.T) {
	out, err := newGenerator().Generate(sampleReport(), "json")
	require.NoError(t, err)

	var got model.ScanReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Scan)
	assert.Equal(t, "typescript", got.Language)
	assert.Len(t, got.OpenFindings, 3)
	assert.Equal(t, 40.0, got.Score.Weighted)
}

func TestGenerateMarkdownSummarizes(t *testing.T) {
	out, err := newGenerator().Generate(sampleReport(), "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "**Weighted:** 40.0/100")
	assert.Contains(t, out, "**Strict:** 40.0/100")
	assert.Contains(t, out, "## Open Findings (3)")
	assert.Contains(t, out, "cycles:aabbccdd00112233")
	assert.Contains(t, out, "`src/api/cart.ts:40-80`")
	assert.Contains(t, out, "major refactor")
}

func TestGenerateMarkdownCapsItems(t *testing.T) {
	cfg := config.DefaultConfig().Output
	cfg.MaxItems = 1
	g := NewGenerator(cfg)

	out, err := g.Generate(sampleReport(), "md")
	require.NoError(t, err)
	assert.Contains(t, out, "and 2 more")
	assert.NotContains(t, out, "naming:1234567890abcdef")
}

func TestGenerateSARIF(t *testing.T) {
	out, err := newGenerator().Generate(sampleReport(), "sarif")
	require.NoError(t, err)

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID  string `json:"ruleId"`
				Level   string `json:"level"`
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "debtwatch", run.Tool.Driver.Name)
	assert.Len(t, run.Tool.Driver.Rules, 3, "one rule per detector")
	require.Len(t, run.Results, 3, "one result per open finding")

	levels := make(map[string]string)
	for _, r := range run.Results {
		levels[r.RuleID] = r.Level
	}
	assert.Equal(t, "error", levels["cycles"])
	assert.Equal(t, "warning", levels["dupes"])
	assert.Equal(t, "note", levels["naming"])

	assert.Equal(t, "src/api", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 1, run.Results[0].Locations[0].PhysicalLocation.Region.StartLine)
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	_, err := newGenerator().Generate(sampleReport(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestWriteNamesFileByLanguage(t *testing.T) {
	dir := t.TempDir()
	g := newGenerator()

	path, err := g.Write(sampleReport(), "sarif", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "debt-typescript.sarif"), path)
	assert.FileExists(t, path)

	path, err = g.Write(sampleReport(), "markdown", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "debt-typescript.md"), path)
}
