package detector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

func unitWithLines(lines int) model.Unit {
	u := makeUnit("big.ts", "work", model.UnitFunction, 1, lines, "let x = 1")
	u.Metrics.Lines = lines
	return u
}

func TestStructureTieringIsMonotonic(t *testing.T) {
	cfg := config.DefaultConfig()
	d := NewStructureDetector(testBase(cfg), cfg.Detectors.Structure)

	cases := []struct {
		lines int
		tier  model.Tier
	}{
		{80, 0},  // at the limit, clean
		{159, 0}, // under the first band
		{160, model.Tier2},
		{240, model.Tier3},
		{320, model.Tier4},
		{800, model.Tier4},
	}

	prev := model.Tier(0)
	for _, tc := range cases {
		sm := modelWith([]model.Unit{unitWithLines(tc.lines)}, nil, nil)
		findings, err := d.Detect(context.Background(), sm)
		require.NoError(t, err)

		var got model.Tier
		if len(findings) > 0 {
			got = findings[0].Tier
		}
		assert.Equal(t, tc.tier, got, "lines=%d", tc.lines)
		assert.GreaterOrEqual(t, int(got), int(prev), "tier must not drop as lines grow")
		prev = got
	}
}

func TestStructureCompositeAddsDimensions(t *testing.T) {
	cfg := config.DefaultConfig()
	d := NewStructureDetector(testBase(cfg), cfg.Detectors.Structure)

	// each dimension alone is a mild overshoot; together they cross T3
	u := makeUnit("busy.ts", "work", model.UnitFunction, 1, 120, "let x = 1")
	u.Metrics = model.UnitMetrics{Lines: 120, Params: 8, Branches: 18, Nesting: 6}

	sm := modelWith([]model.Unit{u}, nil, nil)
	findings, err := d.Detect(context.Background(), sm)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, model.Tier3, f.Tier)
	assert.Contains(t, f.Message, "120/80 lines")
	assert.Contains(t, f.Message, "8/5 params")
	assert.Equal(t, []string{"busy.ts", "work", "unit"}, f.SignatureParts)
}

func TestStructureGodClass(t *testing.T) {
	cfg := config.DefaultConfig()
	d := NewStructureDetector(testBase(cfg), cfg.Detectors.Structure)

	u := makeUnit("model.ts", "Everything", model.UnitClass, 1, 300, "class Everything {}")
	u.Metrics = model.UnitMetrics{Lines: 300, Methods: 40, Fields: 30}

	sm := modelWith([]model.Unit{u}, nil, nil)
	findings, err := d.Detect(context.Background(), sm)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, model.Tier3, f.Tier)
	assert.Contains(t, f.Message, "God class Everything")
	assert.Contains(t, f.Message, "40/20 methods")
	assert.Equal(t, []string{"model.ts", "Everything", "class"}, f.SignatureParts)
}

func TestStructureOversizedFile(t *testing.T) {
	cfg := config.DefaultConfig()
	d := NewStructureDetector(testBase(cfg), cfg.Detectors.Structure)

	sm := modelWith(nil, nil, []model.FileInfo{
		{Path: "huge.ts", Node: "huge.ts", Lines: 1300, UnitCount: 30},
	})
	findings, err := d.Detect(context.Background(), sm)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, model.Tier2, f.Tier)
	assert.Contains(t, f.Message, "1300/600 lines")
	assert.Equal(t, []string{"huge.ts", "file"}, f.SignatureParts)
	assert.Empty(t, f.UnitName)
}

func TestStructureCleanUnitStaysQuiet(t *testing.T) {
	cfg := config.DefaultConfig()
	d := NewStructureDetector(testBase(cfg), cfg.Detectors.Structure)

	u := makeUnit("small.ts", "tidy", model.UnitFunction, 1, 12, "return 1")
	u.Metrics = model.UnitMetrics{Lines: 12, Params: 2, Branches: 3, Nesting: 1}

	sm := modelWith([]model.Unit{u}, nil, nil)
	findings, err := d.Detect(context.Background(), sm)
	require.NoError(t, err)
	assert.Empty(t, findings)
}
