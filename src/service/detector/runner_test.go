package detector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

type fakeDetector struct {
	name    string
	enabled bool
	detect  func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error)
}

func (f *fakeDetector) Name() string    { return f.name }
func (f *fakeDetector) IsEnabled() bool { return f.enabled }
func (f *fakeDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	return f.detect(ctx, sm)
}

func fakeRunner(cfg *config.Config, dets ...Detector) *Runner {
	return &Runner{detectors: dets, cfg: cfg}
}

func oneFinding(det, file string) []model.RawFinding {
	return []model.RawFinding{{
		Detector:       det,
		File:           file,
		StartLine:      1,
		Tier:           model.Tier2,
		Message:        "something",
		SignatureParts: []string{file},
	}}
}

func TestRunAllIsolatesPanics(t *testing.T) {
	cfg := config.DefaultConfig()
	r := fakeRunner(cfg,
		&fakeDetector{name: "steady", enabled: true, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			return oneFinding("steady", "a.ts"), nil
		}},
		&fakeDetector{name: "bomb", enabled: true, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			panic("boom")
		}},
	)

	findings, runs, err := r.RunAll(context.Background(), modelWith(nil, nil, nil))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "steady", findings[0].Detector)

	require.Len(t, runs, 2)
	assert.Equal(t, "bomb", runs[0].Name)
	assert.Contains(t, runs[0].Error, "panic: boom")
	assert.Equal(t, 0, runs[0].Findings)
	assert.Equal(t, "steady", runs[1].Name)
	assert.Empty(t, runs[1].Error)
	assert.Equal(t, 1, runs[1].Findings)
}

func TestRunAllTimesOutSlowDetector(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Concurrency.DetectorTimeout = 20 * time.Millisecond

	r := fakeRunner(cfg,
		&fakeDetector{name: "slow", enabled: true, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
	)

	findings, runs, err := r.RunAll(context.Background(), modelWith(nil, nil, nil))
	require.NoError(t, err)
	assert.Empty(t, findings)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "timed out")
}

func TestRunAllSkipsDisabledDetectors(t *testing.T) {
	cfg := config.DefaultConfig()
	r := fakeRunner(cfg,
		&fakeDetector{name: "off", enabled: false, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			t.Error("disabled detector must not run")
			return nil, nil
		}},
		&fakeDetector{name: "on", enabled: true, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			return oneFinding("on", "a.ts"), nil
		}},
	)

	findings, runs, err := r.RunAll(context.Background(), modelWith(nil, nil, nil))
	require.NoError(t, err)
	assert.Len(t, findings, 1)
	require.Len(t, runs, 1)
	assert.Equal(t, "on", runs[0].Name)
}

func TestRunAllFailFastAborts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Detectors.FailFast = true

	r := fakeRunner(cfg,
		&fakeDetector{name: "broken", enabled: true, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			panic("boom")
		}},
	)

	_, _, err := r.RunAll(context.Background(), modelWith(nil, nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRunAllOrdersFindingsDeterministically(t *testing.T) {
	cfg := config.DefaultConfig()
	r := fakeRunner(cfg,
		&fakeDetector{name: "zeta", enabled: true, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			return oneFinding("zeta", "z.ts"), nil
		}},
		&fakeDetector{name: "alpha", enabled: true, detect: func(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
			return append(oneFinding("alpha", "b.ts"), oneFinding("alpha", "a.ts")...), nil
		}},
	)

	findings, runs, err := r.RunAll(context.Background(), modelWith(nil, nil, nil))
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, "a.ts", findings[0].File)
	assert.Equal(t, "b.ts", findings[1].File)
	assert.Equal(t, "zeta", findings[2].Detector)

	require.Len(t, runs, 2)
	assert.Equal(t, "alpha", runs[0].Name)
	assert.Equal(t, "zeta", runs[1].Name)
}

func TestNewRunnerRegistersAllDetectors(t *testing.T) {
	cfg := config.DefaultConfig()
	r := NewRunner(cfg)

	names := r.ListDetectors()
	assert.Equal(t, []string{
		"dupes", "cycles", "coupling", "structure", "orphans",
		"naming", "single_use", "passthrough", "mixed_concerns",
	}, names)

	for _, n := range names {
		require.NotNil(t, r.GetDetector(n), n)
		assert.True(t, r.GetDetector(n).IsEnabled(), n)
	}
}

func TestRunAllOnEmptyModel(t *testing.T) {
	cfg := config.DefaultConfig()
	r := NewRunner(cfg)

	findings, runs, err := r.RunAll(context.Background(), modelWith(nil, nil, nil))
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Len(t, runs, 9)
	for _, run := range runs {
		assert.Empty(t, run.Error, run.Name)
	}
}
