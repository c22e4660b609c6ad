package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debtwatch/src/model"
)

func queryState() *model.ScanState {
	st := model.NewScanState("typescript", "/tmp/proj")
	st.ScanCount = 3
	add := func(id, detector, file string, tier model.Tier, status model.Status, firstSeen int) {
		st.Findings[id] = &model.Finding{
			ID:            id,
			Detector:      detector,
			Tier:          tier,
			File:          file,
			Status:        status,
			FirstSeenScan: firstSeen,
			LastSeenScan:  3,
		}
	}
	add("dupes:aabbccdd00112233", "dupes", "src/api/order.ts", model.Tier3, model.StatusOpen, 1)
	add("dupes:ffee000011112222", "dupes", "src/api/cart.ts", model.Tier2, model.StatusFixed, 1)
	add("naming:1234567890abcdef", "naming", "src/util/helper.ts", model.Tier1, model.StatusOpen, 2)
	add("cycles:eeff556677889900", "cycles", "src/api", model.Tier4, model.StatusOpen, 3)
	add("orphans:9988776655443322", "orphans", "scripts/old.ts", model.Tier2, model.StatusWontfix, 1)
	return st
}

func ids(findings []*model.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.ID
	}
	return out
}

func TestMatchExactID(t *testing.T) {
	got := NewService().Match(queryState(), "dupes:aabbccdd00112233", Filter{})
	require.Len(t, got, 1)
	assert.Equal(t, "dupes:aabbccdd00112233", got[0].ID)
}

func TestMatchIDPrefix(t *testing.T) {
	got := NewService().Match(queryState(), "dupes:aabb", Filter{})
	require.Len(t, got, 1)
	assert.Equal(t, "dupes:aabbccdd00112233", got[0].ID)
}

func TestMatchIDPrefixTooShortFallsThrough(t *testing.T) {
	// fewer than 4 signature chars is not treated as an ID prefix
	got := NewService().Match(queryState(), "dupes:aab", Filter{})
	assert.Empty(t, got)
}

func TestMatchDetectorName(t *testing.T) {
	got := NewService().Match(queryState(), "dupes", Filter{})
	assert.Len(t, got, 2)
	for _, f := range got {
		assert.Equal(t, "dupes", f.Detector)
	}
}

func TestMatchExactFile(t *testing.T) {
	got := NewService().Match(queryState(), "src/api/order.ts", Filter{})
	require.Len(t, got, 1)
	assert.Equal(t, "dupes:aabbccdd00112233", got[0].ID)
}

func TestMatchDirectoryPrefix(t *testing.T) {
	withSlash := NewService().Match(queryState(), "src/api/", Filter{})
	assert.Len(t, withSlash, 2)

	// bare prefix sweeps up everything under src/, the cycle node included
	bare := NewService().Match(queryState(), "src", Filter{})
	assert.Len(t, bare, 4)
}

func TestMatchExactFileWinsOverPrefix(t *testing.T) {
	// "src/api" is a finding's file (a cycle node) and a directory;
	// the exact form wins
	got := NewService().Match(queryState(), "src/api", Filter{})
	require.Len(t, got, 1)
	assert.Equal(t, "cycles:eeff556677889900", got[0].ID)
}

func TestMatchGlobPattern(t *testing.T) {
	got := NewService().Match(queryState(), "**/*.ts", Filter{})
	assert.Len(t, got, 4)

	scoped := NewService().Match(queryState(), "scripts/*.ts", Filter{})
	require.Len(t, scoped, 1)
	assert.Equal(t, "orphans:9988776655443322", scoped[0].ID)
}

func TestMatchAppliesFilters(t *testing.T) {
	open := NewService().Match(queryState(), "dupes", Filter{Status: model.StatusOpen})
	require.Len(t, open, 1)
	assert.Equal(t, model.StatusOpen, open[0].Status)

	tier2 := NewService().Match(queryState(), "dupes", Filter{Tier: model.Tier2})
	require.Len(t, tier2, 1)
	assert.Equal(t, model.Tier2, tier2[0].Tier)
}

func TestMatchEmptyPatternReturnsEverything(t *testing.T) {
	got := NewService().Match(queryState(), "", Filter{})
	assert.Len(t, got, 5)
}

func TestMatchUnknownPatternIsEmpty(t *testing.T) {
	assert.Empty(t, NewService().Match(queryState(), "nonexistent", Filter{}))
}

func TestOrderTierDescendingThenOldest(t *testing.T) {
	got := NewService().Match(queryState(), "", Filter{})
	require.Len(t, got, 5)

	assert.Equal(t, []string{
		"cycles:eeff556677889900",  // T4
		"dupes:aabbccdd00112233",   // T3
		"dupes:ffee000011112222",   // T2, first seen scan 1
		"orphans:9988776655443322", // T2, first seen scan 1, later ID
		"naming:1234567890abcdef",  // T1
	}, ids(got))
}

func TestNextReturnsOpenInWorkingOrder(t *testing.T) {
	got := NewService().Next(queryState(), 2, 0)
	assert.Equal(t, []string{
		"cycles:eeff556677889900",
		"dupes:aabbccdd00112233",
	}, ids(got))
}

func TestNextFiltersByTier(t *testing.T) {
	got := NewService().Next(queryState(), 5, model.Tier1)
	require.Len(t, got, 1)
	assert.Equal(t, "naming:1234567890abcdef", got[0].ID)
}

func TestNextSkipsNonOpen(t *testing.T) {
	got := NewService().Next(queryState(), 10, 0)
	for _, f := range got {
		assert.Equal(t, model.StatusOpen, f.Status)
	}
	assert.Len(t, got, 3)
}
