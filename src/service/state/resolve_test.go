package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debtwatch/src/model"
)

func TestResolveWontfixRequiresNote(t *testing.T) {
	st := priorWith(existingFinding("dupes:aaaa000011112222", "dupes", model.StatusOpen))

	n, err := ApplyResolution(st, []string{"dupes:aaaa000011112222"}, model.StatusWontfix, "", testNow)
	assert.ErrorIs(t, err, ErrNoteRequired)
	assert.Zero(t, n)
	assert.Equal(t, model.StatusOpen, st.Findings["dupes:aaaa000011112222"].Status)
}

func TestResolveSetsStatusAndNote(t *testing.T) {
	st := priorWith(existingFinding("dupes:aaaa000011112222", "dupes", model.StatusOpen))

	n, err := ApplyResolution(st, []string{"dupes:aaaa000011112222"}, model.StatusWontfix, "vendored code", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f := st.Findings["dupes:aaaa000011112222"]
	assert.Equal(t, model.StatusWontfix, f.Status)
	assert.Equal(t, "vendored code", f.Note)
	assert.Equal(t, testNow, f.UpdatedAt)
}

func TestResolveFalsePositiveNoteOptional(t *testing.T) {
	st := priorWith(existingFinding("orphans:aaaa000011112222", "orphans", model.StatusOpen))

	n, err := ApplyResolution(st, []string{"orphans:aaaa000011112222"}, model.StatusFalsePositive, "", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.StatusFalsePositive, st.Findings["orphans:aaaa000011112222"].Status)
}

func TestResolveNoMatch(t *testing.T) {
	st := priorWith()

	_, err := ApplyResolution(st, nil, model.StatusFixed, "", testNow)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveUnknownIDLeavesStateUntouched(t *testing.T) {
	st := priorWith(existingFinding("dupes:aaaa000011112222", "dupes", model.StatusOpen))

	_, err := ApplyResolution(st,
		[]string{"dupes:aaaa000011112222", "dupes:doesnotexist0000"},
		model.StatusFixed, "", testNow)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, model.StatusOpen, st.Findings["dupes:aaaa000011112222"].Status)
}

func TestResolveManyAtOnce(t *testing.T) {
	st := priorWith(
		existingFinding("naming:aaaa000011112222", "naming", model.StatusOpen),
		existingFinding("naming:bbbb000011112222", "naming", model.StatusOpen),
	)

	n, err := ApplyResolution(st,
		[]string{"naming:aaaa000011112222", "naming:bbbb000011112222"},
		model.StatusFixed, "", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, f := range st.Findings {
		assert.Equal(t, model.StatusFixed, f.Status)
	}
}
