package subm_test

import (
	"testing"
	"time"

	"github.com/qacker/backend/subm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestPerTask(t *testing.T) {
	t0 := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	subms := []subm.Submission{
		{ID: "a1", TaskID: "A", ScoreDelta: 5, SubmittedAt: t0},
		{ID: "b1", TaskID: "B", ScoreDelta: 1, SubmittedAt: t0.Add(time.Hour)},
		{ID: "a2", TaskID: "A", ScoreDelta: 3, SubmittedAt: t0.Add(2 * time.Hour)},
		{ID: "a0", TaskID: "A", ScoreDelta: -3, SubmittedAt: t0.Add(-time.Hour)},
	}

	latest := subm.LatestPerTask(subms)
	require.Len(t, latest, 2)
	assert.Equal(t, "a2", latest[0].ID)
	assert.Equal(t, "b1", latest[1].ID)
	assert.Equal(t, 4, subm.SumScoreDeltas(latest))
	assert.Equal(t, 6, subm.SumScoreDeltas(subms))
}

func TestLatestPerTaskTieKeepsFirst(t *testing.T) {
	t0 := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	latest := subm.LatestPerTask([]subm.Submission{
		{ID: "first", TaskID: "A", SubmittedAt: t0},
		{ID: "second", TaskID: "A", SubmittedAt: t0},
	})
	require.Len(t, latest, 1)
	assert.Equal(t, "first", latest[0].ID)
}

func TestGroupByUserSkipsAnonymousRows(t *testing.T) {
	groups := subm.GroupByUser([]subm.Submission{
		{ID: "1", UserID: "u1"},
		{ID: "2", UserID: ""},
		{ID: "3", UserID: "u1"},
		{ID: "4", UserID: "u2"},
	})
	assert.Len(t, groups, 2)
	assert.Len(t, groups["u1"], 2)
	assert.Len(t, groups["u2"], 1)
}
