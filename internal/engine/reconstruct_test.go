package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/pkg/models"
)

func snapshot(id string, d time.Time, values map[string]int) models.SnapshotRecord {
	return models.SnapshotRecord{ID: id, Date: d, ValuesByCategory: values}
}

func TestReconstructSeries_FillForward(t *testing.T) {
	t1 := date(2024, 1, 1)
	t2 := date(2024, 1, 10)
	t3 := date(2024, 1, 20)

	records := []models.SnapshotRecord{
		snapshot("r1", t1, map[string]int{"instagram": 100}),
		snapshot("r2", t2, map[string]int{"tiktok": 50}),
		snapshot("r3", t3, map[string]int{"instagram": 120}),
	}

	series := ReconstructSeries(records, IncludeAllExcept())
	require.Len(t, series, 3)

	// t3 carries tiktok's value from t2 unchanged and instagram's from t3
	assert.Equal(t, map[string]int{"instagram": 120, "tiktok": 50}, series[2].ValuesByCategory)
	assert.Equal(t, 170, series[2].Total)

	// t2 carries instagram forward from t1
	assert.Equal(t, map[string]int{"instagram": 100, "tiktok": 50}, series[1].ValuesByCategory)
	assert.Equal(t, 150, series[1].Total)

	assert.Equal(t, 100, series[0].Total)
}

func TestReconstructSeries_SortsUnorderedInput(t *testing.T) {
	records := []models.SnapshotRecord{
		snapshot("r2", date(2024, 3, 1), map[string]int{"instagram": 150, "tiktok": 20}),
		snapshot("r1", date(2024, 1, 1), map[string]int{"instagram": 100}),
	}

	series := ReconstructSeries(records, IncludeAllExcept())
	require.Len(t, series, 2)
	assert.True(t, series[0].Date.Before(series[1].Date))
	assert.Equal(t, 100, series[0].Total)
	assert.Equal(t, 170, series[1].Total)
}

func TestReconstructSeries_OnePointPerRecordDate(t *testing.T) {
	records := []models.SnapshotRecord{
		snapshot("r1", date(2024, 1, 1), map[string]int{"instagram": 100}),
		snapshot("r2", date(2024, 3, 1), map[string]int{"instagram": 150}),
	}

	series := ReconstructSeries(records, IncludeAllExcept())
	require.Len(t, series, 2, "no interpolated dates between samples")
}

func TestReconstructSeries_InclusionOnly(t *testing.T) {
	records := []models.SnapshotRecord{
		snapshot("r1", date(2024, 1, 1), map[string]int{"instagram": 100, "telegram": 500, "tiktok": 40}),
	}

	series := ReconstructSeries(records, IncludeOnly("instagram", "tiktok"))
	require.Len(t, series, 1)
	assert.Equal(t, 140, series[0].Total)
	// carried snapshot still records every known category
	assert.Equal(t, 500, series[0].ValuesByCategory["telegram"])
}

func TestReconstructSeries_DefaultInclusionExcludesMessaging(t *testing.T) {
	records := []models.SnapshotRecord{
		snapshot("r1", date(2024, 1, 1), map[string]int{"instagram": 100, "telegram": 500, "whatsapp": 300}),
	}

	series := ReconstructSeries(records, DefaultInclusion())
	require.Len(t, series, 1)
	assert.Equal(t, 100, series[0].Total)
}

func TestReconstructSeries_EmptyInput(t *testing.T) {
	assert.Nil(t, ReconstructSeries(nil, DefaultInclusion()))
}

func TestInclusionSet_ZeroValueIncludesEverything(t *testing.T) {
	var s InclusionSet
	assert.True(t, s.Includes("anything"))
}
