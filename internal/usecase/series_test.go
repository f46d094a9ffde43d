package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challenge_server/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func countRows(rows []domain.SeriesRow) map[string]int {
	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Category()]++
	}
	return counts
}

func TestBuildSeriesOrdersPointsAndAddsThresholds(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }
	rows := BuildSeries(SeriesInput{
		Points: []domain.SeriesPoint{
			{Date: day(3), Value: 10200},
			{Date: day(1), Value: 10000},
			{Date: day(2), Value: 10100},
		},
		MaxDrawdown:    floatPtr(9000),
		ProfitTarget:   floatPtr(10800),
		InitialBalance: 10000,
	})

	require.Len(t, rows, 7)
	assert.Equal(t, map[string]int{
		domain.SeriesBalance:      3,
		domain.SeriesMaxDrawdown:  2,
		domain.SeriesProfitTarget: 2,
	}, countRows(rows))

	assert.Equal(t, day(1), rows[0].Date)
	assert.Equal(t, 10000.0, *rows[0].Balance)
	assert.Equal(t, day(3), rows[2].Date)
	assert.Nil(t, rows[0].MaxDrawdown)
	assert.Nil(t, rows[0].ProfitTarget)

	assert.Equal(t, day(1), rows[3].Date)
	assert.Equal(t, day(3), rows[4].Date)
	assert.Equal(t, 9000.0, *rows[4].MaxDrawdown)
	assert.Equal(t, 10800.0, *rows[6].ProfitTarget)
	assert.False(t, rows[0].Synthetic)
}

func TestBuildSeriesSyntheticWalk(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	in := SeriesInput{InitialBalance: 5000, Now: now}

	rows := BuildSeries(in)
	require.Len(t, rows, 34)

	counts := countRows(rows)
	assert.Equal(t, 30, counts[domain.SeriesBalance])
	assert.Equal(t, 2, counts[domain.SeriesMaxDrawdown])
	assert.Equal(t, 2, counts[domain.SeriesProfitTarget])

	for _, row := range rows[:30] {
		assert.True(t, row.Synthetic)
	}
	assert.Equal(t, 5000.0, *rows[0].Balance)
	assert.Equal(t, 4500.0, *rows[30].MaxDrawdown)
	assert.Equal(t, 5400.0, *rows[32].ProfitTarget)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), rows[29].Date)

	again := BuildSeries(in)
	assert.Equal(t, rows, again, "same initial balance renders the same placeholder")
}

func TestBuildSeriesEmptyWithoutInitialBalance(t *testing.T) {
	assert.Empty(t, BuildSeries(SeriesInput{}))
}

func TestSeriesPointsFromRawAcceptsDateAliases(t *testing.T) {
	points := SeriesPointsFromRaw([]map[string]any{
		{"brokerTime": "2024-05-02 00:00:00", "balance": 10100.0},
		{"date": "2024-05-01", "equity": 10000.0},
		{"t": 1714608000000.0, "value": 10300.0},
		{"balance": 1.0},
	})

	require.Len(t, points, 3)
	assert.Equal(t, 10100.0, points[0].Value)
	assert.Equal(t, 10000.0, points[1].Value)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), points[2].Date)
}

func TestSeriesPointsFromSnapshotPrefersDailyGrowth(t *testing.T) {
	growth := domain.MetricsSnapshot{
		DailyGrowth: []domain.GrowthPoint{{Date: fixedNow, Balance: 10100}},
		EquityChart: []domain.EquityPoint{{Time: fixedNow, Balance: 1}, {Time: fixedNow, Balance: 2}},
	}
	points := SeriesPointsFromSnapshot(growth)
	require.Len(t, points, 1)
	assert.Equal(t, 10100.0, points[0].Value)

	chartOnly := domain.MetricsSnapshot{EquityChart: growth.EquityChart}
	assert.Len(t, SeriesPointsFromSnapshot(chartOnly), 2)
}
