package weightstats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/trendweight/internal/weightstats"
)

// processedRecords merges and processes a steady-loss dataset: daily weights
// dropping 0.1 kg/day with full intake and expenditure logging.
func processedRecords(t *testing.T, start time.Time, days int, cfg weightstats.AnalysisConfig) []weightstats.DailyRecord {
	t.Helper()

	in := weightstats.RawInput{
		Weights:       make(map[string]float64),
		CalorieIntake: make(map[string]float64),
		Expenditure:   make(map[string]float64),
	}
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format("2006-01-02")
		in.Weights[key] = 85.0 - 0.1*float64(i)
		in.CalorieIntake[key] = 2000
		in.Expenditure[key] = 2770
	}

	records, dropped := weightstats.Merge(in)
	require.Zero(t, dropped)
	return weightstats.NewProcessor(cfg).Process(records)
}

func TestAnalyzer_DisplayStats_InvalidRange(t *testing.T) {
	analyzer := weightstats.NewAnalyzer(weightstats.AnalysisConfig{})

	start := day(2024, time.March, 10)
	_, err := analyzer.DisplayStats(context.Background(), nil, weightstats.QueryParams{
		From: start,
		To:   start.AddDate(0, 0, -5),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
}

func TestAnalyzer_DisplayStats_HistoryStats(t *testing.T) {
	start := day(2024, time.March, 1)
	cfg := weightstats.AnalysisConfig{SMAWindowDays: 3}
	records := processedRecords(t, start, 30, cfg)

	analyzer := weightstats.NewAnalyzer(cfg)
	stats, err := analyzer.DisplayStats(context.Background(), records, weightstats.QueryParams{
		From: start.AddDate(0, 0, 10),
		To:   start.AddDate(0, 0, 20),
	})
	require.NoError(t, err)

	// history spans the whole sequence, not just the queried range
	require.NotNil(t, stats.History.StartingWeight)
	assert.InDelta(t, 85.0, *stats.History.StartingWeight, 1e-9)
	require.NotNil(t, stats.History.StartingDate)
	assert.Equal(t, start, *stats.History.StartingDate)

	require.NotNil(t, stats.History.CurrentWeight)
	assert.InDelta(t, 85.0-0.1*29, *stats.History.CurrentWeight, 1e-9)

	require.NotNil(t, stats.History.MaxWeight)
	assert.InDelta(t, 85.0, *stats.History.MaxWeight, 1e-9)
	require.NotNil(t, stats.History.MinWeight)
	assert.InDelta(t, 85.0-0.1*29, *stats.History.MinWeight, 1e-9)
	require.NotNil(t, stats.History.MinDate)
	assert.Equal(t, start.AddDate(0, 0, 29), *stats.History.MinDate)
}

func TestAnalyzer_DisplayStats_RangeStats(t *testing.T) {
	start := day(2024, time.March, 1)
	cfg := weightstats.AnalysisConfig{SMAWindowDays: 3}
	records := processedRecords(t, start, 30, cfg)

	analyzer := weightstats.NewAnalyzer(cfg)
	stats, err := analyzer.DisplayStats(context.Background(), records, weightstats.QueryParams{
		From: start,
		To:   start.AddDate(0, 0, 29),
	})
	require.NoError(t, err)

	require.NotNil(t, stats.Range.AvgIntake)
	assert.InDelta(t, 2000.0, *stats.Range.AvgIntake, 1e-9)
	require.NotNil(t, stats.Range.AvgExpenditure)
	assert.InDelta(t, 2770.0, *stats.Range.AvgExpenditure, 1e-9)
	require.NotNil(t, stats.Range.AvgNetBalance)
	assert.InDelta(t, -770.0, *stats.Range.AvgNetBalance, 1e-9)

	logging := stats.Range.Logging
	assert.Equal(t, 30, logging.TotalDays)
	assert.Equal(t, 30, logging.WeightDays)
	assert.InDelta(t, 100.0, logging.WeightPct, 1e-9)
	assert.Equal(t, 30, logging.IntakeDays)
	assert.Equal(t, 30, logging.ExpenditureDays)
	assert.Zero(t, logging.TrainingDays)

	// steady loss: the rate spread comes from the warmup days only
	require.NotNil(t, stats.Range.RateConsistency)
	assert.Less(t, *stats.Range.RateConsistency, 0.2)
}

func TestAnalyzer_DisplayStats_Weekly(t *testing.T) {
	// a Monday, so weeks align cleanly
	start := day(2024, time.March, 4)
	cfg := weightstats.AnalysisConfig{SMAWindowDays: 3, WeeklyMinValidDays: 3}
	records := processedRecords(t, start, 21, cfg)

	analyzer := weightstats.NewAnalyzer(cfg)
	stats, err := analyzer.DisplayStats(context.Background(), records, weightstats.QueryParams{
		From: start,
		To:   start.AddDate(0, 0, 20),
	})
	require.NoError(t, err)

	require.Len(t, stats.Weekly, 3)
	assert.Equal(t, start, stats.Weekly[0].WeekStart)
	assert.Equal(t, start.AddDate(0, 0, 7), stats.Weekly[1].WeekStart)
	assert.Equal(t, start.AddDate(0, 0, 14), stats.Weekly[2].WeekStart)

	// first week average of 85.0, 84.9 ... 84.4
	require.NotNil(t, stats.Weekly[0].AvgWeight)
	assert.InDelta(t, 84.7, *stats.Weekly[0].AvgWeight, 1e-9)
	require.NotNil(t, stats.Weekly[0].AvgIntake)
	assert.InDelta(t, 2000.0, *stats.Weekly[0].AvgIntake, 1e-9)
	require.NotNil(t, stats.Weekly[0].AvgNetBalance)
	assert.InDelta(t, -770.0, *stats.Weekly[0].AvgNetBalance, 1e-9)
	// weekly expenditure averages the logged field, not a derived estimate
	require.NotNil(t, stats.Weekly[0].AvgExpenditure)
	assert.InDelta(t, 2770.0, *stats.Weekly[0].AvgExpenditure, 1e-9)
}

func TestAnalyzer_DisplayStats_WeeklyMinValidDays(t *testing.T) {
	start := day(2024, time.March, 4) // Monday
	cfg := weightstats.AnalysisConfig{WeeklyMinValidDays: 3}

	// only two days of the week carry a weight
	in := weightstats.RawInput{
		Weights: map[string]float64{
			start.Format("2006-01-02"):                 80.0,
			start.AddDate(0, 0, 1).Format("2006-01-02"): 80.2,
		},
		CalorieIntake: map[string]float64{
			start.Format("2006-01-02"):                 2000,
			start.AddDate(0, 0, 1).Format("2006-01-02"): 2100,
			start.AddDate(0, 0, 2).Format("2006-01-02"): 2200,
		},
	}
	records, _ := weightstats.Merge(in)
	processed := weightstats.NewProcessor(cfg).Process(records)

	analyzer := weightstats.NewAnalyzer(cfg)
	stats, err := analyzer.DisplayStats(context.Background(), processed, weightstats.QueryParams{
		From: start,
		To:   start.AddDate(0, 0, 6),
	})
	require.NoError(t, err)

	require.Len(t, stats.Weekly, 1)
	assert.Nil(t, stats.Weekly[0].AvgWeight) // 2 valid days < 3
	require.NotNil(t, stats.Weekly[0].AvgIntake)
	assert.InDelta(t, 2100.0, *stats.Weekly[0].AvgIntake, 1e-9)
}

func TestAnalyzer_DisplayStats_RegressionAndTrendLine(t *testing.T) {
	start := day(2024, time.March, 1)
	cfg := weightstats.AnalysisConfig{SMAWindowDays: 3}
	records := processedRecords(t, start, 30, cfg)

	analyzer := weightstats.NewAnalyzer(cfg)

	t.Run("defaults to the analysis range", func(t *testing.T) {
		from, to := start, start.AddDate(0, 0, 29)
		stats, err := analyzer.DisplayStats(context.Background(), records, weightstats.QueryParams{
			From: from,
			To:   to,
		})
		require.NoError(t, err)

		require.NotNil(t, stats.Regression)
		assert.InDelta(t, -0.1, stats.Regression.Slope, 1e-9)
		assert.Equal(t, 30, stats.Regression.N)

		require.Len(t, stats.TrendLine, 2)
		assert.Equal(t, from, stats.TrendLine[0].Date)
		assert.Equal(t, to, stats.TrendLine[1].Date)
		assert.InDelta(t, 85.0, stats.TrendLine[0].Value, 1e-9)
		assert.InDelta(t, 85.0-0.1*29, stats.TrendLine[1].Value, 1e-9)
	})

	t.Run("independent regression sub-range", func(t *testing.T) {
		regFrom := start.AddDate(0, 0, 10)
		regTo := start.AddDate(0, 0, 19)
		stats, err := analyzer.DisplayStats(context.Background(), records, weightstats.QueryParams{
			From:           start,
			To:             start.AddDate(0, 0, 29),
			RegressionFrom: &regFrom,
			RegressionTo:   &regTo,
		})
		require.NoError(t, err)

		require.NotNil(t, stats.Regression)
		assert.Equal(t, 10, stats.Regression.N)
		assert.Equal(t, regFrom, stats.Regression.FirstDate)

		// the trend line still spans the full analysis range
		require.Len(t, stats.TrendLine, 2)
		assert.Equal(t, start, stats.TrendLine[0].Date)
	})

	t.Run("no regression on sparse data", func(t *testing.T) {
		stats, err := analyzer.DisplayStats(context.Background(), records[:3], weightstats.QueryParams{
			From: start,
			To:   start.AddDate(0, 0, 2),
		})
		require.NoError(t, err)
		assert.Nil(t, stats.Regression)
		assert.Empty(t, stats.TrendLine)
	})
}

func TestAnalyzer_DisplayStats_Goal(t *testing.T) {
	start := day(2024, time.March, 1)
	cfg := weightstats.AnalysisConfig{SMAWindowDays: 3}
	records := processedRecords(t, start, 30, cfg) // losing 0.7 kg/week, currently ~82.1

	analyzer := weightstats.NewAnalyzer(cfg)
	params := weightstats.QueryParams{
		From: start,
		To:   start.AddDate(0, 0, 29),
	}

	t.Run("no goal requested", func(t *testing.T) {
		stats, err := analyzer.DisplayStats(context.Background(), records, params)
		require.NoError(t, err)
		assert.Nil(t, stats.Goal)
	})

	t.Run("goal on the losing side", func(t *testing.T) {
		p := params
		p.GoalWeight = fptr(80.0)
		stats, err := analyzer.DisplayStats(context.Background(), records, p)
		require.NoError(t, err)
		require.NotNil(t, stats.Goal)

		goal := stats.Goal
		assert.Equal(t, 80.0, goal.TargetWeight)
		require.NotNil(t, goal.Distance)
		assert.Negative(t, *goal.Distance)
		require.NotNil(t, goal.WeeklyRate)
		assert.InDelta(t, -0.7, *goal.WeeklyRate, 0.01)

		require.NotNil(t, goal.ETA)
		assert.True(t, goal.ETA.After(start.AddDate(0, 0, 29)))
		assert.NotEmpty(t, goal.ETADescription)
		assert.NotEqual(t, "flat", goal.ETADescription)
	})

	t.Run("goal in the opposite direction", func(t *testing.T) {
		p := params
		p.GoalWeight = fptr(90.0) // gaining goal while losing
		stats, err := analyzer.DisplayStats(context.Background(), records, p)
		require.NoError(t, err)
		require.NotNil(t, stats.Goal)

		assert.Nil(t, stats.Goal.ETA)
		assert.Equal(t, "trending away", stats.Goal.ETADescription)
	})

	t.Run("goal date produces a required rate", func(t *testing.T) {
		p := params
		p.GoalWeight = fptr(80.0)
		goalDate := start.AddDate(0, 0, 29+70) // 10 weeks out
		p.GoalDate = &goalDate

		stats, err := analyzer.DisplayStats(context.Background(), records, p)
		require.NoError(t, err)
		require.NotNil(t, stats.Goal)

		goal := stats.Goal
		require.NotNil(t, goal.RequiredWeeklyRate)
		require.NotNil(t, goal.Distance)
		assert.InDelta(t, *goal.Distance/10, *goal.RequiredWeeklyRate, 1e-9)
		require.NotNil(t, goal.CalorieAdjustment)
	})

	t.Run("already achieved within tolerance", func(t *testing.T) {
		p := params
		p.GoalWeight = fptr(84.0) // crossed on the way down
		stats, err := analyzer.DisplayStats(context.Background(), records, p)
		require.NoError(t, err)
		require.NotNil(t, stats.Goal)
		assert.NotNil(t, stats.Goal.AchievedDate)
	})
}

func TestAnalyzer_DisplayStats_GoalFlatTrend(t *testing.T) {
	start := day(2024, time.March, 1)
	cfg := weightstats.AnalysisConfig{SMAWindowDays: 3}

	in := weightstats.RawInput{Weights: make(map[string]float64)}
	for i := 0; i < 30; i++ {
		in.Weights[start.AddDate(0, 0, i).Format("2006-01-02")] = 80.0
	}
	records, _ := weightstats.Merge(in)
	processed := weightstats.NewProcessor(cfg).Process(records)

	analyzer := weightstats.NewAnalyzer(cfg)
	stats, err := analyzer.DisplayStats(context.Background(), processed, weightstats.QueryParams{
		From:       start,
		To:         start.AddDate(0, 0, 29),
		GoalWeight: fptr(75.0),
	})
	require.NoError(t, err)
	require.NotNil(t, stats.Goal)

	assert.Nil(t, stats.Goal.ETA)
	assert.Equal(t, "flat", stats.Goal.ETADescription)
}

func TestAnalyzer_DisplayStats_Plateau(t *testing.T) {
	start := day(2024, time.March, 1)
	cfg := weightstats.AnalysisConfig{SMAWindowDays: 3, PlateauDays: 21}

	t.Run("flat weight is a plateau", func(t *testing.T) {
		in := weightstats.RawInput{Weights: make(map[string]float64)}
		for i := 0; i < 40; i++ {
			in.Weights[start.AddDate(0, 0, i).Format("2006-01-02")] = 80.0
		}
		records, _ := weightstats.Merge(in)
		processed := weightstats.NewProcessor(cfg).Process(records)

		stats, err := weightstats.NewAnalyzer(cfg).DisplayStats(context.Background(), processed, weightstats.QueryParams{
			From: start,
			To:   start.AddDate(0, 0, 39),
		})
		require.NoError(t, err)
		assert.True(t, stats.Plateau)
	})

	t.Run("steady loss is not", func(t *testing.T) {
		records := processedRecords(t, start, 40, cfg)
		stats, err := weightstats.NewAnalyzer(cfg).DisplayStats(context.Background(), records, weightstats.QueryParams{
			From: start,
			To:   start.AddDate(0, 0, 39),
		})
		require.NoError(t, err)
		assert.False(t, stats.Plateau)
	})

	t.Run("too short to call", func(t *testing.T) {
		in := weightstats.RawInput{Weights: make(map[string]float64)}
		for i := 0; i < 10; i++ {
			in.Weights[start.AddDate(0, 0, i).Format("2006-01-02")] = 80.0
		}
		records, _ := weightstats.Merge(in)
		processed := weightstats.NewProcessor(cfg).Process(records)

		stats, err := weightstats.NewAnalyzer(cfg).DisplayStats(context.Background(), processed, weightstats.QueryParams{
			From: start,
			To:   start.AddDate(0, 0, 9),
		})
		require.NoError(t, err)
		assert.False(t, stats.Plateau)
	})
}
