package weightstats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/2beens/trendweight/internal/telemetry/tracing"
)

// QueryParams scope a display-stats query: the analysis date range, an
// independently selectable regression sub-range, and optional goal figures.
type QueryParams struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	RegressionFrom *time.Time `json:"regressionFrom,omitempty"`
	RegressionTo   *time.Time `json:"regressionTo,omitempty"`

	GoalWeight *float64   `json:"goalWeight,omitempty"`
	GoalDate   *time.Time `json:"goalDate,omitempty"`
}

// HistoryStats are whole-history weight figures, independent of the
// analysis range.
type HistoryStats struct {
	StartingWeight *float64   `json:"startingWeight,omitempty"`
	StartingDate   *time.Time `json:"startingDate,omitempty"`
	CurrentWeight  *float64   `json:"currentWeight,omitempty"`
	CurrentDate    *time.Time `json:"currentDate,omitempty"`
	MinWeight      *float64   `json:"minWeight,omitempty"`
	MinDate        *time.Time `json:"minDate,omitempty"`
	MaxWeight      *float64   `json:"maxWeight,omitempty"`
	MaxDate        *time.Time `json:"maxDate,omitempty"`
}

// LoggingConsistency counts how many days in the analysis range have a given
// metric logged. Training coverage is measured against non-rest days only.
type LoggingConsistency struct {
	TotalDays       int     `json:"totalDays"`
	WeightDays      int     `json:"weightDays"`
	WeightPct       float64 `json:"weightPct"`
	IntakeDays      int     `json:"intakeDays"`
	IntakePct       float64 `json:"intakePct"`
	ExpenditureDays int     `json:"expenditureDays"`
	ExpenditurePct  float64 `json:"expenditurePct"`
	TrainingDays    int     `json:"trainingDays"`
	TrainingPct     float64 `json:"trainingPct"`
}

type RangeStats struct {
	AvgIntake      *float64 `json:"avgIntake,omitempty"`
	AvgExpenditure *float64 `json:"avgExpenditure,omitempty"`
	AvgNetBalance  *float64 `json:"avgNetBalance,omitempty"`

	// RateConsistency is the std dev of the smoothed weekly rates in range:
	// lower means a steadier trend.
	RateConsistency *float64 `json:"rateConsistency,omitempty"`

	Logging LoggingConsistency `json:"logging"`
}

// WeeklyAggregate is one ISO-week keyed summary over the analysis range.
// Each metric needs at least the configured minimum of valid days in the
// week, otherwise it stays nil.
type WeeklyAggregate struct {
	WeekStart      time.Time `json:"weekStart"`
	AvgNetBalance  *float64  `json:"avgNetBalance,omitempty"`
	AvgRate        *float64  `json:"avgRate,omitempty"`
	AvgWeight      *float64  `json:"avgWeight,omitempty"`
	AvgExpenditure *float64  `json:"avgExpenditure,omitempty"`
	AvgIntake      *float64  `json:"avgIntake,omitempty"`
}

type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// GoalStats are goal-related figures for the current trend.
type GoalStats struct {
	TargetWeight float64  `json:"targetWeight"`
	Distance     *float64 `json:"distance,omitempty"` // target - current, kg
	WeeklyRate   *float64 `json:"weeklyRate,omitempty"`

	ETA            *time.Time `json:"eta,omitempty"`
	ETADescription string     `json:"etaDescription"`

	// set only when a goal date is given
	RequiredWeeklyRate *float64 `json:"requiredWeeklyRate,omitempty"`
	CalorieAdjustment  *float64 `json:"calorieAdjustment,omitempty"` // kcal per day

	AchievedDate *time.Time `json:"achievedDate,omitempty"`
}

// DisplayStats is the consolidated bundle external collaborators read.
// All fields are plain nullable values, no behavior.
type DisplayStats struct {
	History      HistoryStats       `json:"history"`
	Range        RangeStats         `json:"range"`
	Weekly       []WeeklyAggregate  `json:"weekly"`
	Phases       []Phase            `json:"phases"`
	Correlations *CorrelationMatrix `json:"correlations"`
	Regression   *RegressionResult  `json:"regression,omitempty"`
	TrendLine    []TrendPoint       `json:"trendLine,omitempty"`
	Goal         *GoalStats         `json:"goal,omitempty"`
	Plateau      bool               `json:"plateau"`
}

// Analyzer orchestrates the range-scoped queries over a processed record
// sequence. It is stateless besides its config.
type Analyzer struct {
	cfg AnalysisConfig
}

func NewAnalyzer(cfg AnalysisConfig) *Analyzer {
	return &Analyzer{
		cfg: cfg.WithDefaults(),
	}
}

// DisplayStats builds the full display-stats bundle for the given analysis
// and regression ranges. The record sequence must already be processed.
func (a *Analyzer) DisplayStats(
	ctx context.Context,
	records []DailyRecord,
	params QueryParams,
) (*DisplayStats, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.weightstats.displayStats")
	defer span.End()

	if params.To.Before(params.From) {
		return nil, fmt.Errorf("invalid range: %s is after %s", params.From, params.To)
	}

	subset := rangeSubset(records, params.From, params.To)

	regFrom, regTo := params.From, params.To
	if params.RegressionFrom != nil {
		regFrom = *params.RegressionFrom
	}
	if params.RegressionTo != nil {
		regTo = *params.RegressionTo
	}

	stats := &DisplayStats{
		History:      historyStats(records),
		Range:        a.rangeStats(subset),
		Weekly:       a.weeklyAggregates(subset),
		Phases:       DetectPhases(records, a.cfg),
		Correlations: Correlate(records, a.cfg),
		Regression:   FitTrend(records, regFrom, regTo, a.cfg),
		Plateau:      a.isPlateau(subset),
	}

	if stats.Regression != nil {
		stats.TrendLine = []TrendPoint{
			{Date: params.From, Value: stats.Regression.ValueAt(params.From)},
			{Date: params.To, Value: stats.Regression.ValueAt(params.To)},
		}
	}

	if params.GoalWeight != nil {
		stats.Goal = a.goalStats(subset, *params.GoalWeight, params.GoalDate)
	}

	return stats, nil
}

func rangeSubset(records []DailyRecord, from, to time.Time) []DailyRecord {
	var subset []DailyRecord
	for i := range records {
		if records[i].Date.Before(from) || records[i].Date.After(to) {
			continue
		}
		subset = append(subset, records[i])
	}
	return subset
}

func historyStats(records []DailyRecord) HistoryStats {
	var hs HistoryStats
	for i := range records {
		r := &records[i]
		if r.Weight == nil {
			continue
		}
		w, d := *r.Weight, r.Date
		if hs.StartingWeight == nil {
			hs.StartingWeight = floatPtr(w)
			hs.StartingDate = datePtr(d)
		}
		hs.CurrentWeight = floatPtr(w)
		hs.CurrentDate = datePtr(d)
		if hs.MinWeight == nil || w < *hs.MinWeight {
			hs.MinWeight = floatPtr(w)
			hs.MinDate = datePtr(d)
		}
		if hs.MaxWeight == nil || w > *hs.MaxWeight {
			hs.MaxWeight = floatPtr(w)
			hs.MaxDate = datePtr(d)
		}
	}
	return hs
}

func (a *Analyzer) rangeStats(subset []DailyRecord) RangeStats {
	var rs RangeStats

	var intakes, expenditures, balances, rates []float64
	for i := range subset {
		r := &subset[i]
		if r.Intake != nil {
			intakes = append(intakes, *r.Intake)
			rs.Logging.IntakeDays++
		}
		if r.Expenditure != nil {
			expenditures = append(expenditures, *r.Expenditure)
			rs.Logging.ExpenditureDays++
		}
		if r.NetBalance != nil {
			balances = append(balances, *r.NetBalance)
		}
		if r.SmoothedRate != nil {
			rates = append(rates, *r.SmoothedRate)
		}
		if r.Weight != nil {
			rs.Logging.WeightDays++
		}
		if r.WorkoutCount != nil && *r.WorkoutCount > 0 {
			rs.Logging.TrainingDays++
		}
	}

	rs.Logging.TotalDays = len(subset)
	nonRestDays := 0
	for i := range subset {
		if subset[i].RestDay == nil || !*subset[i].RestDay {
			nonRestDays++
		}
	}
	if len(subset) > 0 {
		rs.Logging.WeightPct = pct(rs.Logging.WeightDays, len(subset))
		rs.Logging.IntakePct = pct(rs.Logging.IntakeDays, len(subset))
		rs.Logging.ExpenditurePct = pct(rs.Logging.ExpenditureDays, len(subset))
	}
	if nonRestDays > 0 {
		rs.Logging.TrainingPct = pct(rs.Logging.TrainingDays, nonRestDays)
	}

	if len(intakes) > 0 {
		rs.AvgIntake = floatPtr(mean(intakes))
	}
	if len(expenditures) > 0 {
		rs.AvgExpenditure = floatPtr(mean(expenditures))
	}
	if len(balances) > 0 {
		rs.AvgNetBalance = floatPtr(mean(balances))
	}
	if len(rates) >= 2 {
		rs.RateConsistency = floatPtr(sampleStdDev(rates))
	}

	return rs
}

func pct(count, total int) float64 {
	return float64(count) / float64(total) * 100
}

func (a *Analyzer) weeklyAggregates(subset []DailyRecord) []WeeklyAggregate {
	byWeek := make(map[time.Time][]*DailyRecord)
	var weekStarts []time.Time
	for i := range subset {
		ws := weekStart(subset[i].Date)
		if _, ok := byWeek[ws]; !ok {
			weekStarts = append(weekStarts, ws)
		}
		byWeek[ws] = append(byWeek[ws], &subset[i])
	}

	weekly := make([]WeeklyAggregate, 0, len(weekStarts))
	for _, ws := range weekStarts {
		week := byWeek[ws]
		agg := WeeklyAggregate{WeekStart: ws}

		agg.AvgNetBalance = weeklyMetric(week, a.cfg.WeeklyMinValidDays, func(r *DailyRecord) *float64 { return r.NetBalance })
		agg.AvgRate = weeklyMetric(week, a.cfg.WeeklyMinValidDays, func(r *DailyRecord) *float64 { return r.SmoothedRate })
		agg.AvgWeight = weeklyMetric(week, a.cfg.WeeklyMinValidDays, func(r *DailyRecord) *float64 { return r.Weight })
		agg.AvgExpenditure = weeklyMetric(week, a.cfg.WeeklyMinValidDays, func(r *DailyRecord) *float64 { return r.Expenditure })
		agg.AvgIntake = weeklyMetric(week, a.cfg.WeeklyMinValidDays, func(r *DailyRecord) *float64 { return r.Intake })

		weekly = append(weekly, agg)
	}

	return weekly
}

func weeklyMetric(week []*DailyRecord, minValidDays int, metric func(*DailyRecord) *float64) *float64 {
	var values []float64
	for _, r := range week {
		if v := metric(r); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) < minValidDays {
		return nil
	}
	return floatPtr(mean(values))
}

// weekStart returns the Monday of the given date's ISO week.
func weekStart(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return date.AddDate(0, 0, -(weekday - 1))
}

// isPlateau reports whether the smoothed rate stayed within the maintenance
// band for at least the configured number of trailing days.
func (a *Analyzer) isPlateau(subset []DailyRecord) bool {
	if len(subset) == 0 {
		return false
	}

	last := subset[len(subset)-1]
	coveredDays := 0
	for i := len(subset) - 1; i >= 0; i-- {
		r := &subset[i]
		if r.SmoothedRate == nil {
			continue
		}
		if *r.SmoothedRate >= a.cfg.BulkRateThreshold || *r.SmoothedRate <= a.cfg.CutRateThreshold {
			return false
		}
		coveredDays = last.DaysSince(r.Date) + 1
		if coveredDays >= a.cfg.PlateauDays {
			return true
		}
	}
	return false
}

func (a *Analyzer) goalStats(subset []DailyRecord, targetWeight float64, goalDate *time.Time) *GoalStats {
	gs := &GoalStats{TargetWeight: targetWeight}

	var current *float64
	var currentDate time.Time
	for i := len(subset) - 1; i >= 0; i-- {
		if v := smaOrWeight(&subset[i]); v != nil {
			current = v
			currentDate = subset[i].Date
			break
		}
	}
	if current == nil {
		return gs
	}

	distance := targetWeight - *current
	gs.Distance = floatPtr(distance)

	for i := len(subset) - 1; i >= 0; i-- {
		if sr := subset[i].SmoothedRate; sr != nil {
			gs.WeeklyRate = floatPtr(*sr)
			break
		}
	}

	// first range day whose SMA got within tolerance of the target
	for i := range subset {
		if subset[i].SMA == nil {
			continue
		}
		if math.Abs(*subset[i].SMA-targetWeight) <= a.cfg.GoalToleranceKg {
			gs.AchievedDate = datePtr(subset[i].Date)
			break
		}
	}

	gs.ETA, gs.ETADescription = estimateETA(distance, gs.WeeklyRate, currentDate)

	if goalDate != nil {
		weeksLeft := goalDate.Sub(currentDate).Hours() / 24 / 7
		if weeksLeft > 0 {
			requiredRate := distance / weeksLeft
			gs.RequiredWeeklyRate = floatPtr(requiredRate)

			currentRate := 0.0
			if gs.WeeklyRate != nil {
				currentRate = *gs.WeeklyRate
			}
			gs.CalorieAdjustment = floatPtr((requiredRate - currentRate) * a.cfg.EnergyPerKg / 7)
		}
	}

	return gs
}

// flatRateThreshold is the weekly rate magnitude below which the trend
// is considered flat for goal projections (kg/week).
const flatRateThreshold = 0.01

func estimateETA(distance float64, weeklyRate *float64, anchor time.Time) (*time.Time, string) {
	if math.Abs(distance) < 1e-9 {
		return &anchor, "goal reached"
	}
	if weeklyRate == nil || math.Abs(*weeklyRate) < flatRateThreshold {
		return nil, "flat"
	}

	weeks := distance / *weeklyRate
	if weeks < 0 {
		return nil, "trending away"
	}

	eta := anchor.AddDate(0, 0, int(math.Round(weeks*7)))
	return &eta, formatWeeks(weeks)
}

func formatWeeks(weeks float64) string {
	switch {
	case weeks < 1:
		return "less than a week"
	case weeks < 9:
		return fmt.Sprintf("~%d weeks", int(math.Round(weeks)))
	case weeks < 52:
		return fmt.Sprintf("~%d months", int(math.Round(weeks/4.345)))
	default:
		return fmt.Sprintf("~%.1f years", weeks/52)
	}
}
