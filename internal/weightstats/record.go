package weightstats

import (
	"time"
)

// WorkoutEntry is one day worth of training data, as logged by the client.
type WorkoutEntry struct {
	WorkoutCount *float64 `json:"workoutCount,omitempty"`
	TotalSets    *float64 `json:"totalSets,omitempty"`
	TotalVolume  *float64 `json:"totalVolume,omitempty"`
	IsRestDay    *bool    `json:"isRestDay,omitempty"`
}

// RawInput is the full raw data snapshot, as received from the tracking
// clients: independently keyed per-date numeric maps. Date keys are
// year-month-day strings, zero-padded or not (e.g. "2024-03-07" or "2024-3-7").
type RawInput struct {
	Weights       map[string]float64      `json:"weights"`
	CalorieIntake map[string]float64      `json:"calorieIntake"`
	Expenditure   map[string]float64      `json:"expenditure"`
	BodyFat       map[string]float64      `json:"bodyFat"`
	Protein       map[string]float64      `json:"protein,omitempty"`
	Carbs         map[string]float64      `json:"carbs,omitempty"`
	Fat           map[string]float64      `json:"fat,omitempty"`
	Workouts      map[string]WorkoutEntry `json:"workouts,omitempty"`
}

// DailyRecord is one calendar day of raw and derived values. Every field
// except Date can be absent; consumers must treat all pointers as nullable.
type DailyRecord struct {
	Date time.Time `json:"date"`

	// raw fields, straight from the merged input
	Weight       *float64 `json:"weight,omitempty"`
	BodyFatPct   *float64 `json:"bodyFatPct,omitempty"`
	Intake       *float64 `json:"intake,omitempty"`
	Expenditure  *float64 `json:"expenditure,omitempty"`
	Protein      *float64 `json:"protein,omitempty"`
	Carbs        *float64 `json:"carbs,omitempty"`
	Fat          *float64 `json:"fat,omitempty"`
	WorkoutCount *float64 `json:"workoutCount,omitempty"`
	TotalSets    *float64 `json:"totalSets,omitempty"`
	TotalVolume  *float64 `json:"totalVolume,omitempty"`
	RestDay      *bool    `json:"restDay,omitempty"`

	// NetBalance is intake - expenditure, set on merge when both are present
	NetBalance *float64 `json:"netBalance,omitempty"`

	// derived fields, populated by the processor chain
	LeanMass         *float64 `json:"leanMass,omitempty"`
	FatMass          *float64 `json:"fatMass,omitempty"`
	SMA              *float64 `json:"sma,omitempty"`
	SMALean          *float64 `json:"smaLean,omitempty"`
	SMAFat           *float64 `json:"smaFat,omitempty"`
	StdDev           *float64 `json:"stdDev,omitempty"`
	BandLower        *float64 `json:"bandLower,omitempty"`
	BandUpper        *float64 `json:"bandUpper,omitempty"`
	EMA              *float64 `json:"ema,omitempty"`
	Outlier          bool     `json:"outlier,omitempty"`
	Volatility       *float64 `json:"volatility,omitempty"`
	DailyRate        *float64 `json:"dailyRate,omitempty"`
	TrendTDEE        *float64 `json:"trendTdee,omitempty"`
	AdaptiveTDEE     *float64 `json:"adaptiveTdee,omitempty"`
	SmoothedRate     *float64 `json:"smoothedRate,omitempty"`
	SmoothedTDEEDiff *float64 `json:"smoothedTdeeDiff,omitempty"`
	RateOfRate       *float64 `json:"rateOfRate,omitempty"`
}

// BestTDEE returns the adaptive expenditure estimate when present,
// falling back to the trend based one.
func (r *DailyRecord) BestTDEE() *float64 {
	if r.AdaptiveTDEE != nil {
		return r.AdaptiveTDEE
	}
	return r.TrendTDEE
}

// DaysSince returns the number of whole days between the given date
// and this record's date.
func (r *DailyRecord) DaysSince(date time.Time) int {
	return int(r.Date.Sub(date).Hours() / 24)
}

func floatPtr(v float64) *float64 {
	return &v
}

func datePtr(d time.Time) *time.Time {
	return &d
}
