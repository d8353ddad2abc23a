package weightstats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// RegressionPoint is one fitted point of the trend line, with a two-sided
// prediction interval. The bounds are nil in degenerate cases (too few
// degrees of freedom, or zero spread of the x values).
type RegressionPoint struct {
	Date   time.Time `json:"date"`
	Fitted float64   `json:"fitted"`
	Lower  *float64  `json:"lower,omitempty"`
	Upper  *float64  `json:"upper,omitempty"`
}

// RegressionResult is an ordinary least squares fit of weight against
// elapsed days, over a date-bounded, outlier-excluded record subset.
type RegressionResult struct {
	Slope     float64           `json:"slope"` // kg per day
	Intercept float64           `json:"intercept"`
	N         int               `json:"n"`
	FirstDate time.Time         `json:"firstDate"`
	Points    []RegressionPoint `json:"points"`
}

// ValueAt evaluates the fitted line at an arbitrary date, which can lie
// outside the fitted sub-range (used to extend the line for display).
func (r *RegressionResult) ValueAt(date time.Time) float64 {
	days := date.Sub(r.FirstDate).Hours() / 24
	return r.Intercept + r.Slope*days
}

// FitTrend fits OLS on (elapsed days, weight) over records inside [from, to]
// that have a valid weight and are not flagged as outliers. Returns nil when
// fewer than the configured minimum of points qualify.
func FitTrend(records []DailyRecord, from, to time.Time, cfg AnalysisConfig) *RegressionResult {
	cfg = cfg.WithDefaults()

	var dates []time.Time
	var ys []float64
	for i := range records {
		r := &records[i]
		if r.Weight == nil || r.Outlier {
			continue
		}
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		dates = append(dates, r.Date)
		ys = append(ys, *r.Weight)
	}

	n := len(ys)
	if n < cfg.RegressionMinPoints {
		return nil
	}

	first := dates[0]
	xs := make([]float64, n)
	for i, d := range dates {
		xs[i] = d.Sub(first).Hours() / 24
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	result := &RegressionResult{
		Slope:     slope,
		Intercept: intercept,
		N:         n,
		FirstDate: first,
		Points:    make([]RegressionPoint, n),
	}

	xMean := stat.Mean(xs, nil)
	var ssr, sxx float64
	for i := range xs {
		residual := ys[i] - (intercept + slope*xs[i])
		ssr += residual * residual
		dx := xs[i] - xMean
		sxx += dx * dx
	}

	df := n - 2
	boundsOK := df > 2 && sxx > 0
	var see, tQuantile float64
	if boundsOK {
		see = math.Sqrt(ssr / float64(df))
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
		tQuantile = tDist.Quantile(1 - cfg.SignificanceLevel/2)
	}

	for i := range xs {
		point := RegressionPoint{
			Date:   dates[i],
			Fitted: intercept + slope*xs[i],
		}
		if boundsOK {
			// prediction variance widens away from the temporal center
			dx := xs[i] - xMean
			sePred := see * math.Sqrt(1+1/float64(n)+dx*dx/sxx)
			point.Lower = floatPtr(point.Fitted - tQuantile*sePred)
			point.Upper = floatPtr(point.Fitted + tQuantile*sePred)
		}
		result.Points[i] = point
	}

	return result
}
