package weightstats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationVariables is the fixed, ordered variable set of the pairwise
// correlation matrix.
var CorrelationVariables = []string{
	"intake",
	"proteinPct",
	"carbsPct",
	"fatPct",
	"volatility",
	"weightDelta",
	"tdee",
	"weeklyRate",
}

// CorrelationMatrix is a symmetric Pearson matrix over the fixed variable
// set. A nil cell means the pair had fewer complete days than the configured
// minimum. The diagonal is always exactly 1.
type CorrelationMatrix struct {
	Variables []string     `json:"variables"`
	Cells     [][]*float64 `json:"cells"`
}

// Correlate computes the pairwise Pearson matrix across the derived per-day
// variables. For each pair only days where both variables are present count;
// a numerically undefined coefficient (zero variance) becomes 0, not NaN.
func Correlate(records []DailyRecord, cfg AnalysisConfig) *CorrelationMatrix {
	cfg = cfg.WithDefaults()

	series := extractVariables(records)
	n := len(CorrelationVariables)

	matrix := &CorrelationMatrix{
		Variables: CorrelationVariables,
		Cells:     make([][]*float64, n),
	}
	for i := range matrix.Cells {
		matrix.Cells[i] = make([]*float64, n)
	}

	for i := 0; i < n; i++ {
		matrix.Cells[i][i] = floatPtr(1)
		for j := i + 1; j < n; j++ {
			cell := pearsonCell(series[i], series[j], cfg.CorrelationMinSamples)
			matrix.Cells[i][j] = cell
			matrix.Cells[j][i] = cell
		}
	}

	return matrix
}

// extractVariables builds one nullable series per correlation variable,
// aligned by record index.
func extractVariables(records []DailyRecord) [][]*float64 {
	series := make([][]*float64, len(CorrelationVariables))
	for i := range series {
		series[i] = make([]*float64, len(records))
	}

	for i := range records {
		r := &records[i]

		series[0][i] = r.Intake
		if r.Intake != nil && *r.Intake > 0 {
			if r.Protein != nil {
				series[1][i] = floatPtr(*r.Protein * 4 / *r.Intake * 100)
			}
			if r.Carbs != nil {
				series[2][i] = floatPtr(*r.Carbs * 4 / *r.Intake * 100)
			}
			if r.Fat != nil {
				series[3][i] = floatPtr(*r.Fat * 9 / *r.Intake * 100)
			}
		}
		series[4][i] = r.Volatility
		if i > 0 && r.Weight != nil && records[i-1].Weight != nil {
			series[5][i] = floatPtr(*r.Weight - *records[i-1].Weight)
		}
		series[6][i] = r.BestTDEE()
		series[7][i] = r.SmoothedRate
	}

	return series
}

func pearsonCell(a, b []*float64, minSamples int) *float64 {
	var xs, ys []float64
	for i := range a {
		if a[i] == nil || b[i] == nil {
			continue
		}
		xs = append(xs, *a[i])
		ys = append(ys, *b[i])
	}

	if len(xs) < minSamples {
		return nil
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		// zero variance in one of the series
		return floatPtr(0)
	}
	return floatPtr(r)
}
