package weightstats

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Processor applies the fixed chain of windowed transforms over a merged
// record sequence. It holds no state besides its config; every call to
// Process is a pure function of the input sequence.
type Processor struct {
	cfg AnalysisConfig
}

func NewProcessor(cfg AnalysisConfig) *Processor {
	return &Processor{
		cfg: cfg.WithDefaults(),
	}
}

// Process returns a new sequence with all derived fields populated.
// The input sequence is never mutated.
func (p *Processor) Process(records []DailyRecord) []DailyRecord {
	out := make([]DailyRecord, len(records))
	copy(out, records)

	p.bodyComposition(out)
	p.movingAverage(out)
	p.exponentialAverage(out)
	p.flagOutliers(out)
	p.rollingVolatility(out)
	p.dailyRates(out)
	p.adaptiveExpenditure(out)
	p.smoothRates(out)
	p.rateOfRate(out)

	return out
}

// bodyComposition splits weight into lean and fat mass, only when both
// weight and a body fat percentage in [0, 100) are present.
func (p *Processor) bodyComposition(records []DailyRecord) {
	for i := range records {
		r := &records[i]
		if r.Weight == nil || r.BodyFatPct == nil {
			continue
		}
		bf := *r.BodyFatPct
		if bf < 0 || bf >= 100 {
			continue
		}
		r.FatMass = floatPtr(*r.Weight * bf / 100)
		r.LeanMass = floatPtr(*r.Weight * (1 - bf/100))
	}
}

// movingAverage sets SMA, the window std dev, the SMA band, and the
// lean/fat mass SMAs, over the trailing SMA window.
func (p *Processor) movingAverage(records []DailyRecord) {
	for i := range records {
		r := &records[i]
		start := windowStart(i, p.cfg.SMAWindowDays)

		var weights []float64
		var leans, fats []float64
		for j := start; j <= i; j++ {
			if w := records[j].Weight; w != nil {
				weights = append(weights, *w)
			}
			if lm := records[j].LeanMass; lm != nil {
				leans = append(leans, *lm)
			}
			if fm := records[j].FatMass; fm != nil {
				fats = append(fats, *fm)
			}
		}

		if len(weights) > 0 {
			sma := mean(weights)
			sd := sampleStdDev(weights)
			r.SMA = floatPtr(sma)
			r.StdDev = floatPtr(sd)
			r.BandLower = floatPtr(sma - p.cfg.SMABandMultiplier*sd)
			r.BandUpper = floatPtr(sma + p.cfg.SMABandMultiplier*sd)
		}
		if len(leans) > 0 {
			r.SMALean = floatPtr(mean(leans))
		}
		if len(fats) > 0 {
			r.SMAFat = floatPtr(mean(fats))
		}
	}
}

// exponentialAverage computes the EMA with alpha = 2/(N+1), seeded by the
// first valid weight. The last valid EMA is carried forward through gaps.
func (p *Processor) exponentialAverage(records []DailyRecord) {
	alpha := 2.0 / (float64(p.cfg.EMAWindowDays) + 1)

	var prev *float64
	for i := range records {
		r := &records[i]
		switch {
		case r.Weight != nil && prev == nil:
			r.EMA = floatPtr(*r.Weight)
		case r.Weight != nil:
			r.EMA = floatPtr(alpha**r.Weight + (1-alpha)**prev)
		case prev != nil:
			r.EMA = floatPtr(*prev)
		}
		if r.EMA != nil {
			prev = r.EMA
		}
	}
}

// flagOutliers marks records whose raw weight deviates from the SMA by more
// than the configured number of std devs. Only evaluated when the window
// std dev exceeds the floor, to avoid flagging on flat data.
func (p *Processor) flagOutliers(records []DailyRecord) {
	for i := range records {
		r := &records[i]
		if r.Weight == nil || r.SMA == nil || r.StdDev == nil {
			continue
		}
		if *r.StdDev <= p.cfg.StdDevFloor {
			continue
		}
		r.Outlier = math.Abs(*r.Weight-*r.SMA) > p.cfg.OutlierThreshold**r.StdDev
	}
}

// rollingVolatility is the std dev of (raw weight - SMA) over the trailing
// volatility window, excluding outlier-flagged and missing days.
func (p *Processor) rollingVolatility(records []DailyRecord) {
	for i := range records {
		r := &records[i]
		start := windowStart(i, p.cfg.VolatilityWindowDays)

		var deviations []float64
		for j := start; j <= i; j++ {
			rj := &records[j]
			if rj.Weight == nil || rj.SMA == nil || rj.Outlier {
				continue
			}
			deviations = append(deviations, *rj.Weight-*rj.SMA)
		}

		if len(deviations) >= 2 {
			r.Volatility = floatPtr(sampleStdDev(deviations))
		}
	}
}

func windowStart(i, size int) int {
	start := i - size + 1
	if start < 0 {
		return 0
	}
	return start
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// sampleStdDev returns the sample standard deviation,
// or 0 when fewer than two samples are given.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd
}
