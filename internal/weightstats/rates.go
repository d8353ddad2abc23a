package weightstats

// dailyRates computes the day-over-day SMA slope (kg/day) and the trend based
// expenditure estimate. The slope is only usable when the gap to the previous
// record is positive and not longer than the SMA window itself.
func (p *Processor) dailyRates(records []DailyRecord) {
	for i := 1; i < len(records); i++ {
		r := &records[i]
		prev := &records[i-1]
		if r.SMA == nil || prev.SMA == nil {
			continue
		}

		gap := r.DaysSince(prev.Date)
		if gap <= 0 || gap > p.cfg.SMAWindowDays {
			continue
		}

		rate := (*r.SMA - *prev.SMA) / float64(gap)
		r.DailyRate = floatPtr(rate)

		// yesterday's intake fueled today's weight change
		if prev.Intake != nil {
			r.TrendTDEE = floatPtr(*prev.Intake - rate*p.cfg.EnergyPerKg)
		}
	}
}

// smoothRates smooths the daily rate series over the trailing rate window,
// scaled to weekly units. The (trend expenditure - logged expenditure)
// difference series is smoothed the same way, unscaled.
func (p *Processor) smoothRates(records []DailyRecord) {
	for i := range records {
		r := &records[i]
		start := windowStart(i, p.cfg.RateWindowDays)

		var rates, diffs []float64
		for j := start; j <= i; j++ {
			rj := &records[j]
			if rj.DailyRate != nil {
				rates = append(rates, *rj.DailyRate)
			}
			if rj.TrendTDEE != nil && rj.Expenditure != nil {
				diffs = append(diffs, *rj.TrendTDEE-*rj.Expenditure)
			}
		}

		if len(rates) > 0 {
			r.SmoothedRate = floatPtr(mean(rates) * 7)
		}
		if len(diffs) > 0 {
			r.SmoothedTDEEDiff = floatPtr(mean(diffs))
		}
	}
}

// rateOfRate is the rolling average of the smoothed weekly rate series.
func (p *Processor) rateOfRate(records []DailyRecord) {
	for i := range records {
		r := &records[i]
		start := windowStart(i, p.cfg.RateOfRateWindowDays)

		var rates []float64
		for j := start; j <= i; j++ {
			if sr := records[j].SmoothedRate; sr != nil {
				rates = append(rates, *sr)
			}
		}

		if len(rates) > 0 {
			r.RateOfRate = floatPtr(mean(rates))
		}
	}
}
