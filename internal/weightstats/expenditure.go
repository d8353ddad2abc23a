package weightstats

// adaptiveExpenditure estimates TDEE over the trailing adaptive window:
// window-average intake minus the energy equivalent of the SMA change across
// the window. Requires intake to be logged on at least the configured share
// of window days, and a valid SMA at both window endpoints.
func (p *Processor) adaptiveExpenditure(records []DailyRecord) {
	for i := range records {
		r := &records[i]
		start := windowStart(i, p.cfg.AdaptiveTDEEWindowDays)

		window := records[start : i+1]
		if len(window) < 2 {
			continue
		}

		first := &window[0]
		last := &window[len(window)-1]
		if first.SMA == nil || last.SMA == nil {
			continue
		}

		var intakeSum float64
		var intakeDays int
		for j := range window {
			if in := window[j].Intake; in != nil {
				intakeSum += *in
				intakeDays++
			}
		}
		if float64(intakeDays)/float64(len(window)) < p.cfg.AdaptiveTDEEMinIntakeCoverage {
			continue
		}

		elapsed := last.DaysSince(first.Date)
		if elapsed <= 0 {
			continue
		}

		avgIntake := intakeSum / float64(intakeDays)
		dailyChange := (*last.SMA - *first.SMA) / float64(elapsed)
		r.AdaptiveTDEE = floatPtr(avgIntake - dailyChange*p.cfg.EnergyPerKg)
	}
}
