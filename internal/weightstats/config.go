package weightstats

// AnalysisConfig holds all tuning knobs of the analytics pipeline. The zero
// value is not usable directly; run it through WithDefaults first.
type AnalysisConfig struct {
	SMAWindowDays     int     `toml:"sma_window_days" json:"smaWindowDays"`
	SMABandMultiplier float64 `toml:"sma_band_multiplier" json:"smaBandMultiplier"`
	EMAWindowDays     int     `toml:"ema_window_days" json:"emaWindowDays"`

	// OutlierThreshold is expressed in standard deviations from the SMA.
	// Outliers are only evaluated when the window std dev exceeds StdDevFloor.
	OutlierThreshold float64 `toml:"outlier_threshold" json:"outlierThreshold"`
	StdDevFloor      float64 `toml:"std_dev_floor" json:"stdDevFloor"`

	VolatilityWindowDays int `toml:"volatility_window_days" json:"volatilityWindowDays"`

	// EnergyPerKg is the energy content of one kg of body weight change (kcal).
	EnergyPerKg                   float64 `toml:"energy_per_kg" json:"energyPerKg"`
	AdaptiveTDEEWindowDays        int     `toml:"adaptive_tdee_window_days" json:"adaptiveTdeeWindowDays"`
	AdaptiveTDEEMinIntakeCoverage float64 `toml:"adaptive_tdee_min_intake_coverage" json:"adaptiveTdeeMinIntakeCoverage"`

	RateWindowDays       int `toml:"rate_window_days" json:"rateWindowDays"`
	RateOfRateWindowDays int `toml:"rate_of_rate_window_days" json:"rateOfRateWindowDays"`

	RegressionMinPoints int     `toml:"regression_min_points" json:"regressionMinPoints"`
	SignificanceLevel   float64 `toml:"significance_level" json:"significanceLevel"`

	// phase classification thresholds, in kg per week of smoothed rate
	BulkRateThreshold float64 `toml:"bulk_rate_threshold" json:"bulkRateThreshold"`
	CutRateThreshold  float64 `toml:"cut_rate_threshold" json:"cutRateThreshold"`
	MinPhaseDays      int     `toml:"min_phase_days" json:"minPhaseDays"`

	CorrelationMinSamples int `toml:"correlation_min_samples" json:"correlationMinSamples"`

	WeeklyMinValidDays int `toml:"weekly_min_valid_days" json:"weeklyMinValidDays"`

	GoalToleranceKg float64 `toml:"goal_tolerance_kg" json:"goalToleranceKg"`
	PlateauDays     int     `toml:"plateau_days" json:"plateauDays"`
}

func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SMAWindowDays:                 7,
		SMABandMultiplier:             1.0,
		EMAWindowDays:                 10,
		OutlierThreshold:              2.5,
		StdDevFloor:                   0.001,
		VolatilityWindowDays:          14,
		EnergyPerKg:                   7700,
		AdaptiveTDEEWindowDays:        14,
		AdaptiveTDEEMinIntakeCoverage: 0.7,
		RateWindowDays:                7,
		RateOfRateWindowDays:          7,
		RegressionMinPoints:           7,
		SignificanceLevel:             0.05,
		BulkRateThreshold:             0.1,
		CutRateThreshold:              -0.1,
		MinPhaseDays:                  14,
		CorrelationMinSamples:         10,
		WeeklyMinValidDays:            3,
		GoalToleranceKg:               0.2,
		PlateauDays:                   21,
	}
}

// WithDefaults returns a copy of the config with every unset (zero) knob
// replaced by its default value. Negative thresholds are kept as given.
func (c AnalysisConfig) WithDefaults() AnalysisConfig {
	def := DefaultAnalysisConfig()
	if c.SMAWindowDays <= 0 {
		c.SMAWindowDays = def.SMAWindowDays
	}
	if c.SMABandMultiplier <= 0 {
		c.SMABandMultiplier = def.SMABandMultiplier
	}
	if c.EMAWindowDays <= 0 {
		c.EMAWindowDays = def.EMAWindowDays
	}
	if c.OutlierThreshold <= 0 {
		c.OutlierThreshold = def.OutlierThreshold
	}
	if c.StdDevFloor <= 0 {
		c.StdDevFloor = def.StdDevFloor
	}
	if c.VolatilityWindowDays <= 0 {
		c.VolatilityWindowDays = def.VolatilityWindowDays
	}
	if c.EnergyPerKg <= 0 {
		c.EnergyPerKg = def.EnergyPerKg
	}
	if c.AdaptiveTDEEWindowDays <= 0 {
		c.AdaptiveTDEEWindowDays = def.AdaptiveTDEEWindowDays
	}
	if c.AdaptiveTDEEMinIntakeCoverage <= 0 {
		c.AdaptiveTDEEMinIntakeCoverage = def.AdaptiveTDEEMinIntakeCoverage
	}
	if c.RateWindowDays <= 0 {
		c.RateWindowDays = def.RateWindowDays
	}
	if c.RateOfRateWindowDays <= 0 {
		c.RateOfRateWindowDays = def.RateOfRateWindowDays
	}
	if c.RegressionMinPoints <= 0 {
		c.RegressionMinPoints = def.RegressionMinPoints
	}
	if c.SignificanceLevel <= 0 || c.SignificanceLevel >= 1 {
		c.SignificanceLevel = def.SignificanceLevel
	}
	if c.BulkRateThreshold == 0 {
		c.BulkRateThreshold = def.BulkRateThreshold
	}
	if c.CutRateThreshold == 0 {
		c.CutRateThreshold = def.CutRateThreshold
	}
	if c.MinPhaseDays <= 0 {
		c.MinPhaseDays = def.MinPhaseDays
	}
	if c.CorrelationMinSamples <= 0 {
		c.CorrelationMinSamples = def.CorrelationMinSamples
	}
	if c.WeeklyMinValidDays <= 0 {
		c.WeeklyMinValidDays = def.WeeklyMinValidDays
	}
	if c.GoalToleranceKg <= 0 {
		c.GoalToleranceKg = def.GoalToleranceKg
	}
	if c.PlateauDays <= 0 {
		c.PlateauDays = def.PlateauDays
	}
	return c
}
