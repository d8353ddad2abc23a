package weightstats

import (
	"time"
)

type PhaseType string

const (
	PhaseBulk        PhaseType = "bulk"
	PhaseCut         PhaseType = "cut"
	PhaseMaintenance PhaseType = "maintenance"
)

// Phase is a maximal contiguous date range whose smoothed weekly rate stays
// within one classification band for at least the configured minimum duration.
type Phase struct {
	Type         PhaseType `json:"type"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DurationDays int       `json:"durationDays"`
	AvgRate      float64   `json:"avgRate"` // kg per week
	AvgIntake    *float64  `json:"avgIntake,omitempty"`
	NetChange    *float64  `json:"netChange,omitempty"`
}

// DetectPhases walks the processed sequence in order and segments it by the
// smoothed weekly rate classification. Records without a usable rate neither
// extend nor close the current phase. Phases shorter than the minimum
// duration are dropped, never merged into their neighbors.
func DetectPhases(records []DailyRecord, cfg AnalysisConfig) []Phase {
	cfg = cfg.WithDefaults()

	var phases []Phase
	var current []*DailyRecord
	var currentType PhaseType

	closeCurrent := func() {
		if len(current) == 0 {
			return
		}
		phase := buildPhase(currentType, current)
		if phase.DurationDays >= cfg.MinPhaseDays {
			phases = append(phases, phase)
		}
		current = nil
	}

	for i := range records {
		r := &records[i]
		if r.SmoothedRate == nil {
			continue
		}

		phaseType := classifyRate(*r.SmoothedRate, cfg)
		if len(current) > 0 && phaseType != currentType {
			closeCurrent()
		}
		currentType = phaseType
		current = append(current, r)
	}
	closeCurrent()

	return phases
}

func classifyRate(weeklyRate float64, cfg AnalysisConfig) PhaseType {
	switch {
	case weeklyRate >= cfg.BulkRateThreshold:
		return PhaseBulk
	case weeklyRate <= cfg.CutRateThreshold:
		return PhaseCut
	default:
		return PhaseMaintenance
	}
}

func buildPhase(phaseType PhaseType, records []*DailyRecord) Phase {
	first := records[0]
	last := records[len(records)-1]

	phase := Phase{
		Type:         phaseType,
		Start:        first.Date,
		End:          last.Date,
		DurationDays: last.DaysSince(first.Date) + 1,
	}

	var rateSum float64
	var intakeSum float64
	var intakeDays int
	for _, r := range records {
		rateSum += *r.SmoothedRate
		if r.Intake != nil {
			intakeSum += *r.Intake
			intakeDays++
		}
	}
	phase.AvgRate = rateSum / float64(len(records))
	if intakeDays > 0 {
		phase.AvgIntake = floatPtr(intakeSum / float64(intakeDays))
	}

	startWeight := smaOrWeight(first)
	endWeight := smaOrWeight(last)
	if startWeight != nil && endWeight != nil {
		phase.NetChange = floatPtr(*endWeight - *startWeight)
	}

	return phase
}

func smaOrWeight(r *DailyRecord) *float64 {
	if r.SMA != nil {
		return r.SMA
	}
	return r.Weight
}
