package weightstats

import (
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Merge combines the independently keyed raw series into one ascending-by-date
// sequence of daily records. Raw fields are populated where present, all
// derived fields stay nil. A date key that fails to parse as a valid calendar
// date is dropped with a warning; the number of distinct dropped keys is
// returned so callers can track it. A bad key shared by several source maps
// counts once.
func Merge(in RawInput) (records []DailyRecord, droppedKeys int) {
	byDate := make(map[time.Time]*DailyRecord)
	badKeys := make(map[string]struct{})

	rec := func(dateKey string) *DailyRecord {
		date, ok := parseDateKey(dateKey)
		if !ok {
			if _, seen := badKeys[dateKey]; !seen {
				badKeys[dateKey] = struct{}{}
				log.Warnf("merge: dropping malformed date key [%s]", dateKey)
			}
			return nil
		}
		r, found := byDate[date]
		if !found {
			r = &DailyRecord{Date: date}
			byDate[date] = r
		}
		return r
	}

	for k, v := range in.Weights {
		if r := rec(k); r != nil {
			w := v
			r.Weight = &w
		}
	}
	for k, v := range in.BodyFat {
		if r := rec(k); r != nil {
			bf := v
			r.BodyFatPct = &bf
		}
	}
	for k, v := range in.CalorieIntake {
		if r := rec(k); r != nil {
			in := v
			r.Intake = &in
		}
	}
	for k, v := range in.Expenditure {
		if r := rec(k); r != nil {
			e := v
			r.Expenditure = &e
		}
	}
	for k, v := range in.Protein {
		if r := rec(k); r != nil {
			p := v
			r.Protein = &p
		}
	}
	for k, v := range in.Carbs {
		if r := rec(k); r != nil {
			c := v
			r.Carbs = &c
		}
	}
	for k, v := range in.Fat {
		if r := rec(k); r != nil {
			f := v
			r.Fat = &f
		}
	}
	for k, v := range in.Workouts {
		if r := rec(k); r != nil {
			r.WorkoutCount = v.WorkoutCount
			r.TotalSets = v.TotalSets
			r.TotalVolume = v.TotalVolume
			r.RestDay = v.IsRestDay
		}
	}

	records = make([]DailyRecord, 0, len(byDate))
	for _, r := range byDate {
		if r.Intake != nil && r.Expenditure != nil {
			r.NetBalance = floatPtr(*r.Intake - *r.Expenditure)
		}
		records = append(records, *r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	return records, len(badKeys)
}

// parseDateKey parses a year-month-day date key, accepting both zero-padded
// and unpadded month/day parts. A key that normalizes to a different calendar
// day than stated (e.g. "2024-02-30") is rejected.
func parseDateKey(key string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(key), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}

	return date, true
}
