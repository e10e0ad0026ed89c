package domain

import "time"

// IsBusinessDay reports whether d is a Monday..Friday. Weekend dates are
// never needed and never missing.
func IsBusinessDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NeededSlots computes every timeslot that should have data for a user
// whose scan window starts at scanStart, evaluated at localNow (already
// converted to the user's timezone).
//
// Past business days contribute both halves. Today contributes a half
// only once the local hour has reached the configured cutoff for that
// half, so nobody is asked about an afternoon that has not happened yet.
func NeededSlots(scanStart, localNow time.Time, rules Rules) map[Slot]struct{} {
	needed := make(map[Slot]struct{})
	today := DateOf(localNow)

	for d := DateOf(scanStart); d.Before(today); d = d.AddDate(0, 0, 1) {
		if !IsBusinessDay(d) {
			continue
		}
		needed[Slot{Date: d, Half: Morning}] = struct{}{}
		needed[Slot{Date: d, Half: Afternoon}] = struct{}{}
	}

	if IsBusinessDay(today) && !DateOf(scanStart).After(today) {
		hour := localNow.Hour()
		if hour >= rules.MorningCutoffHour {
			needed[Slot{Date: today, Half: Morning}] = struct{}{}
		}
		if hour >= rules.AfternoonCutoffHour {
			needed[Slot{Date: today, Half: Afternoon}] = struct{}{}
		}
	}

	return needed
}

// MissingSlots returns needed minus available, sorted by (date, half).
func MissingSlots(needed, available map[Slot]struct{}) []Slot {
	var missing []Slot
	for s := range needed {
		if _, ok := available[s]; !ok {
			missing = append(missing, s)
		}
	}
	SortSlots(missing)
	return missing
}
