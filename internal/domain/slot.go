package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Half identifies which half of a day a timeslot covers.
type Half int

const (
	Morning   Half = 0
	Afternoon Half = 1
)

// Label returns the lowercase human name of the half.
func (h Half) Label() string {
	if h == Morning {
		return "morning"
	}
	return "afternoon"
}

var ErrBadSlotKey = errors.New("bad timeslot key")

// Slot is one half-day timeslot. Date is always midnight UTC.
type Slot struct {
	Date time.Time
	Half Half
}

// DateOf strips the clock from t, keeping its calendar date at UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key renders the cross-boundary wire form "YYYY-MM-DD_0|1" used in
// modal payload round-trips. The format must stay byte-stable: existing
// Slack view templates key on it.
func (s Slot) Key() string {
	return fmt.Sprintf("%s_%d", s.Date.Format("2006-01-02"), int(s.Half))
}

// ParseSlotKey is the inverse of Key.
func ParseSlotKey(key string) (Slot, error) {
	body, half, ok := strings.Cut(key, "_")
	if !ok {
		return Slot{}, fmt.Errorf("%w: %q", ErrBadSlotKey, key)
	}
	d, err := time.ParseInLocation("2006-01-02", body, time.UTC)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrBadSlotKey, key)
	}
	switch half {
	case "0":
		return Slot{Date: d, Half: Morning}, nil
	case "1":
		return Slot{Date: d, Half: Afternoon}, nil
	}
	return Slot{}, fmt.Errorf("%w: %q", ErrBadSlotKey, key)
}

// Before orders slots chronologically, morning before afternoon. This is
// the tie-break used to pick the "most relevant" missing slot; the old
// lexicographic sort on Key happened to agree only thanks to zero-padded
// dates, so the comparison is explicit here.
func (s Slot) Before(o Slot) bool {
	if !s.Date.Equal(o.Date) {
		return s.Date.Before(o.Date)
	}
	return s.Half < o.Half
}

// Human renders a slot for messages, e.g. "Wednesday morning (2024-01-03)".
func (s Slot) Human() string {
	return fmt.Sprintf("%s %s (%s)", s.Date.Weekday(), s.Half.Label(), s.Date.Format("2006-01-02"))
}

// SortSlots orders a slice in place by (date, half).
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
}
