package domain

import (
	"testing"
	"time"
)

var testRules = Rules{MorningCutoffHour: 12, AfternoonCutoffHour: 18}

// helper: local wall-clock time in a zone
func at(t *testing.T, tz string, y int, m time.Month, d, hh int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return time.Date(y, m, d, hh, 0, 0, 0, loc)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNeededSlots_BeforeBothCutoffs(t *testing.T) {
	// Monday 2024-01-01 .. Wednesday 2024-01-03 at 09:00: both halves of
	// Monday and Tuesday, nothing for Wednesday yet.
	now := at(t, "Europe/Paris", 2024, time.January, 3, 9)
	needed := NeededSlots(day(2024, time.January, 1), now, testRules)

	want := []Slot{
		{day(2024, time.January, 1), Morning},
		{day(2024, time.January, 1), Afternoon},
		{day(2024, time.January, 2), Morning},
		{day(2024, time.January, 2), Afternoon},
	}
	if len(needed) != len(want) {
		t.Fatalf("want %d slots, got %d: %v", len(want), len(needed), needed)
	}
	for _, s := range want {
		if _, ok := needed[s]; !ok {
			t.Fatalf("missing expected slot %s", s.Key())
		}
	}
}

func TestNeededSlots_PastMorningCutoff(t *testing.T) {
	now := at(t, "Europe/Paris", 2024, time.January, 3, 14)
	needed := NeededSlots(day(2024, time.January, 1), now, testRules)

	if _, ok := needed[Slot{day(2024, time.January, 3), Morning}]; !ok {
		t.Fatalf("today's morning should be needed at 14:00")
	}
	if _, ok := needed[Slot{day(2024, time.January, 3), Afternoon}]; ok {
		t.Fatalf("today's afternoon should not be needed before 18:00")
	}
	if len(needed) != 5 {
		t.Fatalf("want 5 slots, got %d", len(needed))
	}
}

func TestNeededSlots_WeekendsNeverNeeded(t *testing.T) {
	// Friday 2024-01-05 through Monday 2024-01-15, late in the day.
	now := at(t, "Europe/Paris", 2024, time.January, 15, 23)
	needed := NeededSlots(day(2024, time.January, 5), now, testRules)

	for s := range needed {
		if !IsBusinessDay(s.Date) {
			t.Fatalf("weekend slot %s must never be needed", s.Key())
		}
	}
	// 5th, 8th..12th, 15th => 7 business days, both halves each.
	if len(needed) != 14 {
		t.Fatalf("want 14 slots, got %d", len(needed))
	}
}

func TestNeededSlots_ScanStartInFuture(t *testing.T) {
	now := at(t, "Europe/Paris", 2024, time.January, 3, 23)
	needed := NeededSlots(day(2024, time.February, 1), now, testRules)
	if len(needed) != 0 {
		t.Fatalf("future scan start must yield nothing, got %v", needed)
	}
}

func TestMissingSlots_OrderAndTieBreak(t *testing.T) {
	needed := map[Slot]struct{}{
		{day(2024, time.January, 2), Afternoon}: {},
		{day(2024, time.January, 2), Morning}:   {},
		{day(2024, time.January, 1), Afternoon}: {},
		{day(2024, time.January, 1), Morning}:   {},
	}
	available := map[Slot]struct{}{
		{day(2024, time.January, 1), Morning}: {},
	}

	missing := MissingSlots(needed, available)
	if len(missing) != 3 {
		t.Fatalf("want 3 missing, got %d", len(missing))
	}
	first := missing[0]
	if first.Key() != "2024-01-01_1" {
		t.Fatalf("earliest missing should be 2024-01-01_1, got %s", first.Key())
	}
	for i := 1; i < len(missing); i++ {
		if missing[i].Before(missing[i-1]) {
			t.Fatalf("missing slots not sorted at %d", i)
		}
	}
}

func TestSlotKeyRoundTrip(t *testing.T) {
	s := Slot{Date: day(2024, time.January, 3), Half: Morning}
	if s.Key() != "2024-01-03_0" {
		t.Fatalf("unexpected key %q", s.Key())
	}
	back, err := ParseSlotKey("2024-01-03_1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if back.Half != Afternoon || !back.Date.Equal(day(2024, time.January, 3)) {
		t.Fatalf("bad parse result %+v", back)
	}
	for _, bad := range []string{"", "2024-01-03", "2024-01-03_2", "03/01/2024_0"} {
		if _, err := ParseSlotKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestEntryComplete(t *testing.T) {
	wt, prog := int64(1), int64(2)
	cases := []struct {
		name  string
		entry TimeEntry
		want  bool
	}{
		{"all set", TimeEntry{Description: "wrote code", WorkTypeID: &wt, ProgramID: &prog}, true},
		{"short description", TimeEntry{Description: "ok", WorkTypeID: &wt, ProgramID: &prog}, false},
		{"no program", TimeEntry{Description: "wrote code", WorkTypeID: &wt}, false},
		{"no work type", TimeEntry{Description: "wrote code", ProgramID: &prog}, false},
	}
	for _, tc := range cases {
		if got := tc.entry.Complete(); got != tc.want {
			t.Fatalf("%s: want %v, got %v", tc.name, tc.want, got)
		}
	}
}
