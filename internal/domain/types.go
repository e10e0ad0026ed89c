package domain

import "time"

// User holds per-person timesheet settings and reconciliation state.
type User struct {
	ID                           int64
	FirstName                    string
	SlackUserID                  string
	MinHoursBetweenNotifications int
	SpreadsheetTopRow            int
	ScanStart                    time.Time  // look_for_data_starting_at, date resolution
	LastNotified                 *time.Time // UTC, nullable
	Timezone                     string     // IANA zone name
	RepublishHook                string     // webhook URL for completed entries, "" if none
	SendCopyOfData               bool
	CreatedAt                    time.Time // UTC
}

// Location resolves the user's working timezone, falling back to UTC.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TimeEntry is one half-day of timesheet data. At most one exists per
// (user, date, half); rows are created lazily and mutated in place.
type TimeEntry struct {
	ID          int64
	UserID      int64
	Date        time.Time
	Half        Half
	Description string
	WorkTypeID  *int64
	ProgramID   *int64
	Exported    bool // already mirrored to the spreadsheet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Slot returns the timeslot this entry belongs to.
func (e *TimeEntry) Slot() Slot {
	return Slot{Date: DateOf(e.Date), Half: e.Half}
}

// Complete reports whether the entry carries everything downstream
// consumers need: a real description plus both classification axes.
func (e *TimeEntry) Complete() bool {
	return len(e.Description) > 2 && e.WorkTypeID != nil && e.ProgramID != nil
}

// WorkType is a reference row classifying the kind of work done.
type WorkType struct {
	ID         int64
	Code       string
	Label      string
	SheetValue string
	Active     bool
}

// Program is a reference row binding an entry to a funding program.
type Program struct {
	ID          int64
	Code        string
	Label       string
	SheetColumn string
	Active      bool
}

// NotificationHour marks one hour of day (in the user's timezone) at
// which the user may be reminded. A user can have several.
type NotificationHour struct {
	ID     int64
	UserID int64
	Hour   int // 0..23
}

// Rules carries the business-calendar configuration threaded into the
// availability model and the notification scheduler.
type Rules struct {
	MorningCutoffHour        int
	AfternoonCutoffHour      int
	SkipWeekendNotifications bool
}
