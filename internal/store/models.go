package store

import (
	"database/sql"
	"time"
)

// Conversion helpers between domain pointer fields and SQL null types.
// Dates travel as "YYYY-MM-DD" text, instants as unix seconds.

const dayFormat = "2006-01-02"

func toNullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func fromNullUnix(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.Unix(ns.Int64, 0).UTC()
	return &t
}

func toNullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func fromNullID(ns sql.NullInt64) *int64 {
	if !ns.Valid {
		return nil
	}
	id := ns.Int64
	return &id
}

func toDay(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

func fromDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayFormat, s, time.UTC)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
