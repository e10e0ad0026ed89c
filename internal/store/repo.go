package store

import (
	"context"
	"errors"
	"time"

	"github.com/batvoice-org/timesheetbot/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ExportRow is one not-yet-exported complete entry joined with what the
// spreadsheet writer needs to place it.
type ExportRow struct {
	EntryID       int64
	Date          time.Time
	Half          domain.Half
	Description   string
	WorkTypeValue string
	ProgramValue  string
	UserTopRow    int
}

// Repo defines storage operations for users, timesheet entries and the
// reference tables.
type Repo interface {
	CreateUser(ctx context.Context, u *domain.User) error
	UserBySlackID(ctx context.Context, slackUserID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetScanStart(ctx context.Context, userID int64, day time.Time) error
	SetLastNotified(ctx context.Context, userID int64, at time.Time) error

	AddNotificationHour(ctx context.Context, userID int64, hour int) error
	HasNotificationHour(ctx context.Context, userID int64, hour int) (bool, error)

	Entry(ctx context.Context, userID int64, slot domain.Slot) (*domain.TimeEntry, error)
	UpsertEntry(ctx context.Context, e *domain.TimeEntry) error
	CompletedEntries(ctx context.Context, userID int64, since time.Time) ([]domain.TimeEntry, error)

	ActiveWorkTypes(ctx context.Context) ([]domain.WorkType, error)
	ActivePrograms(ctx context.Context) ([]domain.Program, error)
	ActiveWorkTypeByCode(ctx context.Context, code string) (*domain.WorkType, error)
	ActiveProgramByCode(ctx context.Context, code string) (*domain.Program, error)
	WorkTypeByID(ctx context.Context, id int64) (*domain.WorkType, error)
	ProgramByID(ctx context.Context, id int64) (*domain.Program, error)

	UnexportedRows(ctx context.Context) ([]ExportRow, error)
	MarkExported(ctx context.Context, entryID int64) error

	Close() error
}
