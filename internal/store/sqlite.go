package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/batvoice-org/timesheetbot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- users ---

const userColumns = `id, first_name, slack_user_id, min_hours_between_notifications,
	spreadsheet_top_row, look_for_data_starting_at, last_notified,
	working_timezone, republish_hook, send_copy_of_data, created_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u        domain.User
		scanDay  string
		lastNS   sql.NullInt64
		sendCopy int
		created  int64
	)
	if err := row.Scan(
		&u.ID, &u.FirstName, &u.SlackUserID, &u.MinHoursBetweenNotifications,
		&u.SpreadsheetTopRow, &scanDay, &lastNS,
		&u.Timezone, &u.RepublishHook, &sendCopy, &created,
	); err != nil {
		return nil, err
	}
	day, err := fromDay(scanDay)
	if err != nil {
		return nil, fmt.Errorf("bad scan start %q: %w", scanDay, err)
	}
	u.ScanStart = day
	u.LastNotified = fromNullUnix(lastNS)
	u.SendCopyOfData = sendCopy != 0
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}

// CreateUser inserts a new user and fills in its assigned id.
func (r *SQLiteRepo) CreateUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			first_name, slack_user_id, min_hours_between_notifications,
			spreadsheet_top_row, look_for_data_starting_at, last_notified,
			working_timezone, republish_hook, send_copy_of_data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FirstName, u.SlackUserID, u.MinHoursBetweenNotifications,
		u.SpreadsheetTopRow, toDay(u.ScanStart), toNullUnix(u.LastNotified),
		u.Timezone, u.RepublishHook, boolToInt(u.SendCopyOfData), created.Unix(),
	)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	u.CreatedAt = created
	return err
}

// UserBySlackID returns the user registered for a Slack user id.
func (r *SQLiteRepo) UserBySlackID(ctx context.Context, slackUserID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE slack_user_id = ?`, slackUserID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// ListUsers returns all registered users ordered by id.
func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// SetScanStart moves a user's missing-data scan window lower bound.
func (r *SQLiteRepo) SetScanStart(ctx context.Context, userID int64, day time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET look_for_data_starting_at = ? WHERE id = ?`,
		toDay(day), userID)
	return err
}

// SetLastNotified records the instant of the latest reminder sent.
func (r *SQLiteRepo) SetLastNotified(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_notified = ? WHERE id = ?`,
		at.UTC().Unix(), userID)
	return err
}

// --- notification hours ---

// AddNotificationHour registers an eligible reminder hour; duplicates are
// ignored thanks to the (user, hour) uniqueness constraint.
func (r *SQLiteRepo) AddNotificationHour(ctx context.Context, userID int64, hour int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_hours (user_id, hour) VALUES (?, ?)
		ON CONFLICT(user_id, hour) DO NOTHING`,
		userID, hour)
	return err
}

// HasNotificationHour reports whether a user accepts reminders at the given hour.
func (r *SQLiteRepo) HasNotificationHour(ctx context.Context, userID int64, hour int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM notification_hours WHERE user_id = ? AND hour = ?`,
		userID, hour).Scan(&n)
	return n > 0, err
}

// --- time entries ---

const entryColumns = `id, user_id, date, half, description, work_type_id,
	program_id, exported, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (*domain.TimeEntry, error) {
	var (
		e                  domain.TimeEntry
		day                string
		half               int
		wtNS, progNS       sql.NullInt64
		exported           int
		createdAt, updated int64
	)
	if err := row.Scan(
		&e.ID, &e.UserID, &day, &half, &e.Description, &wtNS,
		&progNS, &exported, &createdAt, &updated,
	); err != nil {
		return nil, err
	}
	d, err := fromDay(day)
	if err != nil {
		return nil, fmt.Errorf("bad entry date %q: %w", day, err)
	}
	e.Date = d
	e.Half = domain.Half(half)
	e.WorkTypeID = fromNullID(wtNS)
	e.ProgramID = fromNullID(progNS)
	e.Exported = exported != 0
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.UpdatedAt = time.Unix(updated, 0).UTC()
	return &e, nil
}

// Entry returns the entry for one timeslot, or ErrNotFound.
func (r *SQLiteRepo) Entry(ctx context.Context, userID int64, slot domain.Slot) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE user_id = ? AND date = ? AND half = ?`,
		userID, toDay(slot.Date), int(slot.Half))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// UpsertEntry inserts or overwrites the entry for its (user, date, half)
// timeslot. A concurrent insert of the same timeslot degrades into the
// update arm of the conflict clause, which is exactly the retry-as-update
// semantics the uniqueness constraint is there to provide. The exported
// flag is never flipped back by an update.
func (r *SQLiteRepo) UpsertEntry(ctx context.Context, e *domain.TimeEntry) error {
	if e == nil {
		return errors.New("nil entry")
	}
	now := time.Now().UTC().Unix()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO time_entries (
			user_id, date, half, description, work_type_id, program_id,
			exported, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(user_id, date, half) DO UPDATE SET
			description  = excluded.description,
			work_type_id = excluded.work_type_id,
			program_id   = excluded.program_id,
			updated_at   = excluded.updated_at`,
		e.UserID, toDay(e.Date), int(e.Half), e.Description,
		toNullID(e.WorkTypeID), toNullID(e.ProgramID), now, now,
	)
	return err
}

// CompletedEntries returns entries usable by the availability model:
// both reference fields set, date within the scan window. Description
// length is re-checked by the caller.
func (r *SQLiteRepo) CompletedEntries(ctx context.Context, userID int64, since time.Time) ([]domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM time_entries
		WHERE user_id = ?
		  AND date >= ?
		  AND program_id IS NOT NULL
		  AND work_type_id IS NOT NULL
		ORDER BY date, half`,
		userID, toDay(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *e)
	}
	return res, rows.Err()
}

// --- reference tables ---

func (r *SQLiteRepo) ActiveWorkTypes(ctx context.Context) ([]domain.WorkType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, label, sheet_value, is_active FROM work_types
		WHERE is_active = 1 ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.WorkType
	for rows.Next() {
		var wt domain.WorkType
		var active int
		if err := rows.Scan(&wt.ID, &wt.Code, &wt.Label, &wt.SheetValue, &active); err != nil {
			return nil, err
		}
		wt.Active = active != 0
		res = append(res, wt)
	}
	return res, rows.Err()
}

func (r *SQLiteRepo) ActivePrograms(ctx context.Context) ([]domain.Program, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, label, sheet_column, is_active FROM programs
		WHERE is_active = 1 ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Program
	for rows.Next() {
		var p domain.Program
		var active int
		if err := rows.Scan(&p.ID, &p.Code, &p.Label, &p.SheetColumn, &active); err != nil {
			return nil, err
		}
		p.Active = active != 0
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *SQLiteRepo) scanWorkType(row *sql.Row) (*domain.WorkType, error) {
	var wt domain.WorkType
	var active int
	err := row.Scan(&wt.ID, &wt.Code, &wt.Label, &wt.SheetValue, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	wt.Active = active != 0
	return &wt, nil
}

func (r *SQLiteRepo) scanProgram(row *sql.Row) (*domain.Program, error) {
	var p domain.Program
	var active int
	err := row.Scan(&p.ID, &p.Code, &p.Label, &p.SheetColumn, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Active = active != 0
	return &p, nil
}

func (r *SQLiteRepo) ActiveWorkTypeByCode(ctx context.Context, code string) (*domain.WorkType, error) {
	return r.scanWorkType(r.db.QueryRowContext(ctx, `
		SELECT id, code, label, sheet_value, is_active FROM work_types
		WHERE is_active = 1 AND code = ?`, code))
}

func (r *SQLiteRepo) ActiveProgramByCode(ctx context.Context, code string) (*domain.Program, error) {
	return r.scanProgram(r.db.QueryRowContext(ctx, `
		SELECT id, code, label, sheet_column, is_active FROM programs
		WHERE is_active = 1 AND code = ?`, code))
}

func (r *SQLiteRepo) WorkTypeByID(ctx context.Context, id int64) (*domain.WorkType, error) {
	return r.scanWorkType(r.db.QueryRowContext(ctx, `
		SELECT id, code, label, sheet_value, is_active FROM work_types WHERE id = ?`, id))
}

func (r *SQLiteRepo) ProgramByID(ctx context.Context, id int64) (*domain.Program, error) {
	return r.scanProgram(r.db.QueryRowContext(ctx, `
		SELECT id, code, label, sheet_column, is_active FROM programs WHERE id = ?`, id))
}

// --- spreadsheet export ---

// UnexportedRows returns complete, not-yet-exported entries joined with
// the user's spreadsheet placement, ascending by date so the writer
// touches each weekly tab once.
func (r *SQLiteRepo) UnexportedRows(ctx context.Context) ([]ExportRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.date, e.half, e.description,
		       w.sheet_value, p.label, u.spreadsheet_top_row
		FROM time_entries e
		JOIN users u ON u.id = e.user_id
		JOIN work_types w ON w.id = e.work_type_id
		JOIN programs p ON p.id = e.program_id
		WHERE e.exported = 0
		  AND length(e.description) > 2
		ORDER BY e.date, e.half`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ExportRow
	for rows.Next() {
		var (
			row  ExportRow
			day  string
			half int
		)
		if err := rows.Scan(&row.EntryID, &day, &half, &row.Description,
			&row.WorkTypeValue, &row.ProgramValue, &row.UserTopRow); err != nil {
			return nil, err
		}
		d, err := fromDay(day)
		if err != nil {
			return nil, fmt.Errorf("bad export date %q: %w", day, err)
		}
		row.Date = d
		row.Half = domain.Half(half)
		res = append(res, row)
	}
	return res, rows.Err()
}

// MarkExported flags an entry as mirrored to the spreadsheet.
func (r *SQLiteRepo) MarkExported(ctx context.Context, entryID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET exported = 1 WHERE id = ?`, entryID)
	return err
}
