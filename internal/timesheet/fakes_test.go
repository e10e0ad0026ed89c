package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/store"
)

// fakeRepo is an in-memory store.Repo for service tests.
type fakeRepo struct {
	users     []*domain.User
	entries   map[string]*domain.TimeEntry
	hours     map[int64]map[int]bool
	workTypes []domain.WorkType
	programs  []domain.Program
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		entries: make(map[string]*domain.TimeEntry),
		hours:   make(map[int64]map[int]bool),
		workTypes: []domain.WorkType{
			{ID: 1, Code: "type-development", Label: "Development", SheetValue: "DEV", Active: true},
			{ID: 2, Code: "type-research", Label: "Research", SheetValue: "R&D", Active: true},
		},
		programs: []domain.Program{
			{ID: 1, Code: "prog-core", Label: "Core product", SheetColumn: "K", Active: true},
		},
	}
}

func entryKey(userID int64, slot domain.Slot) string {
	return fmt.Sprintf("%d/%s", userID, slot.Key())
}

func (f *fakeRepo) CreateUser(_ context.Context, u *domain.User) error {
	u.ID = int64(len(f.users) + 1)
	f.users = append(f.users, u)
	return nil
}

func (f *fakeRepo) UserBySlackID(_ context.Context, slackID string) (*domain.User, error) {
	for _, u := range f.users {
		if u.SlackUserID == slackID {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, len(f.users))
	for i, u := range f.users {
		out[i] = *u
	}
	return out, nil
}

func (f *fakeRepo) SetScanStart(_ context.Context, userID int64, day time.Time) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.ScanStart = day
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRepo) SetLastNotified(_ context.Context, userID int64, at time.Time) error {
	for _, u := range f.users {
		if u.ID == userID {
			t := at
			u.LastNotified = &t
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRepo) AddNotificationHour(_ context.Context, userID int64, hour int) error {
	if f.hours[userID] == nil {
		f.hours[userID] = make(map[int]bool)
	}
	f.hours[userID][hour] = true
	return nil
}

func (f *fakeRepo) HasNotificationHour(_ context.Context, userID int64, hour int) (bool, error) {
	return f.hours[userID][hour], nil
}

func (f *fakeRepo) Entry(_ context.Context, userID int64, slot domain.Slot) (*domain.TimeEntry, error) {
	e, ok := f.entries[entryKey(userID, slot)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) UpsertEntry(_ context.Context, e *domain.TimeEntry) error {
	cp := *e
	f.entries[entryKey(e.UserID, e.Slot())] = &cp
	return nil
}

func (f *fakeRepo) CompletedEntries(_ context.Context, userID int64, since time.Time) ([]domain.TimeEntry, error) {
	var res []domain.TimeEntry
	for _, e := range f.entries {
		if e.UserID != userID || e.WorkTypeID == nil || e.ProgramID == nil {
			continue
		}
		if e.Date.Before(domain.DateOf(since)) {
			continue
		}
		res = append(res, *e)
	}
	return res, nil
}

func (f *fakeRepo) ActiveWorkTypes(_ context.Context) ([]domain.WorkType, error) {
	return f.workTypes, nil
}

func (f *fakeRepo) ActivePrograms(_ context.Context) ([]domain.Program, error) {
	return f.programs, nil
}

func (f *fakeRepo) ActiveWorkTypeByCode(_ context.Context, code string) (*domain.WorkType, error) {
	for i := range f.workTypes {
		if f.workTypes[i].Code == code && f.workTypes[i].Active {
			return &f.workTypes[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) ActiveProgramByCode(_ context.Context, code string) (*domain.Program, error) {
	for i := range f.programs {
		if f.programs[i].Code == code && f.programs[i].Active {
			return &f.programs[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) WorkTypeByID(_ context.Context, id int64) (*domain.WorkType, error) {
	for i := range f.workTypes {
		if f.workTypes[i].ID == id {
			return &f.workTypes[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) ProgramByID(_ context.Context, id int64) (*domain.Program, error) {
	for i := range f.programs {
		if f.programs[i].ID == id {
			return &f.programs[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) UnexportedRows(_ context.Context) ([]store.ExportRow, error) { return nil, nil }
func (f *fakeRepo) MarkExported(_ context.Context, _ int64) error               { return nil }
func (f *fakeRepo) Close() error                                                { return nil }

// fakeMessenger records outbound traffic and can fail per Slack user id.
type fakeMessenger struct {
	dms      []string // "slackID: text"
	webhooks []string
	modals   []string // "slackID: slotKey"
	failFor  map[string]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failFor: make(map[string]bool)}
}

func (m *fakeMessenger) SendDirectMessage(_ context.Context, slackID, text string) error {
	if m.failFor[slackID] {
		return errors.New("slack is down")
	}
	m.dms = append(m.dms, slackID+": "+text)
	return nil
}

func (m *fakeMessenger) SendWebhook(_ context.Context, url, text string) error {
	m.webhooks = append(m.webhooks, url+": "+text)
	return nil
}

func (m *fakeMessenger) SendModal(_ context.Context, _, slackID string, slot domain.Slot) error {
	if m.failFor[slackID] {
		return errors.New("slack is down")
	}
	m.modals = append(m.modals, slackID+": "+slot.Key())
	return nil
}
