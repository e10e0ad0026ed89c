package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/metrics"
	"github.com/batvoice-org/timesheetbot/internal/store"
)

// Register applies an update to the entry for one timeslot.
//
// Reference codes are resolved before anything is written, so a stale
// select option never dirties the row. Fields present in the update are
// then persisted through a single upsert; retried or duplicate Slack
// callbacks converge to the same row. A submission that leaves the entry
// without a program is rejected after the write: the description and
// work-type that came with it stand, the summary does not fire.
func (s *Service) Register(ctx context.Context, user *domain.User, slot domain.Slot, upd domain.Update) (*domain.TimeEntry, error) {
	entry, err := s.repo.Entry(ctx, user.ID, slot)
	if errors.Is(err, store.ErrNotFound) {
		entry = &domain.TimeEntry{UserID: user.ID, Date: slot.Date, Half: slot.Half}
	} else if err != nil {
		return nil, err
	}

	switch u := upd.(type) {
	case domain.Submission:
		entry.Description = strings.TrimSpace(u.Description)
		if u.WorkTypeCode != "" {
			wt, err := s.resolveWorkType(ctx, u.WorkTypeCode)
			if err != nil {
				return nil, err
			}
			entry.WorkTypeID = &wt.ID
		}
		if u.ProgramCode != "" {
			p, err := s.resolveProgram(ctx, u.ProgramCode)
			if err != nil {
				return nil, err
			}
			entry.ProgramID = &p.ID
		}
	case domain.Selection:
		switch u.Field {
		case domain.SelectWorkType:
			wt, err := s.resolveWorkType(ctx, u.Code)
			if err != nil {
				return nil, err
			}
			entry.WorkTypeID = &wt.ID
		case domain.SelectProgram:
			p, err := s.resolveProgram(ctx, u.Code)
			if err != nil {
				return nil, err
			}
			entry.ProgramID = &p.ID
		default:
			return nil, fmt.Errorf("unknown selection field %d", u.Field)
		}
	default:
		return nil, fmt.Errorf("unknown update kind %T", upd)
	}

	if err := s.repo.UpsertEntry(ctx, entry); err != nil {
		return nil, err
	}

	if _, isSubmit := upd.(domain.Submission); isSubmit && entry.ProgramID == nil {
		return entry, &domain.ValidationError{Field: "program", Reason: "a program must be selected"}
	}

	metrics.EntriesRegistered.Inc()

	summary, err := s.summarize(ctx, entry)
	if err != nil {
		return entry, err
	}
	if user.SendCopyOfData {
		if err := s.msgr.SendDirectMessage(ctx, user.SlackUserID, summary); err != nil {
			return entry, &domain.DeliveryError{Op: "send summary", Err: err}
		}
	}
	if entry.Complete() && strings.HasPrefix(user.RepublishHook, "http") {
		if err := s.msgr.SendWebhook(ctx, user.RepublishHook, summary); err != nil {
			return entry, &domain.DeliveryError{Op: "republish entry", Err: err}
		}
	}
	return entry, nil
}

func (s *Service) resolveWorkType(ctx context.Context, code string) (*domain.WorkType, error) {
	wt, err := s.repo.ActiveWorkTypeByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &domain.ReferenceNotFoundError{Kind: "work type", Code: code}
	}
	return wt, err
}

func (s *Service) resolveProgram(ctx context.Context, code string) (*domain.Program, error) {
	p, err := s.repo.ActiveProgramByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &domain.ReferenceNotFoundError{Kind: "program", Code: code}
	}
	return p, err
}

// summarize renders the private-channel recap, e.g.
// "Wednesday morning (2024-01-03) => Development / Core product: Refactored parser".
func (s *Service) summarize(ctx context.Context, entry *domain.TimeEntry) (string, error) {
	wtLabel, progLabel := "None", "None"
	if entry.WorkTypeID != nil {
		wt, err := s.repo.WorkTypeByID(ctx, *entry.WorkTypeID)
		if err != nil {
			return "", err
		}
		wtLabel = wt.Label
	}
	if entry.ProgramID != nil {
		p, err := s.repo.ProgramByID(ctx, *entry.ProgramID)
		if err != nil {
			return "", err
		}
		progLabel = p.Label
	}
	return fmt.Sprintf("%s => %s / %s: %s", entry.Slot().Human(), wtLabel, progLabel, entry.Description), nil
}
