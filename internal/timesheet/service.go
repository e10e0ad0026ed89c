// Package timesheet implements the missing-data reconciliation engine:
// which half-day timeslots need data, who gets reminded when, and how
// inbound entry updates are validated and applied.
package timesheet

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/store"
)

// Messenger is the outbound messaging collaborator. The Slack client
// implements it; fakes implement it in tests.
type Messenger interface {
	SendDirectMessage(ctx context.Context, slackUserID, text string) error
	SendWebhook(ctx context.Context, url, text string) error
	SendModal(ctx context.Context, triggerID, slackUserID string, slot domain.Slot) error
}

// Service wires the reconciliation logic to the entry store and the
// messaging collaborator.
type Service struct {
	repo  store.Repo
	msgr  Messenger
	rules domain.Rules
	log   *zap.Logger
	now   func() time.Time
}

// New creates a Service.
func New(repo store.Repo, msgr Messenger, rules domain.Rules, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		msgr:  msgr,
		rules: rules,
		log:   log,
		now:   time.Now,
	}
}

// NeededSlots computes the timeslots that should have data for the user,
// evaluated at the current instant in the user's timezone.
func (s *Service) NeededSlots(user *domain.User) map[domain.Slot]struct{} {
	localNow := s.now().In(user.Location())
	return domain.NeededSlots(user.ScanStart, localNow, s.rules)
}

// AvailableSlots returns the timeslots for which a usable entry already
// exists. The store filters on both reference fields; the description
// length gate is re-applied here defensively.
func (s *Service) AvailableSlots(ctx context.Context, user *domain.User) (map[domain.Slot]struct{}, error) {
	entries, err := s.repo.CompletedEntries(ctx, user.ID, user.ScanStart)
	if err != nil {
		return nil, err
	}
	available := make(map[domain.Slot]struct{}, len(entries))
	for i := range entries {
		if len(entries[i].Description) <= 2 {
			continue
		}
		available[entries[i].Slot()] = struct{}{}
	}
	return available, nil
}

// MissingSlots is the single source of truth for both modal launches and
// notifications: needed minus available, earliest first, morning before
// afternoon.
func (s *Service) MissingSlots(ctx context.Context, user *domain.User) ([]domain.Slot, error) {
	available, err := s.AvailableSlots(ctx, user)
	if err != nil {
		return nil, err
	}
	return domain.MissingSlots(s.NeededSlots(user), available), nil
}

// LaunchModal opens a filling modal for the most relevant missing slot.
// Nothing happens when the user is up to date.
func (s *Service) LaunchModal(ctx context.Context, user *domain.User, triggerID string) error {
	missing, err := s.MissingSlots(ctx, user)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	if err := s.msgr.SendModal(ctx, triggerID, user.SlackUserID, missing[0]); err != nil {
		return &domain.DeliveryError{Op: "open modal", Err: err}
	}
	return nil
}

// AdvanceScanStart moves the user's scan window lower bound forward:
// to the earliest still-missing date, or to today when nothing is
// missing. It never moves backwards, which keeps the hourly scan cheap
// without ever skipping an unresolved gap.
func (s *Service) AdvanceScanStart(ctx context.Context, user *domain.User) error {
	missing, err := s.MissingSlots(ctx, user)
	if err != nil {
		return err
	}

	var next time.Time
	if len(missing) > 0 {
		next = missing[0].Date
	} else {
		next = domain.DateOf(s.now().In(user.Location()))
	}
	if !next.After(user.ScanStart) {
		return nil
	}
	if err := s.repo.SetScanStart(ctx, user.ID, next); err != nil {
		return err
	}
	user.ScanStart = next
	return nil
}
