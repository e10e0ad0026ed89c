package timesheet

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/metrics"
)

// Notify sends one reminder to the user if every guard holds: the
// current local hour is one of the user's configured notification hours,
// there is actually something missing, the cooldown since the previous
// reminder has elapsed, and weekends are not excluded by policy. It
// reports whether a notification was dispatched.
//
// last_notified moves only after a successful dispatch; a failed one
// leaves the user eligible so the next hourly tick retries naturally.
func (s *Service) Notify(ctx context.Context, user *domain.User) (bool, error) {
	now := s.now()
	localNow := now.In(user.Location())

	eligible, err := s.repo.HasNotificationHour(ctx, user.ID, localNow.Hour())
	if err != nil {
		return false, err
	}
	if !eligible {
		return false, nil
	}

	missing, err := s.MissingSlots(ctx, user)
	if err != nil {
		return false, err
	}
	if len(missing) == 0 {
		return false, nil
	}

	if user.LastNotified != nil {
		cooldown := time.Duration(user.MinHoursBetweenNotifications) * time.Hour
		if now.Before(user.LastNotified.Add(cooldown)) {
			return false, nil
		}
	}

	if s.rules.SkipWeekendNotifications && !domain.IsBusinessDay(localNow) {
		return false, nil
	}

	if err := s.msgr.SendDirectMessage(ctx, user.SlackUserID, reminderText(user.FirstName, len(missing))); err != nil {
		return false, &domain.DeliveryError{Op: "send reminder", Err: err}
	}
	if err := s.repo.SetLastNotified(ctx, user.ID, now); err != nil {
		return true, err
	}
	user.LastNotified = &now
	metrics.NotificationsSent.Inc()
	return true, nil
}

func reminderText(name string, count int) string {
	entry, verb := "entry", "is"
	if count > 1 {
		entry, verb = "entries", "are"
	}
	return fmt.Sprintf("Hi %s, %d timesheet %s %s waiting for you. "+
		"Hit the fill-in button in your timesheet channel to catch up.",
		name, count, entry, verb)
}

// RunHourlyBatch processes every user once: remind if eligible, then
// advance the scan window. One user's failure is logged and must not
// stop the remaining users.
func (s *Service) RunHourlyBatch(ctx context.Context) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.log.Error("list users failed", zap.Error(err))
		return
	}

	for i := range users {
		user := &users[i]
		if _, err := s.Notify(ctx, user); err != nil {
			s.log.Error("notify failed",
				zap.Error(err), zap.String("user", user.FirstName))
		}
		if err := s.AdvanceScanStart(ctx, user); err != nil {
			s.log.Error("advance scan start failed",
				zap.Error(err), zap.String("user", user.FirstName))
		}
	}
}
