package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	api "github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/metrics"
	slackmsg "github.com/batvoice-org/timesheetbot/internal/slack"
	"github.com/batvoice-org/timesheetbot/internal/store"
)

const maxPayloadBytes = 1 << 20

// interactionHandler serves POST /slack: Slack interaction payloads for
// button clicks, select changes and modal submissions.
type interactionHandler struct {
	core          *Core
	signingSecret string
	log           *zap.Logger
}

func (h *interactionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if h.signingSecret != "" {
		verifier, err := api.NewSecretsVerifier(r.Header, h.signingSecret)
		if err == nil {
			_, _ = verifier.Write(body)
			err = verifier.Ensure()
		}
		if err != nil {
			h.log.Warn("slack signature rejected", zap.Error(err))
			metrics.InteractionErrors.WithLabelValues("bad_signature").Inc()
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	form, err := url.ParseQuery(string(body))
	if err != nil || form.Get("payload") == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var cb api.InteractionCallback
	if err := json.Unmarshal([]byte(form.Get("payload")), &cb); err != nil {
		metrics.InteractionErrors.WithLabelValues("bad_payload").Inc()
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	inter, err := slackmsg.DecodeInteraction(&cb)
	if err != nil {
		metrics.InteractionErrors.WithLabelValues("bad_payload").Inc()
		h.log.Warn("undecodable interaction", zap.Error(err))
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	user, err := h.core.Repo.UserBySlackID(ctx, inter.SlackUserID)
	if errors.Is(err, store.ErrNotFound) {
		metrics.InteractionErrors.WithLabelValues("unknown_user").Inc()
		h.log.Warn("interaction from unregistered slack user",
			zap.String("slack_user", inter.SlackUserID))
		http.Error(w, domain.ErrUnknownUser.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		h.log.Error("user lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	switch act := inter.Action.(type) {
	case slackmsg.OpenAction:
		err = h.core.Service.LaunchModal(ctx, user, inter.TriggerID)
	case slackmsg.SelectAction:
		_, err = h.core.Service.Register(ctx, user, act.Slot, act.Update)
	case slackmsg.SubmitAction:
		_, err = h.core.Service.Register(ctx, user, act.Slot, act.Update)
		if err == nil {
			// Chain straight into the next missing slot.
			err = h.core.Service.LaunchModal(ctx, user, inter.TriggerID)
		}
	}
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	h.respondError(ctx, w, user, inter, err)
}

// respondError maps the error taxonomy to user feedback and an HTTP status.
func (h *interactionHandler) respondError(ctx context.Context, w http.ResponseWriter, user *domain.User, inter *slackmsg.Interaction, err error) {
	var (
		verr *domain.ValidationError
		rerr *domain.ReferenceNotFoundError
		derr *domain.DeliveryError
	)

	switch {
	case errors.As(err, &verr):
		metrics.InteractionErrors.WithLabelValues("validation").Inc()
		// Reject the submission in place; the modal stays open with the
		// corrective message attached to the offending block.
		if _, ok := inter.Action.(slackmsg.SubmitAction); ok {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(slackmsg.ViewErrors(verr.Field, verr.Reason))
			return
		}
		_ = h.core.Messenger.SendDirectMessage(ctx, user.SlackUserID, "That entry is incomplete: "+verr.Reason)
		w.WriteHeader(http.StatusOK)

	case errors.As(err, &rerr):
		metrics.InteractionErrors.WithLabelValues("reference_not_found").Inc()
		h.log.Error("stale reference selected", zap.Error(err),
			zap.String("slack_user", user.SlackUserID))
		_ = h.core.Messenger.SendDirectMessage(ctx, user.SlackUserID,
			"The "+rerr.Kind+" you selected no longer exists. Please contact an administrator.")
		w.WriteHeader(http.StatusOK)

	case errors.As(err, &derr):
		metrics.InteractionErrors.WithLabelValues("delivery").Inc()
		h.log.Error("slack delivery failed", zap.Error(err),
			zap.String("slack_user", user.SlackUserID),
			zap.String("trigger_id", inter.TriggerID))
		// Best effort: the messenger just failed, but tell the user if we can.
		_ = h.core.Messenger.SendDirectMessage(ctx, user.SlackUserID,
			"Something went wrong, please contact an administrator.")
		http.Error(w, "delivery failed", http.StatusInternalServerError)

	default:
		metrics.InteractionErrors.WithLabelValues("internal").Inc()
		h.log.Error("interaction failed", zap.Error(err),
			zap.String("slack_user", user.SlackUserID))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
