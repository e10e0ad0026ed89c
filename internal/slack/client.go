// Package slack talks to the Slack Web API and decodes inbound
// interaction payloads into the typed updates the core consumes.
package slack

import (
	"context"
	"errors"

	api "github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/store"
)

// Client implements timesheet.Messenger against the Slack Web API.
// It reads the store for modal prefills and select options.
type Client struct {
	api  *api.Client
	repo store.Repo
	log  *zap.Logger
}

// NewClient creates a Slack messenger.
func NewClient(botToken string, repo store.Repo, log *zap.Logger) *Client {
	return &Client{api: api.New(botToken), repo: repo, log: log}
}

// SendDirectMessage posts a plain text message to the user's private channel.
func (c *Client) SendDirectMessage(ctx context.Context, slackUserID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, slackUserID, api.MsgOptionText(text, false))
	return err
}

// SendWebhook posts a plain text message to an incoming webhook URL.
func (c *Client) SendWebhook(ctx context.Context, url, text string) error {
	return api.PostWebhookContext(ctx, url, &api.WebhookMessage{Text: text})
}

// SendModal opens the entry-filling modal for one timeslot, prefilled
// with the existing description when the entry already has one.
func (c *Client) SendModal(ctx context.Context, triggerID, slackUserID string, slot domain.Slot) error {
	user, err := c.repo.UserBySlackID(ctx, slackUserID)
	if err != nil {
		return err
	}

	initial := ""
	entry, err := c.repo.Entry(ctx, user.ID, slot)
	switch {
	case err == nil:
		initial = entry.Description
	case errors.Is(err, store.ErrNotFound):
		// first touch of this timeslot
	default:
		return err
	}

	workTypes, err := c.repo.ActiveWorkTypes(ctx)
	if err != nil {
		return err
	}
	programs, err := c.repo.ActivePrograms(ctx)
	if err != nil {
		return err
	}

	view := buildEntryModal(slot, initial, workTypes, programs)
	_, err = c.api.OpenViewContext(ctx, triggerID, view)
	if err != nil {
		c.log.Error("open view failed",
			zap.Error(err),
			zap.String("slack_user", slackUserID),
			zap.String("slot", slot.Key()))
	}
	return err
}
