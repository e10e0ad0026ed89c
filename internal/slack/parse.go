package slack

import (
	"errors"
	"fmt"

	api "github.com/slack-go/slack"

	"github.com/batvoice-org/timesheetbot/internal/domain"
)

var ErrUnsupportedInteraction = errors.New("unsupported interaction")

// Interaction is the decoded, strongly-typed form of an inbound Slack
// interaction payload.
type Interaction struct {
	SlackUserID string
	TriggerID   string
	Action      Action
}

// Action is what the user did: asked for a modal, changed a select, or
// submitted the form.
type Action interface{ isAction() }

// OpenAction is a click on the fill-in button.
type OpenAction struct{}

func (OpenAction) isAction() {}

// SelectAction is an in-modal select change for one timeslot.
type SelectAction struct {
	Slot   domain.Slot
	Update domain.Selection
}

func (SelectAction) isAction() {}

// SubmitAction is a full modal submission for one timeslot.
type SubmitAction struct {
	Slot   domain.Slot
	Update domain.Submission
}

func (SubmitAction) isAction() {}

// DecodeInteraction narrows a raw interaction callback into an
// Interaction. This is the single place the loosely-typed block/action
// id soup from the Slack view template is interpreted; everything past
// here works on typed updates.
func DecodeInteraction(cb *api.InteractionCallback) (*Interaction, error) {
	out := &Interaction{SlackUserID: cb.User.ID, TriggerID: cb.TriggerID}

	switch cb.Type {
	case api.InteractionTypeBlockActions:
		if len(cb.ActionCallback.BlockActions) == 0 {
			return nil, fmt.Errorf("%w: block_actions without actions", ErrUnsupportedInteraction)
		}
		act := cb.ActionCallback.BlockActions[0]
		switch act.ActionID {
		case actionIDFill:
			out.Action = OpenAction{}
			return out, nil
		case actionIDWorkType, actionIDProgram:
			slot, err := domain.ParseSlotKey(cb.View.PrivateMetadata)
			if err != nil {
				return nil, err
			}
			field := domain.SelectWorkType
			if act.ActionID == actionIDProgram {
				field = domain.SelectProgram
			}
			out.Action = SelectAction{
				Slot:   slot,
				Update: domain.Selection{Field: field, Code: act.SelectedOption.Value},
			}
			return out, nil
		}
		return nil, fmt.Errorf("%w: action %q", ErrUnsupportedInteraction, act.ActionID)

	case api.InteractionTypeViewSubmission:
		slot, err := domain.ParseSlotKey(cb.View.PrivateMetadata)
		if err != nil {
			return nil, err
		}
		if cb.View.State == nil {
			return nil, fmt.Errorf("%w: submission without view state", ErrUnsupportedInteraction)
		}
		values := cb.View.State.Values
		out.Action = SubmitAction{
			Slot: slot,
			Update: domain.Submission{
				Description:  values[blockIDActivity][actionIDActivity].Value,
				WorkTypeCode: values[blockIDWorkType][actionIDWorkType].SelectedOption.Value,
				ProgramCode:  values[blockIDProgram][actionIDProgram].SelectedOption.Value,
			},
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: type %q", ErrUnsupportedInteraction, cb.Type)
}
