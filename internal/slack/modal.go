package slack

import (
	api "github.com/slack-go/slack"

	"github.com/batvoice-org/timesheetbot/internal/domain"
)

// Block and action ids used in the entry modal. Inbound decoding keys on
// them, so they must match what DecodeInteraction expects.
const (
	callbackIDEntry = "timesheet_entry"

	blockIDActivity = "activity-block"
	blockIDWorkType = "type-block"
	blockIDProgram  = "program-block"

	actionIDActivity = "activity-action"
	actionIDWorkType = "type-action"
	actionIDProgram  = "program-action"
	actionIDFill     = "fill-timesheet-action"
)

func plainText(s string) *api.TextBlockObject {
	return api.NewTextBlockObject(api.PlainTextType, s, false, false)
}

// buildEntryModal assembles the filling modal for one timeslot. The slot
// wire key travels in private_metadata and comes back on every select
// change and on the final submission.
func buildEntryModal(slot domain.Slot, initialDescription string, workTypes []domain.WorkType, programs []domain.Program) api.ModalViewRequest {
	activity := api.NewPlainTextInputBlockElement(plainText("What did you work on?"), actionIDActivity)
	activity.Multiline = true
	activity.InitialValue = initialDescription

	wtOptions := make([]*api.OptionBlockObject, 0, len(workTypes))
	for _, wt := range workTypes {
		wtOptions = append(wtOptions, api.NewOptionBlockObject(wt.Code, plainText(wt.Label), nil))
	}
	progOptions := make([]*api.OptionBlockObject, 0, len(programs))
	for _, p := range programs {
		progOptions = append(progOptions, api.NewOptionBlockObject(p.Code, plainText(p.Label), nil))
	}

	blocks := []api.Block{
		&api.InputBlock{
			Type:    api.MBTInput,
			BlockID: blockIDActivity,
			Label:   plainText("Activity for " + slot.Human()),
			Element: activity,
		},
		// Selects dispatch immediately so a partially filled modal still
		// saves its reference choices.
		&api.InputBlock{
			Type:           api.MBTInput,
			BlockID:        blockIDWorkType,
			Label:          plainText("Work type"),
			Element:        api.NewOptionsSelectBlockElement(api.OptTypeStatic, plainText("Pick a work type"), actionIDWorkType, wtOptions...),
			DispatchAction: true,
			Optional:       true,
		},
		&api.InputBlock{
			Type:           api.MBTInput,
			BlockID:        blockIDProgram,
			Label:          plainText("Program"),
			Element:        api.NewOptionsSelectBlockElement(api.OptTypeStatic, plainText("Pick a program"), actionIDProgram, progOptions...),
			DispatchAction: true,
			Optional:       true,
		},
	}

	return api.ModalViewRequest{
		Type:            api.VTModal,
		Title:           plainText("Timesheet"),
		Submit:          plainText("Save"),
		Close:           plainText("Later"),
		CallbackID:      callbackIDEntry,
		PrivateMetadata: slot.Key(),
		Blocks:          api.Blocks{BlockSet: blocks},
	}
}

// ViewErrors builds the view_submission response body that rejects a
// submission and pins a message under the offending block.
func ViewErrors(field, message string) map[string]any {
	blockID := blockIDActivity
	switch field {
	case "program":
		blockID = blockIDProgram
	case "work type":
		blockID = blockIDWorkType
	}
	return map[string]any{
		"response_action": "errors",
		"errors":          map[string]string{blockID: message},
	}
}
