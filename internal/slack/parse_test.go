package slack

import (
	"encoding/json"
	"testing"

	api "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batvoice-org/timesheetbot/internal/domain"
)

func decode(t *testing.T, payload string) (*Interaction, error) {
	t.Helper()
	var cb api.InteractionCallback
	require.NoError(t, json.Unmarshal([]byte(payload), &cb))
	return DecodeInteraction(&cb)
}

func TestDecodeInteraction_ButtonClick(t *testing.T) {
	inter, err := decode(t, `{
		"type": "block_actions",
		"user": {"id": "U123"},
		"trigger_id": "trig-1",
		"actions": [{"action_id": "fill-timesheet-action", "block_id": "fill-block", "type": "button"}]
	}`)
	require.NoError(t, err)

	assert.Equal(t, "U123", inter.SlackUserID)
	assert.Equal(t, "trig-1", inter.TriggerID)
	assert.IsType(t, OpenAction{}, inter.Action)
}

func TestDecodeInteraction_SelectChange(t *testing.T) {
	inter, err := decode(t, `{
		"type": "block_actions",
		"user": {"id": "U123"},
		"trigger_id": "trig-2",
		"view": {"private_metadata": "2024-01-03_1"},
		"actions": [{
			"action_id": "program-action",
			"block_id": "program-block",
			"type": "static_select",
			"selected_option": {"value": "prog-core"}
		}]
	}`)
	require.NoError(t, err)

	sel, ok := inter.Action.(SelectAction)
	require.True(t, ok)
	assert.Equal(t, "2024-01-03_1", sel.Slot.Key())
	assert.Equal(t, domain.SelectProgram, sel.Update.Field)
	assert.Equal(t, "prog-core", sel.Update.Code)
}

func TestDecodeInteraction_ViewSubmission(t *testing.T) {
	inter, err := decode(t, `{
		"type": "view_submission",
		"user": {"id": "U123"},
		"trigger_id": "trig-3",
		"view": {
			"private_metadata": "2024-01-03_0",
			"state": {
				"values": {
					"activity-block": {
						"activity-action": {"type": "plain_text_input", "value": "Refactored parser"}
					},
					"type-block": {
						"type-action": {"type": "static_select", "selected_option": {"value": "type-development"}}
					},
					"program-block": {
						"program-action": {"type": "static_select", "selected_option": {"value": ""}}
					}
				}
			}
		}
	}`)
	require.NoError(t, err)

	sub, ok := inter.Action.(SubmitAction)
	require.True(t, ok)
	assert.Equal(t, "2024-01-03_0", sub.Slot.Key())
	assert.Equal(t, "Refactored parser", sub.Update.Description)
	assert.Equal(t, "type-development", sub.Update.WorkTypeCode)
	assert.Empty(t, sub.Update.ProgramCode)
}

func TestDecodeInteraction_Unsupported(t *testing.T) {
	cases := []string{
		`{"type": "shortcut", "user": {"id": "U1"}}`,
		`{"type": "block_actions", "user": {"id": "U1"}, "actions": []}`,
		`{"type": "block_actions", "user": {"id": "U1"},
		  "actions": [{"action_id": "mystery-action", "block_id": "mystery-block", "type": "button"}]}`,
		`{"type": "view_submission", "user": {"id": "U1"},
		  "view": {"private_metadata": "not-a-slot"}}`,
	}
	for _, payload := range cases {
		_, err := decode(t, payload)
		assert.Error(t, err, payload)
	}
}

func TestBuildEntryModal_CarriesSlotKey(t *testing.T) {
	slot, err := domain.ParseSlotKey("2024-01-03_0")
	require.NoError(t, err)

	view := buildEntryModal(slot, "previous text",
		[]domain.WorkType{{Code: "type-development", Label: "Development"}},
		[]domain.Program{{Code: "prog-core", Label: "Core product"}})

	assert.Equal(t, "2024-01-03_0", view.PrivateMetadata)
	assert.Equal(t, callbackIDEntry, view.CallbackID)
	require.Len(t, view.Blocks.BlockSet, 3)

	input, ok := view.Blocks.BlockSet[0].(*api.InputBlock)
	require.True(t, ok)
	element, ok := input.Element.(*api.PlainTextInputBlockElement)
	require.True(t, ok)
	assert.Equal(t, "previous text", element.InitialValue)
	assert.Contains(t, input.Label.Text, "Wednesday morning (2024-01-03)")
}
