package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batvoice-org/timesheetbot/internal/domain"
)

func TestTabNameFor(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024-01-01", "01-01-24 => 05-01-24"}, // Monday
		{"2024-01-03", "01-01-24 => 05-01-24"}, // mid-week
		{"2024-01-07", "01-01-24 => 05-01-24"}, // Sunday still maps to its week
		{"2024-01-08", "08-01-24 => 12-01-24"},
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, tabNameFor(d), tc.date)
	}
}

func TestCellRange(t *testing.T) {
	wednesday := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "'W1'!C7:F7", cellRange("W1", 5, wednesday, domain.Morning))
	assert.Equal(t, "'W1'!G7:J7", cellRange("W1", 5, wednesday, domain.Afternoon))

	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "'W1'!C5:F5", cellRange("W1", 5, monday, domain.Morning))
}

func TestSpreadsheetIDFromURL(t *testing.T) {
	id, err := spreadsheetIDFromURL("https://docs.google.com/spreadsheets/d/abc123XYZ/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "abc123XYZ", id)

	id, err = spreadsheetIDFromURL("https://docs.google.com/spreadsheets/d/abc123XYZ")
	require.NoError(t, err)
	assert.Equal(t, "abc123XYZ", id)

	for _, bad := range []string{"", "https://example.com/doc", "https://docs.google.com/spreadsheets/d/"} {
		_, err := spreadsheetIDFromURL(bad)
		assert.Error(t, err, bad)
	}
}
