package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/batvoice-org/timesheetbot/internal/domain"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	SlackBotToken      string `envconfig:"SLACK_BOT_TOKEN" default:""`
	SlackSigningSecret string `envconfig:"SLACK_SIGNING_SECRET" default:""`
	DBPath             string `envconfig:"DB_PATH" default:"./data/timesheet.db"`
	HTTPAddr           string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	DefaultTimezone    string `envconfig:"WORKING_TIMEZONE" default:"CET"`

	// Business-calendar rules for the availability model and the
	// notification scheduler.
	MorningEndsAt         int  `envconfig:"MORNING_ENDS_AT" default:"12"`
	AfternoonEndsAt       int  `envconfig:"AFTERNOON_ENDS_AT" default:"18"`
	SkipNotificationsOnWE bool `envconfig:"SKIP_NOTIFICATIONS_ON_WE" default:"true"`

	// Spreadsheet sync; export is disabled when the URL is empty.
	SheetURL       string `envconfig:"GSHEET_SHEET" default:""`
	SheetCredsFile string `envconfig:"GSHEET_ACCESS_CONF_LOCATION" default:""`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Rules bundles the calendar configuration into the explicit structure
// the core components take, instead of reading ambient process state.
func (c Config) Rules() domain.Rules {
	return domain.Rules{
		MorningCutoffHour:        c.MorningEndsAt,
		AfternoonCutoffHour:      c.AfternoonEndsAt,
		SkipWeekendNotifications: c.SkipNotificationsOnWE,
	}
}
