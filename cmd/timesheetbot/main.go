package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/batvoice-org/timesheetbot/internal/app"
	"github.com/batvoice-org/timesheetbot/internal/config"
	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/logger"
	"github.com/batvoice-org/timesheetbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := rootCmd(cfg, log).Execute(); err != nil {
		log.Fatal("command failed", zap.Error(err))
	}
}

func rootCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "timesheetbot",
		Short:         "Slack timesheet bot: half-day entries, reminders, spreadsheet sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(cfg, log))
	root.AddCommand(hourlyCmd(cfg, log))
	root.AddCommand(userAddCmd(cfg, log))
	return root
}

func serveCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Slack endpoint and the hourly scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.New(cfg, log)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
}

func hourlyCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "hourly",
		Short: "Run one reconciliation batch and spreadsheet export, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			core, err := app.OpenCore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer core.Close()

			core.Service.RunHourlyBatch(ctx)
			if core.Exporter != nil {
				if err := core.Exporter.ExportAll(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func userAddCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	var (
		name      string
		slackID   string
		topRow    int
		tz        string
		scanStart string
		hours     string
		minGap    int
		hook      string
		noCopy    bool
	)

	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "Register a user and their notification hours",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start := time.Now().UTC()
			if scanStart != "" {
				var err error
				start, err = time.ParseInLocation("2006-01-02", scanStart, time.UTC)
				if err != nil {
					return fmt.Errorf("bad --scan-start: %w", err)
				}
			}
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("bad --timezone: %w", err)
			}
			hourList, err := parseHours(hours)
			if err != nil {
				return err
			}

			repo, err := store.OpenSQLite(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			user := &domain.User{
				FirstName:                    name,
				SlackUserID:                  slackID,
				MinHoursBetweenNotifications: minGap,
				SpreadsheetTopRow:            topRow,
				ScanStart:                    domain.DateOf(start),
				Timezone:                     tz,
				RepublishHook:                hook,
				SendCopyOfData:               !noCopy,
			}
			if err := repo.CreateUser(ctx, user); err != nil {
				return err
			}
			for _, h := range hourList {
				if err := repo.AddNotificationHour(ctx, user.ID, h); err != nil {
					return err
				}
			}

			log.Info("user registered",
				zap.String("name", name),
				zap.Int64("id", user.ID),
				zap.Ints("notification_hours", hourList))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "user's first name (unique)")
	cmd.Flags().StringVar(&slackID, "slack-id", "", "Slack user id, e.g. U12345")
	cmd.Flags().IntVar(&topRow, "top-row", 0, "first spreadsheet row of the user's weekly block")
	cmd.Flags().StringVar(&tz, "timezone", cfg.DefaultTimezone, "IANA working timezone")
	cmd.Flags().StringVar(&scanStart, "scan-start", "", "first date to expect data for (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&hours, "hours", "9,14", "comma-separated local hours eligible for reminders")
	cmd.Flags().IntVar(&minGap, "min-gap", 4, "minimum hours between two reminders")
	cmd.Flags().StringVar(&hook, "hook", "", "webhook URL receiving completed entries")
	cmd.Flags().BoolVar(&noCopy, "no-copy", false, "do not DM entry summaries to the user")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("slack-id")
	_ = cmd.MarkFlagRequired("top-row")
	return cmd
}

func parseHours(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := strconv.Atoi(part)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("bad --hours value %q", part)
		}
		out = append(out, h)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one notification hour is required")
	}
	return out, nil
}
