// Package sheets mirrors completed timesheet entries into the shared
// Google spreadsheet, one tab per week.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/batvoice-org/timesheetbot/internal/domain"
	"github.com/batvoice-org/timesheetbot/internal/metrics"
	"github.com/batvoice-org/timesheetbot/internal/store"
)

// templateTab is duplicated to create each new weekly tab.
const templateTab = "TEMPLATE"

// Exporter writes unexported complete entries to the spreadsheet and
// marks them done.
type Exporter struct {
	svc           *sheets.Service
	spreadsheetID string
	repo          store.Repo
	log           *zap.Logger
}

// NewExporter builds an Exporter, or returns nil when no sheet is
// configured (the bot then runs without spreadsheet sync).
func NewExporter(ctx context.Context, sheetURL, credsFile string, repo store.Repo, log *zap.Logger) (*Exporter, error) {
	if !strings.HasPrefix(sheetURL, "https://docs.google.com") {
		return nil, nil
	}
	id, err := spreadsheetIDFromURL(sheetURL)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Exporter{svc: svc, spreadsheetID: id, repo: repo, log: log}, nil
}

// spreadsheetIDFromURL extracts the document id from a
// docs.google.com/spreadsheets/d/<id>/... URL.
func spreadsheetIDFromURL(u string) (string, error) {
	const marker = "/spreadsheets/d/"
	i := strings.Index(u, marker)
	if i < 0 {
		return "", fmt.Errorf("not a spreadsheet URL: %q", u)
	}
	rest := u[i+len(marker):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	if rest == "" {
		return "", fmt.Errorf("not a spreadsheet URL: %q", u)
	}
	return rest, nil
}

// tabNameFor names the weekly tab holding a date, Monday through Friday
// in the sheet's established DD-MM-YY convention.
func tabNameFor(date time.Time) string {
	monday := date.AddDate(0, 0, -mondayOffset(date))
	friday := monday.AddDate(0, 0, 4)
	return shortDate(monday) + " => " + shortDate(friday)
}

// mondayOffset is days since Monday (Sunday counts as 6).
func mondayOffset(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

func shortDate(d time.Time) string {
	return d.Format("02-01-06")
}

// cellRange addresses the four cells of one half-day: a user's week
// starts at their top row, each weekday is one row down, mornings live
// in C..F and afternoons in G..J.
func cellRange(tab string, topRow int, date time.Time, half domain.Half) string {
	row := topRow + mondayOffset(date)
	if half == domain.Morning {
		return fmt.Sprintf("'%s'!C%d:F%d", tab, row, row)
	}
	return fmt.Sprintf("'%s'!G%d:J%d", tab, row, row)
}

// ExportAll writes every unexported complete entry, oldest first,
// creating weekly tabs from the template as needed.
func (e *Exporter) ExportAll(ctx context.Context) error {
	rows, err := e.repo.UnexportedRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tabs, templateID, err := e.loadTabs(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		tab := tabNameFor(row.Date)
		if !tabs[tab] {
			if err := e.createTab(ctx, tab, templateID, len(tabs)); err != nil {
				return fmt.Errorf("create tab %q: %w", tab, err)
			}
			tabs[tab] = true
		}

		values := &sheets.ValueRange{Values: [][]interface{}{
			{row.Description, row.WorkTypeValue, row.ProgramValue, ""},
		}}
		_, err := e.svc.Spreadsheets.Values.
			Update(e.spreadsheetID, cellRange(tab, row.UserTopRow, row.Date, row.Half), values).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("write entry %d: %w", row.EntryID, err)
		}

		if err := e.repo.MarkExported(ctx, row.EntryID); err != nil {
			return err
		}
		metrics.EntriesExported.Inc()
	}

	e.log.Info("spreadsheet export done", zap.Int("entries", len(rows)))
	return nil
}

// loadTabs fetches existing tab titles and the template's sheet id.
func (e *Exporter) loadTabs(ctx context.Context) (map[string]bool, int64, error) {
	doc, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	tabs := make(map[string]bool, len(doc.Sheets))
	templateID := int64(-1)
	for _, s := range doc.Sheets {
		tabs[s.Properties.Title] = true
		if s.Properties.Title == templateTab {
			templateID = s.Properties.SheetId
		}
	}
	if templateID < 0 {
		return nil, 0, fmt.Errorf("spreadsheet has no %q tab", templateTab)
	}
	return tabs, templateID, nil
}

func (e *Exporter) createTab(ctx context.Context, name string, templateID int64, position int) error {
	_, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DuplicateSheet: &sheets.DuplicateSheetRequest{
				SourceSheetId:    templateID,
				NewSheetName:     name,
				InsertSheetIndex: int64(position),
			},
		}},
	}).Context(ctx).Do()
	return err
}
