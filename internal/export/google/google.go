// Package google exports monthly reports to a Google Sheets spreadsheet
// using service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/services"
)

// Client writes each monthly report to a sheet named after the month
// ("2025-06"), replacing whatever a previous export left there.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ services.Exporter = (*Client)(nil)

// Config carries the spreadsheet target and service-account credentials.
// With neither credential set the client falls back to application
// default credentials.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, goption.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// ExportMonthlyReport ensures the month's sheet exists, clears it and
// writes the report table from A1.
func (c *Client) ExportMonthlyReport(ctx context.Context, report *services.MonthlyReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	title := report.Month.String()
	if err := c.ensureSheet(ctx, title); err != nil {
		return err
	}
	clear := &gsheet.ClearValuesRequest{}
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1Range(title, "A:Z"), clear).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", title, err)
	}
	vr := &gsheet.ValueRange{Values: reportValues(report)}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1Range(title, "A1"), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", title, err)
	}
	return nil
}

// ensureSheet adds a sheet with the given title when the spreadsheet does
// not have one yet.
func (c *Client) ensureSheet(ctx context.Context, title string) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	slog.InfoContext(ctx, "Created report sheet", "sheet", title)
	return nil
}

// reportValues lays the report out as sheet rows: a header line, the
// plan-vs-actual table, then totals and the unpaid-bill summary.
func reportValues(report *services.MonthlyReport) [][]any {
	values := [][]any{
		{"Month", report.Month.String(), "Cutoff day", report.CutoffDay, "Generated", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{},
		{"Group", "Category", "Type", "Planned", "Actual", "Diff", "Status"},
	}
	for _, row := range report.Rows {
		values = append(values, []any{
			row.Group,
			row.Category,
			string(row.Type),
			row.Planned.StringFixed(2),
			row.Actual.StringFixed(2),
			row.Diff.StringFixed(2),
			row.Status,
		})
	}
	values = append(values,
		[]any{},
		[]any{"Planned income", report.Totals.PlannedIncome.StringFixed(2)},
		[]any{"Actual income", report.Totals.ActualIncome.StringFixed(2)},
		[]any{"Planned expenses", report.Totals.PlannedExpenses.StringFixed(2)},
		[]any{"Actual expenses", report.Totals.ActualExpenses.StringFixed(2)},
		[]any{"Net", report.Totals.Net.StringFixed(2)},
		[]any{"Unpaid bills", report.UnpaidBills.Count, report.UnpaidBills.Total.StringFixed(2)},
	)
	return values
}

// a1Range quotes the sheet title, which A1 notation requires for names
// with anything beyond letters and digits.
func a1Range(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", sheet, cells)
}
