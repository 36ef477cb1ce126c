package sheets

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"scriptorium/internal/models"
)

// SheetsLog appends consent rows to a Google Sheets worksheet
type SheetsLog struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// New builds a Sheets client from a service-account credentials file
func New(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsLog, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsLog{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Append adds one consent row at the bottom of the worksheet
func (l *SheetsLog) Append(ctx context.Context, rec models.ConsentRecord) error {
	values := &sheets.ValueRange{
		Values: [][]interface{}{
			{rec.DisplayName, rec.Timestamp.UTC().Format(time.RFC3339)},
		},
	}

	_, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, l.sheetName+"!A:B", values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append consent row: %w", err)
	}
	return nil
}

// Close does nothing for the Sheets backend
func (l *SheetsLog) Close() error {
	return nil
}
