package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/punchclock/internal/common"
)

// backend is the subset of the Sheets API the writer uses.
type backend interface {
	// Tabs returns the sheet ids of an existing spreadsheet keyed by tab title.
	Tabs(ctx context.Context, spreadsheetID string) (map[string]int64, error)
	Create(ctx context.Context, title, timeZone string, tabs []string) (id, url string, err error)
	AddTab(ctx context.Context, spreadsheetID, title string) (int64, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error
}

// googleBackend talks to the real Sheets API.
type googleBackend struct {
	service *sheets.Service
}

func newGoogleBackend(ctx context.Context, config Config) (*googleBackend, error) {
	tokenSource, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return &googleBackend{service: srv}, nil
}

func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwtConfig.TokenSource(ctx), nil
	}

	oauthConfig := OAuth2Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenFile:    config.TokenFile,
	}.oauth2()

	token := &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}
	if config.RefreshToken == "" && config.TokenFile != "" {
		saved, err := LoadToken(config.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("no refresh token configured and token file unreadable (run 'punch auth sheets'): %w", err)
		}
		token = saved
	}
	return oauthConfig.TokenSource(ctx, token), nil
}

func (g *googleBackend) Tabs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	ss, err := g.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	tabs := make(map[string]int64, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		tabs[sh.Properties.Title] = sh.Properties.SheetId
	}
	return tabs, nil
}

func (g *googleBackend) Create(ctx context.Context, title, timeZone string, tabs []string) (string, string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    title,
			TimeZone: timeZone,
		},
	}
	for _, tab := range tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab},
		})
	}

	created, err := g.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", "", classify(err)
	}
	return created.SpreadsheetId, created.SpreadsheetUrl, nil
}

func (g *googleBackend) AddTab(ctx context.Context, spreadsheetID, title string) (int64, error) {
	resp, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, classify(err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("add sheet %s: empty reply", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (g *googleBackend) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return classify(err)
}

func (g *googleBackend) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return classify(err)
}

func (g *googleBackend) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	_, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return classify(err)
}

// classify marks client errors as permanent so the retry helper gives up on them.
// Rate limits and server errors stay retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return &common.RetryableError{Err: err, Retryable: false}
		}
	}
	return err
}
