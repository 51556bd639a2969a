package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/okhrimenko/kasabot/internal/common"
	"github.com/okhrimenko/kasabot/internal/model"
)

// Appender appends confirmed expense records to a Google Sheet.
type Appender struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewAppender creates a Google Sheets appender.
func NewAppender(ctx context.Context, config Config, logger *slog.Logger) (*Appender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Appender{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Append writes one row with Date, Amount, Category, Note columns. Any
// failure is logged and returned wrapped in ErrPersistenceFailed so the
// interactive flow reports it instead of crashing.
func (a *Appender) Append(ctx context.Context, record model.Record) error {
	row := []any{
		record.Date.Format("2006-01-02"),
		record.Amount,
		string(record.Category),
		record.Note,
	}

	valueRange := &sheets.ValueRange{
		Values: [][]any{row},
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  a.config.RetryAttempts,
		InitialDelay: a.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err := common.WithRetry(ctx, func() error {
		_, appendErr := a.service.Spreadsheets.Values.
			Append(a.config.SpreadsheetID, a.config.SheetName+"!A:D", valueRange).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return appendErr
	}, retryOpts)

	if err != nil {
		a.logger.Error("failed to append expense row",
			"spreadsheet_id", a.config.SpreadsheetID,
			"error", err)
		return fmt.Errorf("%w: %v", common.ErrPersistenceFailed, err)
	}

	a.logger.Info("expense row appended",
		"amount", record.Amount,
		"category", record.Category)

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		// Use service account authentication
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		// Use OAuth2 authentication
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
