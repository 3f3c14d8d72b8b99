/*
   BiasLens - news summarizer and bias detector
   Copyright (C) 2026  Unbewohnte (Kasyanov Nikolay Alexeevich)

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package spreadsheet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"Unbewohnte/BiasLens/internal/analysis"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Config struct {
	CredentialsJSON []byte `json:"credentials"`
	SpreadsheetID   string `json:"spreadsheet_id"`
	SheetName       string `json:"sheet_name"`
}

func NewConfig(credentialsJSON []byte,
	spreadsheetID string,
	sheetName string,
) Config {
	return Config{
		CredentialsJSON: credentialsJSON,
		SpreadsheetID:   spreadsheetID,
		SheetName:       sheetName,
	}
}

type GoogleSheetsClient struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	maxRetries    int
}

func NewGoogleSheetsClient(ctx context.Context, conf Config) (*GoogleSheetsClient, error) {
	// Service account authentication
	config, err := google.JWTConfigFromJSON(
		conf.CredentialsJSON,
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create JWT config: %w", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("could not create Google Sheets service: %w", err)
	}

	return &GoogleSheetsClient{
		service:       srv,
		spreadsheetID: conf.SpreadsheetID,
		sheetName:     conf.SheetName,
		maxRetries:    3,
	}, nil
}

func recordRow(rec *analysis.Record) []interface{} {
	createdAt := rec.CreatedAt
	if t, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
		createdAt = t.Format("2006-01-02 15:04")
	}

	return []interface{}{
		createdAt,
		rec.SourceType,
		rec.SourceInput,
		rec.Summary,
		rec.SentimentLabel,
		rec.SentimentScore,
		strconv.FormatInt(rec.BiasScore, 10),
		rec.BiasLabel,
	}
}

func (gsc *GoogleSheetsClient) appendRecord(rec *analysis.Record) error {
	row := &sheets.ValueRange{
		Values: [][]interface{}{recordRow(rec)},
	}

	// Find the next empty row
	rangeData := gsc.sheetName + "!A:A"
	resp, err := gsc.service.Spreadsheets.Values.Get(gsc.spreadsheetID, rangeData).Do()
	if err != nil {
		return fmt.Errorf("could not read sheet: %w", err)
	}

	nextRow := len(resp.Values) + 1
	insertRange := fmt.Sprintf("%s!A%d:H%d", gsc.sheetName, nextRow, nextRow)

	_, err = gsc.service.Spreadsheets.Values.Append(
		gsc.spreadsheetID,
		insertRange,
		row,
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		return fmt.Errorf("could not append row: %w", err)
	}

	return nil
}

// PublishAnalysis appends one finished analysis to the configured sheet,
// retrying with linear backoff. The record is already durable locally, so
// the caller treats a returned error as a warning.
func (gsc *GoogleSheetsClient) PublishAnalysis(rec *analysis.Record) error {
	var lastErr error
	for i := 0; i < gsc.maxRetries; i++ {
		if err := gsc.appendRecord(rec); err == nil {
			return nil
		} else {
			lastErr = err
			time.Sleep(time.Second * time.Duration(i+1))
		}
	}
	return lastErr
}
