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
	"bytes"
	"strconv"

	"Unbewohnte/BiasLens/internal/analysis"

	"github.com/tealeg/xlsx/v3"
)

const resultsSheetName = "Analyses"

var historyHeaders = []string{
	"ID", "Date", "Source type", "Source", "Summary",
	"Sentiment", "Sentiment score", "Bias score", "Bias label",
}

// HistoryWorkbook renders records into an XLSX workbook for download.
func HistoryWorkbook(records []analysis.Record) (*bytes.Buffer, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet(resultsSheetName)
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range historyHeaders {
		headerRow.AddCell().SetString(h)
	}

	for i := range records {
		rec := &records[i]
		row := sheet.AddRow()

		row.AddCell().SetString(strconv.FormatInt(rec.ID, 10))
		row.AddCell().SetString(rec.CreatedAt)
		row.AddCell().SetString(rec.SourceType)
		row.AddCell().SetString(rec.SourceInput)
		row.AddCell().SetString(rec.Summary)
		row.AddCell().SetString(rec.SentimentLabel)
		row.AddCell().SetFloat(rec.SentimentScore)
		row.AddCell().SetString(strconv.FormatInt(rec.BiasScore, 10))
		row.AddCell().SetString(rec.BiasLabel)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}

	return &buf, nil
}
