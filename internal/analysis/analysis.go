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

package analysis

const (
	SourceURL  = "url"
	SourceText = "text"
)

// Record is one persisted analysis. Records are append-only: once written
// they are never updated or deleted.
type Record struct {
	ID             int64   `json:"id" db:"id"`
	CreatedAt      string  `json:"created_at" db:"created_at"` // UTC, ISO-8601
	SourceType     string  `json:"source_type" db:"source_type"`
	SourceInput    string  `json:"source_input" db:"source_input"` // first 200 chars of the original input
	Summary        string  `json:"summary" db:"summary"`
	SentimentLabel string  `json:"sentiment_label" db:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score" db:"sentiment_score"` // [0,1]
	BiasScore      int64   `json:"bias_score" db:"bias_score"`           // [0,100]
	BiasLabel      string  `json:"bias_label" db:"bias_label"`
}

// Result is what one analysis run returns to the caller. It carries the full
// article text and detection info on top of the persisted fields and lives
// only for the duration of the call.
type Result struct {
	FullText       string  `json:"full_text"`
	Summary        string  `json:"summary"`
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"` // rounded to 3 decimals
	BiasScore      int64   `json:"bias_score"`
	BiasLabel      string  `json:"bias_label"`
	SourceType     string  `json:"source_type"`
	SourceInput    string  `json:"source_input"`
	Language       string  `json:"language"` // ISO code or "unknown"
	TextLength     int     `json:"text_length"`
	RecordID       int64   `json:"record_id"`
}
