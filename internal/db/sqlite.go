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

package db

import (
	"Unbewohnte/BiasLens/internal/analysis"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SourceInputLimit is how much of the original input (URL or raw text) is
// kept on the record.
const SourceInputLimit = 200

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	// Pragmas must use the driver's _pragma form; writers wait on the busy
	// timeout instead of failing with SQLITE_BUSY.
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.InitSchema(); err != nil {
		return nil, err
	}

	return db, nil
}

// InitSchema creates the analyses table when missing. Safe to call on every
// start; existing data is never touched.
func (db *DB) InitSchema() error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            created_at TEXT,
            source_type TEXT,
            source_input TEXT,
            summary TEXT,
            sentiment_label TEXT,
            sentiment_score REAL,
            bias_score INTEGER,
            bias_label TEXT
        );
        CREATE INDEX IF NOT EXISTS idx_analyses_sentiment ON analyses(sentiment_label);
    `)
	return err
}

// SaveAnalysis inserts a new record, assigning its id and creation timestamp
// (UTC, ISO-8601). The source input is truncated to SourceInputLimit
// characters before the write. Returns the assigned id.
func (db *DB) SaveAnalysis(rec *analysis.Record) (int64, error) {
	rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	rec.SourceInput = truncateRunes(rec.SourceInput, SourceInputLimit)

	res, err := db.Exec(`INSERT INTO analyses(
        created_at, source_type, source_input,
        summary, sentiment_label, sentiment_score,
        bias_score, bias_label
    ) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt,
		rec.SourceType,
		rec.SourceInput,
		rec.Summary,
		rec.SentimentLabel,
		rec.SentimentScore,
		rec.BiasScore,
		rec.BiasLabel,
	)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	rec.ID = id

	return id, nil
}

// GetRecent returns the limit most recently created records, newest first.
// A limit of 0 yields an empty slice.
func (db *DB) GetRecent(limit int) ([]analysis.Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("negative limit %d", limit)
	}

	rows, err := db.Query(`
        SELECT id, created_at, source_type, source_input,
               summary, sentiment_label, sentiment_score,
               bias_score, bias_label
        FROM analyses
        ORDER BY id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []analysis.Record
	for rows.Next() {
		var rec analysis.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&rec.SourceType,
			&rec.SourceInput,
			&rec.Summary,
			&rec.SentimentLabel,
			&rec.SentimentScore,
			&rec.BiasScore,
			&rec.BiasLabel,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetByID looks a record up by its id. Returns (nil, nil) when no record has
// that id; absence is not an error here.
func (db *DB) GetByID(id int64) (*analysis.Record, error) {
	var rec analysis.Record
	err := db.QueryRow(`
        SELECT id, created_at, source_type, source_input,
               summary, sentiment_label, sentiment_score,
               bias_score, bias_label
        FROM analyses
        WHERE id = ?`,
		id,
	).Scan(
		&rec.ID,
		&rec.CreatedAt,
		&rec.SourceType,
		&rec.SourceInput,
		&rec.Summary,
		&rec.SentimentLabel,
		&rec.SentimentScore,
		&rec.BiasScore,
		&rec.BiasLabel,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
