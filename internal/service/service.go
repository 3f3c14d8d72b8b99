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

// Package service orchestrates one article analysis: language detection,
// summarization, sentiment classification, bias scoring and persistence.
package service

import (
	"context"
	"log"
	"math"
	"strings"

	"Unbewohnte/BiasLens/internal/analysis"
	"Unbewohnte/BiasLens/internal/bias"
	"Unbewohnte/BiasLens/internal/language"
)

const (
	// MinTextLength is the hard floor below which summarization and
	// classification produce unreliable output.
	MinTextLength = 50

	// SummaryInputLimit bounds what is handed to the summarizer; its
	// context window is limited and oversized input makes it fail.
	SummaryInputLimit = 2000

	// LanguageSampleSize bounds what is handed to the language detector.
	LanguageSampleSize = 1000

	SummaryMinWords = 40
	SummaryMaxWords = 150

	// HistoryWindow is how many recent records the history view considers.
	HistoryWindow = 50
)

// Fetcher resolves a URL to article text.
type Fetcher interface {
	ArticleText(ctx context.Context, url string) (string, error)
}

// Summarizer condenses article text into a short paragraph.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error)
}

// Classifier labels text sentiment with a confidence in [0,1].
type Classifier interface {
	ClassifySentiment(ctx context.Context, text string) (string, float64, error)
}

// Store persists and retrieves analysis records.
type Store interface {
	SaveAnalysis(rec *analysis.Record) (int64, error)
	GetRecent(limit int) ([]analysis.Record, error)
	GetByID(id int64) (*analysis.Record, error)
}

// Publisher mirrors finished analyses to an external sink (Google Sheets).
// Publishing is best-effort: the record is already durable locally.
type Publisher interface {
	PublishAnalysis(rec *analysis.Record) error
}

// Deps wires the collaborators into the orchestrator. Store, Fetcher,
// Summarizer and Classifier are constructed once at process start and
// injected so tests can substitute fakes.
type Deps struct {
	Store          Store
	Fetcher        Fetcher
	Summarizer     Summarizer
	Classifier     Classifier
	DetectLanguage func(text string) string
	Publisher      Publisher
}

type Service struct {
	store          Store
	fetcher        Fetcher
	summarizer     Summarizer
	classifier     Classifier
	detectLanguage func(text string) string
	publisher      Publisher
}

func New(deps Deps) *Service {
	detect := deps.DetectLanguage
	if detect == nil {
		detect = language.Detect
	}

	return &Service{
		store:          deps.Store,
		fetcher:        deps.Fetcher,
		summarizer:     deps.Summarizer,
		classifier:     deps.Classifier,
		detectLanguage: detect,
		publisher:      deps.Publisher,
	}
}

// Request describes one analysis. FullText may be left empty for URL
// sources; the service then resolves it through the fetcher.
type Request struct {
	SourceType  string
	SourceInput string
	FullText    string
}

// Analyze runs the full pipeline and persists the outcome. It fails with
// *ValidationError for bad input, *UpstreamError when an external capability
// fails, and the raw storage error when the write fails; in every failure
// case nothing is persisted.
func (s *Service) Analyze(ctx context.Context, req Request) (*analysis.Result, error) {
	sourceInput := strings.TrimSpace(req.SourceInput)
	fullText := strings.TrimSpace(req.FullText)

	switch req.SourceType {
	case analysis.SourceURL:
		if sourceInput == "" {
			return nil, &ValidationError{Reason: "please provide a URL"}
		}
		if fullText == "" {
			fetched, err := s.fetcher.ArticleText(ctx, sourceInput)
			if err != nil {
				return nil, &UpstreamError{Op: "fetch article", Err: err}
			}
			fullText = strings.TrimSpace(fetched)
		}
	case analysis.SourceText:
		if fullText == "" {
			fullText = sourceInput
		}
		if fullText == "" {
			return nil, &ValidationError{Reason: "please provide article text"}
		}
	default:
		return nil, &ValidationError{Reason: "unknown source type: " + req.SourceType}
	}

	if len([]rune(fullText)) < MinTextLength {
		return nil, &ValidationError{Reason: "text too short"}
	}

	// Detection failures never abort the pipeline; the detector reports
	// "unknown" instead. The result is informational only.
	lang := s.detectLanguage(firstRunes(fullText, LanguageSampleSize))

	textLength := len([]rune(fullText))

	summaryInput := fullText
	if textLength > SummaryInputLimit {
		summaryInput = firstRunes(fullText, SummaryInputLimit)
	}

	summary, err := s.summarizer.Summarize(ctx, summaryInput, SummaryMinWords, SummaryMaxWords)
	if err != nil {
		return nil, &UpstreamError{Op: "summarize", Err: err}
	}

	// The classifier sees the condensed summary, not the full article:
	// the summary's sentiment better represents the article's framing.
	sentimentLabel, sentimentScore, err := s.classifier.ClassifySentiment(ctx, summary)
	if err != nil {
		return nil, &UpstreamError{Op: "classify sentiment", Err: err}
	}

	biasScore, biasLabel := bias.Compute(sentimentLabel, sentimentScore, textLength)

	rec := &analysis.Record{
		SourceType:     req.SourceType,
		SourceInput:    sourceInput,
		Summary:        summary,
		SentimentLabel: sentimentLabel,
		SentimentScore: sentimentScore,
		BiasScore:      biasScore,
		BiasLabel:      biasLabel,
	}

	id, err := s.store.SaveAnalysis(rec)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAnalysis(rec); err != nil {
			log.Printf("sheet push failed for analysis %d: %v", id, err)
		}
	}

	return &analysis.Result{
		FullText:       fullText,
		Summary:        summary,
		SentimentLabel: sentimentLabel,
		SentimentScore: math.Round(sentimentScore*1000) / 1000,
		BiasScore:      biasScore,
		BiasLabel:      biasLabel,
		SourceType:     req.SourceType,
		SourceInput:    sourceInput,
		Language:       lang,
		TextLength:     textLength,
		RecordID:       id,
	}, nil
}

// ListHistory returns up to limit most recent records, optionally keeping
// only those whose sentiment label contains sentimentFilter
// (case-insensitive). An empty result is valid.
func (s *Service) ListHistory(limit int, sentimentFilter string) ([]analysis.Record, error) {
	records, err := s.store.GetRecent(limit)
	if err != nil {
		return nil, err
	}

	sentimentFilter = strings.TrimSpace(sentimentFilter)
	if sentimentFilter == "" {
		return records, nil
	}

	needle := strings.ToLower(sentimentFilter)
	filtered := make([]analysis.Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.SentimentLabel), needle) {
			filtered = append(filtered, rec)
		}
	}

	return filtered, nil
}

// GetByID returns the record with the given id or ErrNotFound.
func (s *Service) GetByID(id int64) (*analysis.Record, error) {
	rec, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	return rec, nil
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
