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

// Package web serves the HTML pages and the JSON API.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"Unbewohnte/BiasLens/internal/analysis"
	"Unbewohnte/BiasLens/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Service is the part of the analysis service the web layer needs.
type Service interface {
	Analyze(ctx context.Context, req service.Request) (*analysis.Result, error)
	ListHistory(limit int, sentimentFilter string) ([]analysis.Record, error)
	GetByID(id int64) (*analysis.Record, error)
}

type Server struct {
	svc       Service
	templates *template.Template
	logsFile  string
	port      uint
}

func NewServer(svc Service, port uint, logsFile string) (*Server, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("could not parse templates: %w", err)
	}

	return &Server{
		svc:       svc,
		templates: templates,
		logsFile:  logsFile,
		port:      port,
	}, nil
}

// RenderMarkdown converts Markdown to HTML
func RenderMarkdown(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.DefinitionList),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// summaryHTML renders a summary for display, falling back to plain text
// with line breaks when Markdown conversion fails.
func summaryHTML(summary string) template.HTML {
	rendered, err := RenderMarkdown(summary)
	if err != nil {
		rendered = strings.ReplaceAll(template.HTMLEscapeString(summary), "\n", "<br>")
	}
	return template.HTML(rendered)
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/", s.handleAnalyzeForm).Methods("POST")
	r.HandleFunc("/history", s.handleHistory).Methods("GET")
	r.HandleFunc("/analysis/{id:[0-9]+}", s.handleAnalysisPage).Methods("GET")

	r.HandleFunc("/api/analyze", s.handleAPIAnalyze).Methods("POST")
	r.HandleFunc("/api/history", s.handleAPIHistory).Methods("GET")

	r.HandleFunc("/download/xlsx", s.handleDownloadXLSX).Methods("GET")
	r.HandleFunc("/download/logs", s.handleDownloadLogs).Methods("GET")

	r.Use(requestLogger)

	return r
}

// HTTPServer wraps the router in an http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
}

// requestLogger tags every request with a short id so concurrent analysis
// runs can be told apart in the logs.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("[%s] %s %s (%v)", requestID, r.Method, r.URL.Path, time.Since(start))
	})
}
