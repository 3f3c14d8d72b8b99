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

package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"Unbewohnte/BiasLens/internal/analysis"
	"Unbewohnte/BiasLens/internal/service"
	"Unbewohnte/BiasLens/internal/spreadsheet"

	"github.com/gorilla/mux"
)

type indexPage struct {
	Result      *analysis.Result
	SummaryHTML template.HTML
	Error       string
	InputType   string
	URL         string
	RawText     string
}

type historyPage struct {
	Records   []analysis.Record
	Sentiment string
}

type analysisPage struct {
	Record      *analysis.Record
	SummaryHTML template.HTML
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "index.html", &indexPage{InputType: analysis.SourceURL})
}

// requestFromForm maps the submitted form onto an analysis request.
func requestFromForm(r *http.Request) service.Request {
	inputType := r.FormValue("input_type")
	if inputType == "" {
		inputType = analysis.SourceURL
	}

	req := service.Request{SourceType: inputType}
	switch inputType {
	case analysis.SourceText:
		req.SourceInput = r.FormValue("raw_text")
	default:
		req.SourceInput = r.FormValue("url")
	}

	return req
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	req := requestFromForm(r)

	page := &indexPage{
		InputType: req.SourceType,
		URL:       r.FormValue("url"),
		RawText:   r.FormValue("raw_text"),
	}

	result, err := s.svc.Analyze(r.Context(), req)
	if err != nil {
		page.Error = userMessage(err)
		s.renderPage(w, "index.html", page)
		return
	}

	page.Result = result
	page.SummaryHTML = summaryHTML(result.Summary)
	s.renderPage(w, "index.html", page)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sentiment := r.URL.Query().Get("sentiment")

	records, err := s.svc.ListHistory(service.HistoryWindow, sentiment)
	if err != nil {
		log.Printf("history: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, "history.html", &historyPage{
		Records:   records,
		Sentiment: sentiment,
	})
}

func (s *Server) handleAnalysisPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	rec, err := s.svc.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("analysis %d: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, "analysis.html", &analysisPage{
		Record:      rec,
		SummaryHTML: summaryHTML(rec.Summary),
	})
}

type apiAnalyzeRequest struct {
	InputType string `json:"input_type"`
	URL       string `json:"url"`
	RawText   string `json:"raw_text"`
}

type apiResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Items   interface{} `json:"items,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body *apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// userMessage keeps internal detail out of what the client sees.
func userMessage(err error) string {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}

	var uErr *service.UpstreamError
	if errors.As(err, &uErr) {
		return "could not " + uErr.Op + ", try again later"
	}

	return "internal error"
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	var req apiAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &apiResponse{
			Status:  "error",
			Message: "malformed JSON body",
		})
		return
	}

	inputType := strings.TrimSpace(req.InputType)
	if inputType == "" {
		inputType = analysis.SourceURL
	}

	svcReq := service.Request{SourceType: inputType}
	switch inputType {
	case analysis.SourceText:
		svcReq.SourceInput = req.RawText
	default:
		svcReq.SourceInput = req.URL
	}

	result, err := s.svc.Analyze(r.Context(), svcReq)
	if err != nil {
		status := http.StatusInternalServerError

		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			status = http.StatusBadRequest
		} else {
			log.Printf("analyze: %v", err)
		}

		writeJSON(w, status, &apiResponse{
			Status:  "error",
			Message: userMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, &apiResponse{
		Status: "ok",
		Result: result,
	})
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, &apiResponse{
				Status:  "error",
				Message: "limit must be a positive integer",
			})
			return
		}
		if parsed > service.HistoryWindow {
			parsed = service.HistoryWindow
		}
		limit = parsed
	}

	records, err := s.svc.ListHistory(limit, r.URL.Query().Get("sentiment"))
	if err != nil {
		log.Printf("api history: %v", err)
		writeJSON(w, http.StatusInternalServerError, &apiResponse{
			Status:  "error",
			Message: "internal error",
		})
		return
	}

	if records == nil {
		records = []analysis.Record{}
	}

	writeJSON(w, http.StatusOK, &apiResponse{
		Status: "ok",
		Items:  records,
	})
}

func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListHistory(service.HistoryWindow, "")
	if err != nil {
		log.Printf("xlsx export: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	buf, err := spreadsheet.HistoryWorkbook(records)
	if err != nil {
		log.Printf("xlsx export: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=BiasLens_Results.xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("xlsx export: %v", err)
	}
}

func (s *Server) handleDownloadLogs(w http.ResponseWriter, r *http.Request) {
	if s.logsFile == "" {
		http.Error(w, "Log file not configured", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(s.logsFile); os.IsNotExist(err) {
		http.Error(w, "Log file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=biaslens_logs.txt")
	w.Header().Set("Content-Type", "text/plain")

	http.ServeFile(w, r, s.logsFile)
}
