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

// Package fetch pulls article text out of a URL. Extraction is a fallback
// chain: trafilatura first, then readability, then a manual goquery pass for
// pages neither of them can handle.
package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
)

type Fetcher struct {
	MaxContentSize uint
	Debug          bool
}

func New(maxContentSize uint, debug bool) *Fetcher {
	return &Fetcher{
		MaxContentSize: maxContentSize,
		Debug:          debug,
	}
}

// ArticleText downloads the page and extracts the readable article body.
func (f *Fetcher) ArticleText(ctx context.Context, articleURL string) (string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("cookie jar: %w", err)
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
		Jar:     jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			req.Header = via[0].Header.Clone()
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	setAdvancedHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip reader: %w", err)
		}
		defer reader.(*gzip.Reader).Close()
	case "deflate":
		reader = flate.NewReader(resp.Body)
		defer reader.(io.ReadCloser).Close()
	default:
		reader = resp.Body
	}

	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "text/plain") {
		if !utf8.Valid(bodyBytes) {
			return "", fmt.Errorf("binary response, not an article page")
		}
	}

	if isProtectedPage(bodyBytes) {
		return "", fmt.Errorf("page is protected (CloudFlare or similar)")
	}

	parsedURL, err := url.Parse(articleURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	content, err := f.extract(bodyBytes, parsedURL)
	if err != nil {
		return "", err
	}

	content = cleanText(content)
	if f.MaxContentSize > 0 {
		content = capBytes(content, f.MaxContentSize)
	}

	return content, nil
}

func (f *Fetcher) extract(bodyBytes []byte, pageURL *url.URL) (string, error) {
	result, err := trafilatura.Extract(bytes.NewReader(bodyBytes), trafilatura.Options{
		OriginalURL: pageURL,
	})
	if err == nil && result != nil && len(result.ContentText) > 100 {
		if f.Debug {
			log.Printf("fetch: trafilatura extracted %d chars from %s", len(result.ContentText), pageURL)
		}
		return result.ContentText, nil
	}

	article, err := readability.FromReader(bytes.NewReader(bodyBytes), pageURL)
	if err == nil && len(article.TextContent) > 100 {
		if f.Debug {
			log.Printf("fetch: readability extracted %d chars from %s", len(article.TextContent), pageURL)
		}
		return article.TextContent, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return f.extractCustomContent(doc)
}

func (f *Fetcher) extractCustomContent(doc *goquery.Document) (string, error) {
	if content, ok := f.extractStructuredContent(doc); ok {
		return content, nil
	}

	return f.extractFallbackContent(doc)
}

func (f *Fetcher) extractStructuredContent(doc *goquery.Document) (string, bool) {
	articleSelection := doc.Find("article, main, .article, .post, .content")
	if articleSelection.Length() == 0 {
		return "", false
	}

	content := strings.TrimSpace(articleSelection.Text())
	content = strings.Join(strings.Fields(content), " ")

	if len(content) < 100 {
		return "", false
	}

	return content, true
}

func (f *Fetcher) extractFallbackContent(doc *goquery.Document) (string, error) {
	doc.Find("script, style, noscript, iframe, nav, footer").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	mainContent := ""
	doc.Find("p, div, article").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); len(text) > len(mainContent) {
			mainContent = text
		}
	})

	if len(mainContent) < 500 {
		mainContent = strings.TrimSpace(doc.Find("body").Text())
	}

	mainContent = strings.Join(strings.Fields(mainContent), " ")
	if len(mainContent) < 100 {
		if f.Debug {
			log.Printf("fetch: not enough text: %s", mainContent)
		}
		return "", fmt.Errorf("not enough article text on the page")
	}

	return mainContent, nil
}

func setAdvancedHeaders(req *http.Request) {
	headers := map[string]string{
		"User-Agent":                randomUserAgent(),
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.8,ru-RU;q=0.5,ru;q=0.3",
		"Accept-Encoding":           "gzip, deflate",
		"Connection":                "keep-alive",
		"Referer":                   "https://www.google.com/",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

func isProtectedPage(body []byte) bool {
	bodyStr := string(body)
	return strings.Contains(bodyStr, "Cloudflare") ||
		strings.Contains(bodyStr, "DDoS protection") ||
		strings.Contains(bodyStr, "Checking your browser") ||
		len(bodyStr) < 100 && strings.Contains(bodyStr, "<html")
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Safari/605.1.15",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 13; SM-S901B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

var (
	spaceRuns     = regexp.MustCompile(`[\s\p{Zs}]+`)
	punctSpacing  = regexp.MustCompile(`\s+([.,!?;:)]+)`)
	openBrackets  = regexp.MustCompile(`([([{])\s+`)
	separatorRuns = regexp.MustCompile(`[=+*_\-~]{3,}`)
	symbolRuns    = regexp.MustCompile(`[\p{So}\p{Sk}]+`)
)

// cleanText normalizes extracted article text: control characters, exotic
// whitespace and decoration sequences go away, punctuation spacing and
// typographic quotes are normalized.
func cleanText(content string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) || unicode.IsMark(r) {
			return -1
		}
		return r
	}, content)

	cleaned = spaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = punctSpacing.ReplaceAllString(cleaned, "$1")
	cleaned = openBrackets.ReplaceAllString(cleaned, "$1")
	cleaned = separatorRuns.ReplaceAllString(cleaned, " ")
	cleaned = symbolRuns.ReplaceAllString(cleaned, " ")

	cleaned = strings.ReplaceAll(cleaned, "«", "\"")
	cleaned = strings.ReplaceAll(cleaned, "»", "\"")
	cleaned = strings.ReplaceAll(cleaned, "“", "\"")
	cleaned = strings.ReplaceAll(cleaned, "”", "\"")

	cleaned = spaceRuns.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

// capBytes limits content to max bytes without splitting a multi-byte rune,
// backing off to the nearest rune boundary.
func capBytes(content string, max uint) string {
	if uint(len(content)) <= max {
		return content
	}

	cut := int(max)
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}

	return content[:cut]
}
