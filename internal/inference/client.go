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

package inference

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

const (
	TEMPLATE_TEXT = "{{TEXT}}"
	TEMPLATE_MIN  = "{{MIN}}"
	TEMPLATE_MAX  = "{{MAX}}"
)

type Prompts struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		Summary:   "Summarize the following news article in one paragraph of at least {{MIN}} and at most {{MAX}} words. Respond with the summary only, no preamble and no commentary.\n\nText:\n{{TEXT}}",
		Sentiment: "Classify the overall sentiment of the following text. Respond with exactly one line in the format:\nLABEL CONFIDENCE\nwhere LABEL is POSITIVE, NEGATIVE or NEUTRAL and CONFIDENCE is a number between 0 and 1.\n\nText:\n{{TEXT}}",
	}
}

type Client struct {
	ModelName      string
	Prompts        Prompts
	Client         *ollama.Client
	TimeoutSeconds uint
}

func NewClient(model string, prompts Prompts, timeoutSeconds uint) (*Client, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}

	return &Client{
		ModelName:      model,
		Prompts:        prompts,
		Client:         client,
		TimeoutSeconds: timeoutSeconds,
	}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ollama.ListModelResponse, error) {
	response, err := c.Client.List(ctx)
	if err != nil {
		return nil, err
	}

	return response.Models, nil
}

func (c *Client) query(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(
		ctx,
		time.Duration(c.TimeoutSeconds)*time.Second,
	)
	defer cancel()

	var response strings.Builder
	err := c.Client.Generate(ctx, &ollama.GenerateRequest{
		Model:  c.ModelName,
		Prompt: prompt,
		Options: map[string]interface{}{
			"temperature": 0.0, // no sampling, keep output reproducible
		},
	}, func(res ollama.GenerateResponse) error {
		response.WriteString(res.Response)
		return nil
	})

	if err != nil {
		return "", err
	}

	return removeThinkBlock(response.String()), nil
}

// Summarize condenses text into a short paragraph of minWords..maxWords
// words. An empty model response is an error.
func (c *Client) Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	prompt := strings.ReplaceAll(c.Prompts.Summary, TEMPLATE_TEXT, text)
	prompt = strings.ReplaceAll(prompt, TEMPLATE_MIN, strconv.Itoa(minWords))
	prompt = strings.ReplaceAll(prompt, TEMPLATE_MAX, strconv.Itoa(maxWords))

	summary, err := c.query(ctx, prompt)
	if err != nil {
		return "", err
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("empty summary returned")
	}

	return summary, nil
}

// ClassifySentiment labels text as POSITIVE, NEGATIVE or NEUTRAL with a
// confidence in [0,1].
func (c *Client) ClassifySentiment(ctx context.Context, text string) (string, float64, error) {
	prompt := strings.ReplaceAll(c.Prompts.Sentiment, TEMPLATE_TEXT, text)

	response, err := c.query(ctx, prompt)
	if err != nil {
		return "", 0, err
	}

	label, score := parseSentiment(response)
	return label, score, nil
}

// parseSentiment extracts a canonical label and a confidence from a model
// response. Models rarely follow the answer format to the letter, so the
// label comes from keyword matching and the confidence from the first
// number found; a missing confidence falls back to 0.5.
func parseSentiment(response string) (string, float64) {
	lowered := strings.ToLower(response)

	label := "NEUTRAL"
	if matchesAny(lowered, "positive", "favorable", "approving", "supportive") {
		label = "POSITIVE"
	} else if matchesAny(lowered, "negative", "critical", "hostile", "disapproving") {
		label = "NEGATIVE"
	}

	score := 0.5
	if match := numberPattern.FindString(response); match != "" {
		if parsed, err := strconv.ParseFloat(match, 64); err == nil {
			if parsed > 1 && parsed <= 100 {
				parsed /= 100 // model answered in percent
			}
			if parsed >= 0 && parsed <= 1 {
				score = parsed
			}
		}
	}

	return label, score
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

func matchesAny(text string, substrs ...string) bool {
	for _, substr := range substrs {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

func removeThinkBlock(input string) string {
	re := regexp.MustCompile(`(?s)<think>.*?</think>`)
	return strings.TrimSpace(re.ReplaceAllString(input, ""))
}
