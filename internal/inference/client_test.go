package inference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSentimentWellFormed(t *testing.T) {
	label, score := parseSentiment("NEGATIVE 0.87")
	assert.Equal(t, "NEGATIVE", label)
	assert.InDelta(t, 0.87, score, 1e-9)
}

func TestParseSentimentVerbose(t *testing.T) {
	label, score := parseSentiment("The tone of this text is clearly positive, I would estimate a confidence of 0.9.")
	assert.Equal(t, "POSITIVE", label)
	assert.InDelta(t, 0.9, score, 1e-9)
}

func TestParseSentimentPercent(t *testing.T) {
	label, score := parseSentiment("NEGATIVE, confidence 85")
	assert.Equal(t, "NEGATIVE", label)
	assert.InDelta(t, 0.85, score, 1e-9)
}

func TestParseSentimentNoNumberDefaultsToHalf(t *testing.T) {
	label, score := parseSentiment("neutral")
	assert.Equal(t, "NEUTRAL", label)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestParseSentimentSynonyms(t *testing.T) {
	label, _ := parseSentiment("The coverage is openly hostile towards the subject. 0.7")
	assert.Equal(t, "NEGATIVE", label)

	label, _ = parseSentiment("A very favorable portrayal. 0.8")
	assert.Equal(t, "POSITIVE", label)
}

func TestParseSentimentUnparsableIsNeutral(t *testing.T) {
	label, score := parseSentiment("I cannot determine that.")
	assert.Equal(t, "NEUTRAL", label)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestRemoveThinkBlock(t *testing.T) {
	in := "<think>\nreasoning about the article\n</think>\nPOSITIVE 0.92"
	assert.Equal(t, "POSITIVE 0.92", removeThinkBlock(in))
}

func TestSummaryPromptTemplating(t *testing.T) {
	prompts := DefaultPrompts()
	prompt := strings.ReplaceAll(prompts.Summary, TEMPLATE_TEXT, "article body")
	prompt = strings.ReplaceAll(prompt, TEMPLATE_MIN, "40")
	prompt = strings.ReplaceAll(prompt, TEMPLATE_MAX, "150")

	assert.Contains(t, prompt, "article body")
	assert.Contains(t, prompt, "at least 40")
	assert.Contains(t, prompt, "at most 150")
	assert.NotContains(t, prompt, "{{")
}
