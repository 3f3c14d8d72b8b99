package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEnglish(t *testing.T) {
	text := strings.Repeat("The government announced a new economic policy today, and analysts expect markets to react strongly over the coming weeks. ", 5)
	assert.Equal(t, "eng", Detect(text))
}

func TestDetectRussian(t *testing.T) {
	text := strings.Repeat("Правительство объявило сегодня о новой экономической политике, и аналитики ожидают сильной реакции рынков. ", 5)
	assert.Equal(t, "rus", Detect(text))
}

func TestDetectEmptyIsUnknown(t *testing.T) {
	assert.Equal(t, Unknown, Detect(""))
	assert.Equal(t, Unknown, Detect("   \n\t "))
}

func TestDetectGarbageIsUnknown(t *testing.T) {
	assert.Equal(t, Unknown, Detect("1234567890 !@#$%^&*()"))
}
