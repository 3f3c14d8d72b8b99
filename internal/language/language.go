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

package language

import (
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"
)

// Unknown is reported whenever detection cannot produce a reliable answer.
// Detection is informational only and never fails an analysis.
const Unknown = "unknown"

// sampleSize bounds how much text is fed to the detector. The beginning of
// an article is enough signal and keeps detection cheap.
const sampleSize = 1000

// minConfidence is deliberately below the detector's own reliability
// threshold of 0.5. Trigram confidence on real articles often lands in the
// 0.3..0.5 band even when the language is unambiguous; Unknown is reserved
// for genuinely undecidable input.
const minConfidence = 0.25

// Detect returns the ISO language code of the text or Unknown.
func Detect(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return Unknown
	}

	runes := []rune(sample)
	if len(runes) > sampleSize {
		sample = string(runes[:sampleSize])
	}

	info := whatlanggo.Detect(sample)
	if info.Lang == -1 || info.Confidence < minConfidence {
		return Unknown
	}

	code := whatlanggo.LangToString(info.Lang)
	if code == "" {
		return Unknown
	}

	return code
}
