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

// Package bias derives an explainable bias score from a sentiment
// classification and the length of the analyzed text. It is a heuristic,
// not a model: pronounced sentiment in the condensed summary is read as a
// sign of slanted framing.
package bias

import (
	"math"
	"strings"
)

// Compute maps a sentiment label, its confidence in [0,1] and the article
// text length to a bias score in [0,100] with a human-readable explanation.
//
// The short-text damping is applied before the long-text boost; the order
// matters because both mutate the same running value.
func Compute(sentimentLabel string, sentimentScore float64, textLength int) (int64, string) {
	label := strings.ToLower(sentimentLabel)

	var base float64
	var biasLabel string
	switch {
	case strings.Contains(label, "positive"):
		base = 70
		biasLabel = "likely positively biased (pro)"
	case strings.Contains(label, "negative"):
		base = 70
		biasLabel = "likely negatively biased (anti)"
	default:
		base = 20
		biasLabel = "relatively neutral/unbiased"
	}

	// Confidence above 0.5 pushes up to +30, below 0.5 pulls down to -30.
	score := base + (sentimentScore-0.5)*60

	// Short inputs give the classifier little signal.
	if textLength < 500 {
		score *= 0.7
		biasLabel += " – short text (low confidence)"
	}

	// Strong sentiment sustained over a long text is a stronger signal.
	if textLength > 3000 && sentimentScore > 0.7 {
		score += 10
	}

	score = math.Min(100, math.Max(0, score))

	return int64(score), biasLabel
}
