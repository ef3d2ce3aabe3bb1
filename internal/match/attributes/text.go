// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package attributes

import (
	"math"
	"strings"
	"unicode"
)

// Tokenize splits s on whitespace and commas and lower-cases each token.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// TermFrequencies counts token occurrences in s.
func TermFrequencies(s string) map[string]float64 {
	tokens := Tokenize(s)
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

// TextDistance returns 1 minus the cosine similarity of the term-frequency
// vectors of a and b. Identical strings are at distance 0. A string with no
// tokens is at distance 1 from anything else.
func TextDistance(a, b string) float64 {
	if a == b {
		return 0
	}

	va := TermFrequencies(a)
	vb := TermFrequencies(b)

	var dot, normA, normB float64
	for tok, fa := range va {
		normA += fa * fa
		if fb, ok := vb[tok]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range vb {
		normB += fb * fb
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp01(1 - cos)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
