package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	// usdPriceRegex matches "$" followed by digits/commas and an optional
	// decimal part. Only USD is recognized.
	usdPriceRegex = regexp.MustCompile(`\$\d[\d,]*(?:\.\d{1,2})?`)

	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// ExtractPriceText scans text for the first USD price pattern and returns it
// verbatim (e.g. "$1,299.99"), or nil when no price is present.
func ExtractPriceText(text string) *string {
	match := usdPriceRegex.FindString(text)
	if match == "" {
		return nil
	}
	return &match
}

// ParsePrice coerces a raw price string to a number. Strips "$" and ",",
// parses as floating point; unparseable values yield 0.
func ParsePrice(raw string) float64 {
	cleaned := strings.ReplaceAll(raw, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// NormalizeText lowercases text and strips everything but letters, digits and
// single spaces. Shared by cache keys, category names and hint matching.
func NormalizeText(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Tokenize splits text into normalized lowercase tokens, skipping one-character
// fragments.
func Tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(NormalizeText(s)) {
		if len(word) <= 1 {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// TokenSet returns the distinct tokens of text as a set.
func TokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokenize(s) {
		set[t] = true
	}
	return set
}

// trigrams returns the set of all length-3 substrings of a normalized string.
func trigrams(s string) map[string]bool {
	set := make(map[string]bool)
	runes := []rune(s)
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = true
	}
	return set
}

// TrigramJaccard computes intersection-over-union of the trigram sets of two
// strings, after normalization. Equal non-empty strings score 1; strings too
// short to produce a trigram score 0 unless equal.
func TrigramJaccard(a, b string) float64 {
	na := NormalizeText(a)
	nb := NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ta := trigrams(na)
	tb := trigrams(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for g := range ta {
		if tb[g] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// Round2 rounds to two decimal places, the precision used for currency amounts.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
