package service

import (
	"math"
	"strconv"
	"strings"
)

const numericTolerance = 1e-9

// AnswerValidator checks free-text answers against the expected one.
// Numeric answers (integers, decimals, fractions, mixed numbers) compare by value,
// other answers containing digits must match exactly up to spacing, and plain words
// by normalized text with a fuzzy fallback.
type AnswerValidator struct {
	threshold float64 // minimal similarity for text answers (0.0 - 1.0)
}

// NewAnswerValidator creates a validator with an 80% similarity threshold.
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{threshold: 0.8}
}

// Validate reports whether answer matches expected.
func (v *AnswerValidator) Validate(answer, expected string) bool {
	got := normalizeAnswer(answer)
	want := normalizeAnswer(expected)

	if got == "" {
		return false
	}
	if got == want {
		return true
	}

	if wantNum, ok := parseNumber(want); ok {
		gotNum, ok := parseNumber(got)
		return ok && math.Abs(gotNum-wantNum) < numericTolerance
	}

	// One wrong digit is a wrong answer, so expressions with digits never match fuzzily.
	if hasDigit(got) || hasDigit(want) {
		return stripSpaces(got) == stripSpaces(want)
	}

	return similarity(got, want) >= v.threshold
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	return strings.Join(strings.Fields(s), " ")
}

// parseNumber understands "3", "-0.25", "25%", "3/4" and "1 1/2".
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "%"))
	s = strings.ReplaceAll(strings.ReplaceAll(s, " /", "/"), "/ ", "/")
	if s == "" {
		return 0, false
	}

	if whole, frac, ok := strings.Cut(s, " "); ok {
		w, err := strconv.ParseFloat(whole, 64)
		if err != nil || strings.ContainsAny(whole, "./") {
			return 0, false
		}
		f, ok := parseFraction(frac)
		if !ok || f < 0 {
			return 0, false
		}
		if w < 0 {
			return w - f, true
		}
		return w + f, true
	}

	if strings.Contains(s, "/") {
		return parseFraction(s)
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseFraction(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 {
		return 0, false
	}

	return n / d, true
}

// similarity is 1 minus the Levenshtein distance relative to the longer string.
func similarity(s1, s2 string) float64 {
	maxLen := max(len([]rune(s1)), len([]rune(s2)))
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(levenshteinDistance(s1, s2))/float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
