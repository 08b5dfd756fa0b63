package template

import (
	"math"
	"strings"
)

// SimilarityResult reports how well a candidate field set covers a
// template's recorded fields.
type SimilarityResult struct {
	Score          int      `json:"score"` // 0–100
	MatchingFields []string `json:"matchingFields"`
	MissingFields  []string `json:"missingFields"`
}

// FieldSetSimilarity scores sourceFields against templateFields by
// case-insensitive set membership: score = matching / total template
// fields * 100, rounded. Matching and missing fields keep the template's
// original casing.
func FieldSetSimilarity(sourceFields, templateFields []string) SimilarityResult {
	res := SimilarityResult{
		MatchingFields: []string{},
		MissingFields:  []string{},
	}
	if len(templateFields) == 0 {
		return res
	}

	sourceSet := make(map[string]bool, len(sourceFields))
	for _, f := range sourceFields {
		sourceSet[strings.ToLower(f)] = true
	}

	for _, f := range templateFields {
		if sourceSet[strings.ToLower(f)] {
			res.MatchingFields = append(res.MatchingFields, f)
		} else {
			res.MissingFields = append(res.MissingFields, f)
		}
	}

	res.Score = int(math.Round(float64(len(res.MatchingFields)) / float64(len(templateFields)) * 100))
	return res
}

// StringSimilarity returns a 0–1 similarity between two field names:
// 1 - editDistance/len(longer). Used only for single-field fuzzy
// matching, never for whole-template scoring.
func StringSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longer, shorter := a, b
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if len(longer) == 0 {
		return 1
	}
	return 1 - float64(editDistance(longer, shorter))/float64(len(longer))
}

// editDistance is plain Levenshtein over bytes with a two-row table.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
