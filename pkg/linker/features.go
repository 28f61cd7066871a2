package linker

import (
	"math"

	"github.com/agext/levenshtein"

	"github.com/askiada/go-linker/pkg/catalog"
)

// FeatureNames lists the comparison features, in extraction order.
var FeatureNames = []string{
	"url_exact",
	"url_tokens_cosine",
	"name_levenshtein",
	"description_cosine",
}

// ExtractFeatures compares a Wikidata sample with a catalog sample and
// returns one feature vector. Missing inputs on either side yield the
// missing-value filler for that feature.
func ExtractFeatures(wd, target Sample) []float64 {
	return []float64{
		urlExactMatch(wd.URLs, target.URLs),
		cosineSimilarity(wd.URLTokens, target.URLTokens),
		nameSimilarity(wd.Names, target.Names),
		cosineSimilarity(wd.DescriptionTokens, target.DescriptionTokens),
	}
}

// urlExactMatch averages agreement over the URL cross-product.
func urlExactMatch(left, right []string) float64 {
	if len(left) == 0 || len(right) == 0 {
		return catalog.FeatureMissingValue
	}

	agreed := 0.0
	for _, l := range left {
		for _, r := range right {
			if l == r {
				agreed++
			}
		}
	}

	return agreed / float64(len(left)*len(right))
}

// nameSimilarity averages the Levenshtein similarity, 1 - distance over
// the longer length, over the name cross-product.
func nameSimilarity(left, right []string) float64 {
	if len(left) == 0 || len(right) == 0 {
		return catalog.FeatureMissingValue
	}

	sum := 0.0
	for _, l := range left {
		for _, r := range right {
			sum += levenshteinSimilarity(l, r)
		}
	}

	return sum / float64(len(left)*len(right))
}

func levenshteinSimilarity(left, right string) float64 {
	if left == "" && right == "" {
		return 0
	}

	leftRunes := []rune(left)
	rightRunes := []rune(right)
	maxLen := len(leftRunes)
	if len(rightRunes) > maxLen {
		maxLen = len(rightRunes)
	}

	distance := levenshtein.Distance(left, right, nil)

	return 1 - float64(distance)/float64(maxLen)
}

// cosineSimilarity compares two token bags as count vectors.
func cosineSimilarity(left, right []string) float64 {
	if len(left) == 0 || len(right) == 0 {
		return catalog.FeatureMissingValue
	}

	leftCounts := tokenCounts(left)
	rightCounts := tokenCounts(right)

	dot := 0.0
	for token, count := range leftCounts {
		dot += float64(count * rightCounts[token])
	}
	if dot == 0 {
		return 0
	}

	return dot / (norm(leftCounts) * norm(rightCounts))
}

func tokenCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}

	return counts
}

func norm(counts map[string]int) float64 {
	sum := 0.0
	for _, count := range counts {
		sum += float64(count * count)
	}

	return math.Sqrt(sum)
}
