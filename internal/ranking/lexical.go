package ranking

import (
	"math"
	"strings"

	"github.com/arsp/ranking-service/internal/domain"
)

const (
	maxLexicalScore = 30.0
	maxQualityBoost = 20.0

	nameHitPoints        = 8.0
	descriptionHitPoints = 5.0
	domainHitPoints      = 3.0
)

// LexicalScore scores keyword overlap between the manuscript keywords and a
// journal's text fields. Each keyword is awarded points for the highest tier
// it appears in: name, then description, then subject domain. The sum is
// capped at 30.
func LexicalScore(keywords []string, journal *domain.Journal) float64 {
	name := strings.ToLower(journal.Name)
	description := strings.ToLower(journal.Description)
	subject := strings.ToLower(journal.Domain)

	var score float64
	for _, keyword := range keywords {
		switch {
		case strings.Contains(name, keyword):
			score += nameHitPoints
		case strings.Contains(description, keyword):
			score += descriptionHitPoints
		case strings.Contains(subject, keyword):
			score += domainHitPoints
		}
	}
	return math.Min(score, maxLexicalScore)
}

// QualityBoost converts a journal's impact factor to a bounded score
// component: min(20, log1p(impactFactor) * 8). The logarithm keeps
// high-impact journals from dominating the ranking outright.
func QualityBoost(impactFactor float64) float64 {
	if impactFactor <= 0 {
		return 0
	}
	return math.Min(maxQualityBoost, math.Log1p(impactFactor)*8)
}

// lexicalOnlyScore rescales the lexical components to the full 0 to 100
// range for use when the semantic component is unavailable. Lexical plus
// boost tops out at 50, so doubling restores the full scale.
func lexicalOnlyScore(lexical, boost float64) float64 {
	return math.Min(100, (lexical+boost)*2)
}

// keywordOverlap estimates text similarity from keyword-set overlap, used
// as a stand-in for cosine similarity when embeddings are unavailable.
// Returns the fraction of a's keywords found in b's, in [0, 1].
func keywordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(b))
	for _, k := range b {
		set[k] = struct{}{}
	}
	var hits int
	for _, k := range a {
		if _, ok := set[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(a))
}
