package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arsp/ranking-service/internal/domain"
)

func TestLexicalScoreTiers(t *testing.T) {
	journal := &domain.Journal{
		Name:        "Quantum Computing Review",
		Description: "Research on cryptography and security",
		Domain:      "physics",
	}

	// Name hit outranks the other tiers.
	assert.Equal(t, 8.0, LexicalScore([]string{"quantum"}, journal))
	assert.Equal(t, 5.0, LexicalScore([]string{"cryptography"}, journal))
	assert.Equal(t, 3.0, LexicalScore([]string{"physics"}, journal))
	assert.Equal(t, 0.0, LexicalScore([]string{"biology"}, journal))
}

func TestLexicalScoreHighestTierOnly(t *testing.T) {
	journal := &domain.Journal{
		Name:        "Quantum Letters",
		Description: "All things quantum",
		Domain:      "quantum physics",
	}

	// A keyword in every field scores the name tier once.
	assert.Equal(t, 8.0, LexicalScore([]string{"quantum"}, journal))
}

func TestLexicalScoreCap(t *testing.T) {
	journal := &domain.Journal{Name: "alpha beta gamma delta epsilon"}
	keywords := []string{"alpha", "beta", "gamma", "delta", "epsilon"}

	// Five name hits would be 40 uncapped.
	assert.Equal(t, 30.0, LexicalScore(keywords, journal))
}

func TestQualityBoost(t *testing.T) {
	assert.Equal(t, 0.0, QualityBoost(0))
	assert.Equal(t, 0.0, QualityBoost(-1))
	assert.InDelta(t, math.Log1p(3)*8, QualityBoost(3), 1e-9)

	// High impact factors saturate at 20.
	assert.Equal(t, 20.0, QualityBoost(100))
}

func TestQualityBoostMonotonic(t *testing.T) {
	prev := 0.0
	for _, impact := range []float64{0.5, 1, 2, 5, 10, 30} {
		boost := QualityBoost(impact)
		assert.Greater(t, boost, prev)
		assert.LessOrEqual(t, boost, 20.0)
		prev = boost
	}
}

func TestLexicalOnlyScoreScale(t *testing.T) {
	// Maximum lexical components rescale to exactly 100.
	assert.Equal(t, 100.0, lexicalOnlyScore(30, 20))
	assert.Equal(t, 32.0, lexicalOnlyScore(16, 0))
	assert.Equal(t, 0.0, lexicalOnlyScore(0, 0))
}

func TestKeywordOverlap(t *testing.T) {
	assert.Equal(t, 1.0, keywordOverlap([]string{"a", "b"}, []string{"b", "a", "c"}))
	assert.Equal(t, 0.5, keywordOverlap([]string{"a", "b"}, []string{"a"}))
	assert.Equal(t, 0.0, keywordOverlap([]string{"a"}, []string{"b"}))
	assert.Equal(t, 0.0, keywordOverlap(nil, []string{"a"}))
	assert.Equal(t, 0.0, keywordOverlap([]string{"a"}, nil))
}
