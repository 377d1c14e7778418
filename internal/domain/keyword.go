package domain

import (
	"regexp"
	"sort"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// nonWordRegex matches any character that is not a letter, digit, or underscore.
var nonWordRegex = regexp.MustCompile(`[^\w\s]`)

// stopwords is the fixed set of common English words excluded from keyword
// extraction. Matching the upstream search APIs, extraction also drops words
// of three characters or fewer, so short stopwords are listed only for the
// sake of completeness.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "is": {}, "was": {},
	"are": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "should": {}, "could": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "i": {}, "you": {}, "he": {}, "she": {},
	"it": {}, "we": {}, "they": {}, "which": {}, "their": {}, "there": {},
	"where": {}, "when": {}, "what": {}, "into": {}, "also": {},
	"such": {}, "than": {}, "then": {}, "them": {}, "more": {}, "most": {},
	"other": {}, "some": {}, "only": {}, "over": {}, "both": {},
	"between": {}, "each": {}, "while": {}, "using": {}, "used": {},
	"based": {}, "about": {},
}

// NormalizeKeyword normalizes a keyword string by lowercasing, trimming, and
// collapsing internal whitespace to a single space.
func NormalizeKeyword(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// ExtractKeywords extracts up to k keywords from free text by frequency.
//
// The text is lowercased, punctuation is stripped, stopwords and words of
// three characters or fewer are dropped, and the remaining words are ranked
// by occurrence count. Ties break alphabetically so extraction is
// deterministic for a given input.
func ExtractKeywords(text string, k int) []string {
	if k <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := nonWordRegex.ReplaceAllString(strings.ToLower(text), " ")

	counts := make(map[string]int)
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > k {
		words = words[:k]
	}
	return words
}

// KeywordQuery joins the top n extracted keywords into a search query string.
// Returns the empty string when the text yields no keywords.
func KeywordQuery(text string, n int) string {
	return strings.Join(ExtractKeywords(text, n), " ")
}
