// Package chunker splits long documents into bounded, sentence-aligned chunks
// for pairwise semantic comparison.
//
// Chunks are exact slices of the input text with byte offsets, so a flagged
// section can be located in the original document without searching. Sentence
// boundaries are terminal punctuation (., !, ?) followed by whitespace; the
// whitespace between chunks is the only content not covered by a chunk.
package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxChars is the default upper bound on chunk size. It tracks the
	// practical input limit of hosted sentence-embedding models.
	DefaultMaxChars = 500

	// DefaultMinChars is the length below which a fragment is too short to be
	// a meaningful comparison unit.
	DefaultMinChars = 50
)

// sentenceEndRegex matches a sentence terminator followed by whitespace.
// The terminator stays with the preceding sentence; the whitespace is the
// separator dropped between chunks.
var sentenceEndRegex = regexp.MustCompile(`[.!?]+\s+`)

// TextChunk is a contiguous piece of a source document.
type TextChunk struct {
	// Text is the chunk content, an exact substring of the input.
	Text string

	// StartIndex and EndIndex are byte offsets into the input such that
	// input[StartIndex:EndIndex] == Text.
	StartIndex int
	EndIndex   int
}

// Len returns the chunk length in bytes.
func (c TextChunk) Len() int {
	return c.EndIndex - c.StartIndex
}

// span is a half-open byte range of one sentence within the input.
type span struct {
	start, end int
}

// Chunk splits text into sentence-aligned chunks of at most maxChars bytes.
//
// Sentences are accumulated greedily: when adding the next sentence would
// exceed maxChars, the buffer is emitted and a new chunk starts with that
// sentence. A single sentence longer than maxChars is emitted whole as its
// own oversized chunk; content is never dropped or truncated. A buffer
// shorter than minChars is never emitted on its own: mid-stream it is folded
// into the previous chunk, or carried forward into the next sentence when no
// previous chunk exists, and at end-of-input it is folded into its
// predecessor. Every emitted chunk is therefore at least minChars long
// unless it is the sole chunk of the input. Folds can push a chunk past
// maxChars by less than minChars plus a separator.
//
// Passing zero for maxChars or minChars selects the package defaults.
func Chunk(text string, maxChars, minChars int) []TextChunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if minChars <= 0 {
		minChars = DefaultMinChars
	}

	spans := sentenceSpans(text)
	if len(spans) == 0 {
		return nil
	}

	var chunks []TextChunk
	current := spans[0]

	emit := func(s span) {
		chunks = append(chunks, TextChunk{
			Text:       text[s.start:s.end],
			StartIndex: s.start,
			EndIndex:   s.end,
		})
	}

	// foldBack extends the last emitted chunk to absorb a below-min buffer.
	foldBack := func(s span) {
		last := &chunks[len(chunks)-1]
		last.EndIndex = s.end
		last.Text = text[last.StartIndex:last.EndIndex]
	}

	for _, next := range spans[1:] {
		// Merging keeps the inter-sentence separator, so the combined length
		// is measured from the current chunk start to the next sentence end.
		if next.end-current.start > maxChars {
			if current.end-current.start < minChars {
				// Too short to stand alone. Fold it backward when a chunk
				// exists to take it; otherwise absorb the next sentence and
				// accept the overflow.
				if len(chunks) > 0 {
					foldBack(current)
					current = next
				} else {
					current.end = next.end
				}
				continue
			}
			emit(current)
			current = next
			continue
		}
		current.end = next.end
	}

	// The final buffer may be shorter than minChars; fold it into the
	// previous chunk rather than dropping it, so no content is lost.
	if current.end-current.start < minChars && len(chunks) > 0 {
		foldBack(current)
	} else {
		emit(current)
	}

	return chunks
}

// sentenceSpans locates sentence boundaries and returns the byte range of
// each non-empty sentence, terminal punctuation included.
func sentenceSpans(text string) []span {
	trimmedStart := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	trimmedEnd := trimmedStart + len(strings.TrimRight(text[trimmedStart:], " \t\r\n"))
	if trimmedStart >= trimmedEnd {
		return nil
	}

	var spans []span
	start := trimmedStart
	for _, loc := range sentenceEndRegex.FindAllStringIndex(text[trimmedStart:trimmedEnd], -1) {
		// loc[0] is the start of the terminator, loc[1] the end of the
		// trailing whitespace; the sentence ends after its punctuation.
		punctEnd := trimmedStart + loc[0]
		for punctEnd < trimmedStart+loc[1] && isTerminator(text[punctEnd]) {
			punctEnd++
		}
		if punctEnd > start {
			spans = append(spans, span{start: start, end: punctEnd})
		}
		start = trimmedStart + loc[1]
	}

	if start < trimmedEnd {
		spans = append(spans, span{start: start, end: trimmedEnd})
	}

	return spans
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
