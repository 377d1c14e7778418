package translation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arsp/ranking-service/internal/observability"
)

const (
	// batchDelimiter separates texts joined into one provider call. Three
	// newlines survive translation intact where single separators often do
	// not.
	batchDelimiter = "\n\n\n"

	// DefaultMaxBatchChars keeps each provider call under typical request
	// size limits, with headroom for translation expansion.
	DefaultMaxBatchChars = 4500
)

// BatchTranslator translates slices of texts through a single-text provider
// by joining them into delimiter-separated batches. Output always has the
// same length and order as the input: a batch whose translation cannot be
// split back into the right number of parts is returned untranslated.
type BatchTranslator struct {
	provider      Provider
	maxBatchChars int
	logger        zerolog.Logger
	metrics       *observability.Metrics
}

// NewBatchTranslator creates a BatchTranslator. maxBatchChars of zero takes
// the default. metrics may be nil.
func NewBatchTranslator(provider Provider, maxBatchChars int, logger zerolog.Logger, metrics *observability.Metrics) *BatchTranslator {
	if maxBatchChars <= 0 {
		maxBatchChars = DefaultMaxBatchChars
	}
	return &BatchTranslator{
		provider:      provider,
		maxBatchChars: maxBatchChars,
		logger:        logger.With().Str("component", "translation").Logger(),
		metrics:       metrics,
	}
}

// TranslateAll translates texts from source to target, preserving length and
// order. Identical source and target, or an empty target, is the identity.
// Failures degrade per batch: affected texts come back unchanged.
func (b *BatchTranslator) TranslateAll(ctx context.Context, texts []string, source, target string) []string {
	if len(texts) == 0 || target == "" || source == target {
		return texts
	}

	out := make([]string, len(texts))
	copy(out, texts)

	for _, batch := range b.batches(texts) {
		b.translateBatch(ctx, texts, out, batch, source, target)
	}
	return out
}

// TranslateFields rewrites the pointed-to strings in place, in a single
// TranslateAll pass. Nil pointers are skipped.
func (b *BatchTranslator) TranslateFields(ctx context.Context, fields []*string, source, target string) {
	var texts []string
	var idx []int
	for i, f := range fields {
		if f != nil && *f != "" {
			texts = append(texts, *f)
			idx = append(idx, i)
		}
	}
	if len(texts) == 0 {
		return
	}

	translated := b.TranslateAll(ctx, texts, source, target)
	for i, j := range idx {
		*fields[j] = translated[i]
	}
}

// batch is a half-open index range into the input slice.
type batch struct {
	start, end int
}

// batches greedily packs consecutive texts while the joined batch stays
// under the char limit. A single oversized text gets its own batch and is
// sent anyway; the provider decides whether to accept it.
func (b *BatchTranslator) batches(texts []string) []batch {
	var result []batch
	start := 0
	size := 0
	for i, text := range texts {
		add := len(text)
		if i > start {
			add += len(batchDelimiter)
		}
		if i > start && size+add > b.maxBatchChars {
			result = append(result, batch{start: start, end: i})
			start = i
			size = len(text)
			continue
		}
		size += add
	}
	result = append(result, batch{start: start, end: len(texts)})
	return result
}

func (b *BatchTranslator) translateBatch(ctx context.Context, texts, out []string, bt batch, source, target string) {
	joined := strings.Join(texts[bt.start:bt.end], batchDelimiter)

	translated, err := b.provider.Translate(ctx, joined, source, target)
	if err != nil {
		b.logger.Warn().
			Err(err).
			Int("texts", bt.end-bt.start).
			Msg("translation batch failed, returning originals")
		b.recordBatch("error")
		return
	}

	parts := strings.Split(translated, batchDelimiter)
	if len(parts) != bt.end-bt.start {
		b.logger.Warn().
			Int("expected", bt.end-bt.start).
			Int("got", len(parts)).
			Msg("translation batch resplit mismatch, returning originals")
		b.recordBatch("mismatch")
		return
	}

	for i, part := range parts {
		out[bt.start+i] = strings.TrimSpace(part)
	}
	b.recordBatch("ok")
}

func (b *BatchTranslator) recordBatch(status string) {
	if b.metrics != nil {
		b.metrics.RecordTranslationBatch(status)
	}
}
