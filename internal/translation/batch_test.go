package translation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider uppercases each delimited part, or fails, or mangles the
// delimiter to simulate a provider rewriting structure.
type stubProvider struct {
	err           error
	eatDelimiters bool
	calls         []string
}

func (s *stubProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return "", s.err
	}
	if s.eatDelimiters {
		return strings.ToUpper(strings.ReplaceAll(text, batchDelimiter, " ")), nil
	}
	parts := strings.Split(text, batchDelimiter)
	for i := range parts {
		parts[i] = strings.ToUpper(parts[i])
	}
	return strings.Join(parts, batchDelimiter), nil
}

func newTranslator(p Provider, maxChars int) *BatchTranslator {
	return NewBatchTranslator(p, maxChars, zerolog.Nop(), nil)
}

func TestTranslateAll(t *testing.T) {
	provider := &stubProvider{}
	tr := newTranslator(provider, 0)

	out := tr.TranslateAll(context.Background(), []string{"hello", "world"}, "en", "de")
	assert.Equal(t, []string{"HELLO", "WORLD"}, out)
	assert.Len(t, provider.calls, 1)
}

func TestTranslateAllIdentity(t *testing.T) {
	provider := &stubProvider{}
	tr := newTranslator(provider, 0)

	texts := []string{"hello", "world"}
	assert.Equal(t, texts, tr.TranslateAll(context.Background(), texts, "en", "en"))
	assert.Equal(t, texts, tr.TranslateAll(context.Background(), texts, "en", ""))
	assert.Empty(t, provider.calls)
}

func TestTranslateAllBatching(t *testing.T) {
	provider := &stubProvider{}
	tr := newTranslator(provider, 25)

	texts := []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}
	out := tr.TranslateAll(context.Background(), texts, "en", "fr")

	assert.Equal(t, []string{"AAAAAAAAAA", "BBBBBBBBBB", "CCCCCCCCCC"}, out)
	// 10+3+10 fits in 25; adding the third would exceed it.
	assert.Len(t, provider.calls, 2)
}

func TestTranslateAllMismatchReturnsOriginals(t *testing.T) {
	provider := &stubProvider{eatDelimiters: true}
	tr := newTranslator(provider, 0)

	texts := []string{"hello", "world"}
	out := tr.TranslateAll(context.Background(), texts, "en", "de")
	assert.Equal(t, texts, out)
}

func TestTranslateAllProviderErrorReturnsOriginals(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider down")}
	tr := newTranslator(provider, 0)

	texts := []string{"hello", "world"}
	out := tr.TranslateAll(context.Background(), texts, "en", "de")
	assert.Equal(t, texts, out)
}

func TestTranslateAllFailingBatchIsolated(t *testing.T) {
	// First call mangles the delimiter, later calls behave. With a small
	// batch limit only the first batch comes back untranslated.
	provider := &flakyProvider{failFirst: true}
	tr := newTranslator(provider, 12)

	texts := []string{"aaaaaaaaaa", "bbbbbbbbbb"}
	out := tr.TranslateAll(context.Background(), texts, "en", "de")
	assert.Equal(t, []string{"aaaaaaaaaa", "BBBBBBBBBB"}, out)
}

type flakyProvider struct {
	failFirst bool
	calls     int
}

func (f *flakyProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	f.calls++
	if f.failFirst && f.calls == 1 {
		return "", errors.New("transient failure")
	}
	return strings.ToUpper(text), nil
}

func TestTranslateAllPreservesLengthAndOrder(t *testing.T) {
	provider := &stubProvider{}
	tr := newTranslator(provider, 0)

	texts := []string{"one", "two", "three", "four"}
	out := tr.TranslateAll(context.Background(), texts, "en", "es")
	require.Len(t, out, len(texts))
	for i, original := range texts {
		assert.Equal(t, strings.ToUpper(original), out[i])
	}
}

func TestTranslateAllOversizedText(t *testing.T) {
	provider := &stubProvider{}
	tr := newTranslator(provider, 10)

	texts := []string{strings.Repeat("x", 40)}
	out := tr.TranslateAll(context.Background(), texts, "en", "de")
	assert.Equal(t, strings.ToUpper(texts[0]), out[0])
	assert.Len(t, provider.calls, 1)
}

func TestTranslateFields(t *testing.T) {
	provider := &stubProvider{}
	tr := newTranslator(provider, 0)

	title := "hello"
	abstract := "world"
	empty := ""
	tr.TranslateFields(context.Background(), []*string{&title, nil, &abstract, &empty}, "en", "de")

	assert.Equal(t, "HELLO", title)
	assert.Equal(t, "WORLD", abstract)
	assert.Empty(t, empty)
}

func TestTranslateFieldsAllEmpty(t *testing.T) {
	provider := &stubProvider{}
	tr := newTranslator(provider, 0)

	tr.TranslateFields(context.Background(), []*string{nil}, "en", "de")
	assert.Empty(t, provider.calls)
}
