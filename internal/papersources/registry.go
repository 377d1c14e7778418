package papersources

import (
	"context"
	"sync"

	"github.com/arsp/ranking-service/internal/domain"
)

// SourceResult holds the outcome of one source's search in a fan-out.
// Exactly one of Result and Error is set; a failed branch never cancels or
// corrupts its siblings.
type SourceResult struct {
	Source domain.SourceType
	Result *SearchResult
	Error  error
}

// Registry manages paper sources and coordinates concurrent searches across
// them. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[domain.SourceType]PaperSource
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[domain.SourceType]PaperSource),
	}
}

// Register adds a source, replacing any existing source of the same type.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.SourceType()] = source
}

// Get returns a source by type, or nil if not registered.
func (r *Registry) Get(sourceType domain.SourceType) PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[sourceType]
}

// EnabledSources returns a snapshot of the sources whose IsEnabled reports true.
func (r *Registry) EnabledSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(r.sources))
	for _, source := range r.sources {
		if source.IsEnabled() {
			sources = append(sources, source)
		}
	}
	return sources
}

// SearchAll queries every enabled source concurrently and returns one
// SourceResult per source, errors included. The caller decides how to handle
// failed branches; typically it substitutes an empty result and continues
// with whatever the healthy sources returned.
func (r *Registry) SearchAll(ctx context.Context, params SearchParams) []SourceResult {
	sources := r.EnabledSources()
	if len(sources) == 0 {
		return nil
	}

	resultChan := make(chan SourceResult, len(sources))
	var wg sync.WaitGroup

	for _, source := range sources {
		wg.Add(1)
		go func(s PaperSource) {
			defer wg.Done()
			result, err := s.Search(ctx, params)
			resultChan <- SourceResult{
				Source: s.SourceType(),
				Result: result,
				Error:  err,
			}
		}(source)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]SourceResult, 0, len(sources))
	for result := range resultChan {
		results = append(results, result)
	}
	return results
}
