package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/ranking"
	"github.com/arsp/ranking-service/internal/translation"
)

// stubEngine implements RankingEngine with canned results.
type stubEngine struct {
	recommendations []ranking.ScoredJournal
	report          *ranking.PlagiarismReport
	batchResults    []ranking.BatchResult
	topics          []ranking.ScoredTopic
	citations       []domain.Citation
	err             error

	lastRecommend ranking.RecommendRequest
	lastPlagiary  ranking.PlagiarismRequest
	lastBatch     []ranking.PlagiarismRequest
	lastTopic     ranking.TopicRequest
	lastCitation  string
	lastLimit     int
}

func (s *stubEngine) RecommendJournals(ctx context.Context, req ranking.RecommendRequest) ([]ranking.ScoredJournal, error) {
	s.lastRecommend = req
	return s.recommendations, s.err
}

func (s *stubEngine) CheckPlagiarism(ctx context.Context, req ranking.PlagiarismRequest) (*ranking.PlagiarismReport, error) {
	s.lastPlagiary = req
	return s.report, s.err
}

func (s *stubEngine) CheckPlagiarismBatch(ctx context.Context, reqs []ranking.PlagiarismRequest) []ranking.BatchResult {
	s.lastBatch = reqs
	return s.batchResults
}

func (s *stubEngine) TrendingTopics(ctx context.Context, req ranking.TopicRequest) ([]ranking.ScoredTopic, error) {
	s.lastTopic = req
	return s.topics, s.err
}

func (s *stubEngine) SuggestCitations(ctx context.Context, text string, limit int) ([]domain.Citation, error) {
	s.lastCitation = text
	s.lastLimit = limit
	return s.citations, s.err
}

// stubJournalRepo implements repository.JournalRepository with canned results.
type stubJournalRepo struct {
	journals []domain.Journal
	journal  *domain.Journal
	err      error

	lastFilter domain.JournalFilter
	lastQuery  string
	lastLimit  int
}

func (s *stubJournalRepo) Upsert(ctx context.Context, journal *domain.Journal) (*domain.Journal, error) {
	return journal, s.err
}

func (s *stubJournalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Journal, error) {
	return s.journal, s.err
}

func (s *stubJournalRepo) List(ctx context.Context, filter domain.JournalFilter) ([]domain.Journal, error) {
	s.lastFilter = filter
	return s.journals, s.err
}

func (s *stubJournalRepo) Search(ctx context.Context, query string, limit int) ([]domain.Journal, error) {
	s.lastQuery = query
	s.lastLimit = limit
	return s.journals, s.err
}

func (s *stubJournalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

// upperProvider is a translation provider that uppercases the input,
// preserving batch delimiters.
type upperProvider struct{}

func (upperProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	return strings.ToUpper(text), nil
}

func newTestServer(engine RankingEngine, repo *stubJournalRepo, translator *translation.BatchTranslator) *Server {
	return NewServer(Config{Address: "127.0.0.1:0"}, engine, repo, translator, nil, zerolog.Nop())
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestRecommendJournals(t *testing.T) {
	t.Run("returns scored recommendations", func(t *testing.T) {
		engine := &stubEngine{
			recommendations: []ranking.ScoredJournal{
				{Journal: domain.Journal{Name: "Nature"}, Score: 92.5, SimilarityScore: 48, LexicalScore: 24.5, QualityBoost: 20},
			},
		}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/journals/recommend", map[string]interface{}{
			"title":             "Vision transformers for protein folding",
			"abstract":          "We study attention mechanisms.",
			"open_access_only":  true,
			"min_impact_factor": 5.0,
			"limit":             3,
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp recommendJournalsResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, "Nature", resp.Recommendations[0].Journal.Name)
		assert.Equal(t, 1, resp.TotalCount)

		assert.Equal(t, "Vision transformers for protein folding", engine.lastRecommend.Title)
		assert.True(t, engine.lastRecommend.Filter.OpenAccessOnly)
		assert.Equal(t, 5.0, engine.lastRecommend.Filter.MinImpactFactor)
		assert.Equal(t, 3, engine.lastRecommend.Limit)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/journals/recommend", map[string]interface{}{
			"abstract": "no title",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "title is required")
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/journals/recommend", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps validation errors from the engine to 400", func(t *testing.T) {
		engine := &stubEngine{err: domain.NewValidationError("title", "title or abstract is required")}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/journals/recommend", map[string]interface{}{
			"title": "valid title",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps provider outage to 503", func(t *testing.T) {
		engine := &stubEngine{err: fmt.Errorf("journal store: %w", domain.ErrUnavailable)}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/journals/recommend", map[string]interface{}{
			"title": "valid title",
		})

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestListJournals(t *testing.T) {
	t.Run("lists journals with filters", func(t *testing.T) {
		repo := &stubJournalRepo{journals: []domain.Journal{{Name: "PLOS ONE"}, {Name: "Science"}}}
		server := newTestServer(&stubEngine{}, repo, nil)

		rec := doRequest(t, server, http.MethodGet,
			"/api/v1/journals?open_access_only=true&min_impact_factor=2.5&max_time_to_publish_months=6&domain=biology", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp listJournalsResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, 2, resp.TotalCount)

		assert.True(t, repo.lastFilter.OpenAccessOnly)
		assert.Equal(t, 2.5, repo.lastFilter.MinImpactFactor)
		assert.Equal(t, 6, repo.lastFilter.MaxTimeToPublishMonths)
		assert.Equal(t, "biology", repo.lastFilter.Domain)
	})

	t.Run("q parameter switches to search", func(t *testing.T) {
		repo := &stubJournalRepo{journals: []domain.Journal{{Name: "Nature Physics"}}}
		server := newTestServer(&stubEngine{}, repo, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/journals?q=physics&limit=5", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "physics", repo.lastQuery)
		assert.Equal(t, 5, repo.lastLimit)
	})

	t.Run("rejects malformed filter values", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/journals?min_impact_factor=lots", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetJournal(t *testing.T) {
	t.Run("returns journal by ID", func(t *testing.T) {
		journal := &domain.Journal{ID: uuid.New(), Name: "Cell"}
		repo := &stubJournalRepo{journal: journal}
		server := newTestServer(&stubEngine{}, repo, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/journals/"+journal.ID.String(), nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp domain.Journal
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Cell", resp.Name)
	})

	t.Run("rejects malformed UUID", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/journals/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps missing journal to 404", func(t *testing.T) {
		repo := &stubJournalRepo{err: domain.NewNotFoundError("journal", "x")}
		server := newTestServer(&stubEngine{}, repo, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/journals/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCheckPlagiarism(t *testing.T) {
	t.Run("returns originality report", func(t *testing.T) {
		engine := &stubEngine{report: &ranking.PlagiarismReport{
			OriginalityScore:   87.5,
			ChunksChecked:      4,
			CandidatesCompared: 12,
			Matches:            []ranking.FlaggedMatch{},
		}}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/plagiarism/check", map[string]interface{}{
			"text": "A long manuscript body to be checked for overlap.",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ranking.PlagiarismReport
		decodeBody(t, rec, &resp)
		assert.Equal(t, 87.5, resp.OriginalityScore)
		assert.Equal(t, 4, resp.ChunksChecked)
	})

	t.Run("check_online defaults to true", func(t *testing.T) {
		engine := &stubEngine{report: &ranking.PlagiarismReport{}}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		doRequest(t, server, http.MethodPost, "/api/v1/plagiarism/check", map[string]interface{}{
			"text": "some text",
		})

		assert.True(t, engine.lastPlagiary.CheckOnline)
	})

	t.Run("check_online false is honored", func(t *testing.T) {
		engine := &stubEngine{report: &ranking.PlagiarismReport{}}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		doRequest(t, server, http.MethodPost, "/api/v1/plagiarism/check", map[string]interface{}{
			"text":         "some text",
			"check_online": false,
		})

		assert.False(t, engine.lastPlagiary.CheckOnline)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/plagiarism/check", map[string]interface{}{
			"text": "",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCheckPlagiarismBatch(t *testing.T) {
	t.Run("returns per-item results", func(t *testing.T) {
		engine := &stubEngine{batchResults: []ranking.BatchResult{
			{Index: 0, Success: true, Report: &ranking.PlagiarismReport{OriginalityScore: 95}},
			{Index: 1, Success: false, Error: "text is required"},
		}}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/plagiarism/check-batch", map[string]interface{}{
			"items": []map[string]interface{}{
				{"text": "first document"},
				{"text": "second document"},
			},
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp checkPlagiarismBatchResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Results, 2)
		assert.True(t, resp.Results[0].Success)
		assert.False(t, resp.Results[1].Success)
		assert.Len(t, engine.lastBatch, 2)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/plagiarism/check-batch", map[string]interface{}{
			"items": []map[string]interface{}{},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects oversized batch", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		items := make([]map[string]interface{}, maxBatchItems+1)
		for i := range items {
			items[i] = map[string]interface{}{"text": "doc"}
		}

		rec := doRequest(t, server, http.MethodPost, "/api/v1/plagiarism/check-batch", map[string]interface{}{
			"items": items,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTrendingTopics(t *testing.T) {
	t.Run("returns scored topics", func(t *testing.T) {
		engine := &stubEngine{topics: []ranking.ScoredTopic{
			{Title: "Diffusion Models", CitationCount: 420, ImpactScore: 510.3},
		}}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/topics/trending?query=generative+models&limit=5", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp trendingTopicsResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "generative models", resp.Query)
		require.Len(t, resp.Topics, 1)
		assert.Equal(t, "Diffusion Models", resp.Topics[0].Title)

		assert.Equal(t, "generative models", engine.lastTopic.Query)
		assert.Equal(t, 5, engine.lastTopic.Limit)
	})

	t.Run("search alias accepts q parameter", func(t *testing.T) {
		engine := &stubEngine{}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/topics/search?q=quantum+computing", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "quantum computing", engine.lastTopic.Query)
	})

	t.Run("rejects missing query", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/topics/trending", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed limit", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/topics/trending?query=x&limit=many", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSuggestCitations(t *testing.T) {
	t.Run("returns citation suggestions", func(t *testing.T) {
		engine := &stubEngine{citations: []domain.Citation{
			{DOI: "10.1000/xyz", Title: "Attention Is All You Need", CitedByCount: 90000},
		}}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/citations/suggest", map[string]interface{}{
			"text":  "Transformer architectures dominate sequence modeling.",
			"limit": 10,
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp suggestCitationsResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Citations, 1)
		assert.Equal(t, "10.1000/xyz", resp.Citations[0].DOI)
		assert.Equal(t, 10, engine.lastLimit)
	})

	t.Run("rejects missing text", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodPost, "/api/v1/citations/suggest", map[string]interface{}{
			"limit": 10,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTranslation(t *testing.T) {
	t.Run("lang parameter translates topic titles", func(t *testing.T) {
		engine := &stubEngine{topics: []ranking.ScoredTopic{
			{Title: "graph neural networks"},
			{Title: "protein folding"},
		}}
		translator := translation.NewBatchTranslator(upperProvider{}, 0, zerolog.Nop(), nil)
		server := newTestServer(engine, &stubJournalRepo{}, translator)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/topics/trending?query=ml&lang=de", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp trendingTopicsResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Topics, 2)
		assert.Equal(t, "GRAPH NEURAL NETWORKS", resp.Topics[0].Title)
		assert.Equal(t, "PROTEIN FOLDING", resp.Topics[1].Title)
	})

	t.Run("lang matching source is a no-op", func(t *testing.T) {
		engine := &stubEngine{topics: []ranking.ScoredTopic{{Title: "graph neural networks"}}}
		translator := translation.NewBatchTranslator(upperProvider{}, 0, zerolog.Nop(), nil)
		server := newTestServer(engine, &stubJournalRepo{}, translator)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/topics/trending?query=ml&lang=en", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp trendingTopicsResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "graph neural networks", resp.Topics[0].Title)
	})

	t.Run("nil translator leaves fields untouched", func(t *testing.T) {
		engine := &stubEngine{topics: []ranking.ScoredTopic{{Title: "graph neural networks"}}}
		server := newTestServer(engine, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/topics/trending?query=ml&lang=de", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp trendingTopicsResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "graph neural networks", resp.Topics[0].Title)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("healthz reports ok", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("readyz without database reports not ready", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/readyz", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRequestIDHeader(t *testing.T) {
	t.Run("request ID is generated and echoed", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		rec := doRequest(t, server, http.MethodGet, "/healthz", nil)

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("provided request ID is preserved", func(t *testing.T) {
		server := newTestServer(&stubEngine{}, &stubJournalRepo{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})
}
