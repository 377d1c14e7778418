package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/ranking"
)

// Request body and batch limits.
const (
	maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies
	maxBatchItems      = 20
	defaultSourceLang  = "en"
)

// recommendJournalsRequest is the JSON request body for journal recommendations.
type recommendJournalsRequest struct {
	Title                  string  `json:"title" validate:"required,min=3,max=2000"`
	Abstract               string  `json:"abstract" validate:"max=20000"`
	OpenAccessOnly         bool    `json:"open_access_only"`
	MinImpactFactor        float64 `json:"min_impact_factor" validate:"gte=0"`
	MaxTimeToPublishMonths int     `json:"max_time_to_publish_months" validate:"gte=0"`
	Domain                 string  `json:"domain" validate:"max=200"`
	Limit                  int     `json:"limit" validate:"gte=0,lte=50"`
}

// checkPlagiarismRequest is the JSON request body for an originality check.
type checkPlagiarismRequest struct {
	Text        string `json:"text" validate:"required,min=1,max=100000"`
	CheckOnline *bool  `json:"check_online"`
}

// checkPlagiarismBatchRequest is the JSON request body for a batch check.
type checkPlagiarismBatchRequest struct {
	Items []checkPlagiarismRequest `json:"items" validate:"required,min=1,dive"`
}

// suggestCitationsRequest is the JSON request body for citation suggestions.
type suggestCitationsRequest struct {
	Text  string `json:"text" validate:"required,min=1,max=100000"`
	Limit int    `json:"limit" validate:"gte=0,lte=50"`
}

// recommendJournals handles POST /api/v1/journals/recommend.
func (s *Server) recommendJournals(w http.ResponseWriter, r *http.Request) {
	var req recommendJournalsRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	recommendations, err := s.engine.RecommendJournals(r.Context(), ranking.RecommendRequest{
		Title:    req.Title,
		Abstract: req.Abstract,
		Filter: domain.JournalFilter{
			OpenAccessOnly:         req.OpenAccessOnly,
			MinImpactFactor:        req.MinImpactFactor,
			MaxTimeToPublishMonths: req.MaxTimeToPublishMonths,
			Domain:                 req.Domain,
		},
		Limit: req.Limit,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if lang := targetLang(r); lang != "" {
		fields := make([]*string, len(recommendations))
		for i := range recommendations {
			fields[i] = &recommendations[i].Journal.Description
		}
		s.translateFields(r, fields, lang)
	}

	writeJSON(w, http.StatusOK, recommendJournalsResponse{
		Recommendations: recommendations,
		TotalCount:      len(recommendations),
	})
}

// listJournals handles GET /api/v1/journals. A q parameter switches to
// name/description search; otherwise the filtered catalog is listed.
func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	var journals []domain.Journal
	var err error

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		journals, err = s.journalRepo.Search(r.Context(), q, limit)
	} else {
		filter, filterErr := journalFilterFromQuery(r)
		if filterErr != nil {
			writeError(w, http.StatusBadRequest, filterErr.Error())
			return
		}
		journals, err = s.journalRepo.List(r.Context(), filter)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if lang := targetLang(r); lang != "" {
		fields := make([]*string, len(journals))
		for i := range journals {
			fields[i] = &journals[i].Description
		}
		s.translateFields(r, fields, lang)
	}

	writeJSON(w, http.StatusOK, listJournalsResponse{
		Journals:   journals,
		TotalCount: len(journals),
	})
}

// getJournal handles GET /api/v1/journals/{journalID}.
func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "journalID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "journal_id must be a valid UUID")
		return
	}

	journal, err := s.journalRepo.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if lang := targetLang(r); lang != "" {
		s.translateFields(r, []*string{&journal.Description}, lang)
	}

	writeJSON(w, http.StatusOK, journal)
}

// checkPlagiarism handles POST /api/v1/plagiarism/check.
func (s *Server) checkPlagiarism(w http.ResponseWriter, r *http.Request) {
	var req checkPlagiarismRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	report, err := s.engine.CheckPlagiarism(r.Context(), toPlagiarismRequest(req))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// checkPlagiarismBatch handles POST /api/v1/plagiarism/check-batch.
func (s *Server) checkPlagiarismBatch(w http.ResponseWriter, r *http.Request) {
	var req checkPlagiarismBatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.Items) > maxBatchItems {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("items must have at most %d entries", maxBatchItems))
		return
	}

	requests := make([]ranking.PlagiarismRequest, len(req.Items))
	for i, item := range req.Items {
		requests[i] = toPlagiarismRequest(item)
	}

	results := s.engine.CheckPlagiarismBatch(r.Context(), requests)

	writeJSON(w, http.StatusOK, checkPlagiarismBatchResponse{
		Results:    results,
		TotalCount: len(results),
	})
}

// trendingTopics handles GET /api/v1/topics/trending and /api/v1/topics/search.
func (s *Server) trendingTopics(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		query = strings.TrimSpace(r.URL.Query().Get("q"))
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	topics, err := s.engine.TrendingTopics(r.Context(), ranking.TopicRequest{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if lang := targetLang(r); lang != "" {
		fields := make([]*string, len(topics))
		for i := range topics {
			fields[i] = &topics[i].Title
		}
		s.translateFields(r, fields, lang)
	}

	writeJSON(w, http.StatusOK, trendingTopicsResponse{
		Query:      query,
		Topics:     topics,
		TotalCount: len(topics),
	})
}

// suggestCitations handles POST /api/v1/citations/suggest.
func (s *Server) suggestCitations(w http.ResponseWriter, r *http.Request) {
	var req suggestCitationsRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	citations, err := s.engine.SuggestCitations(r.Context(), req.Text, req.Limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestCitationsResponse{
		Citations:  citations,
		TotalCount: len(citations),
	})
}

// decodeAndValidate reads the request body into v and validates it. It
// writes the error response and returns false when the request is invalid.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}

	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, validationMessage(verrs[0]))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}

	return true
}

// validationMessage renders a single field error without echoing input.
func validationMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// writeDomainError maps domain errors to HTTP status codes without leaking
// internal details.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "upstream provider unavailable")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// journalFilterFromQuery builds a journal filter from list query parameters.
func journalFilterFromQuery(r *http.Request) (domain.JournalFilter, error) {
	var filter domain.JournalFilter
	q := r.URL.Query()

	if v := q.Get("open_access_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("open_access_only must be a boolean")
		}
		filter.OpenAccessOnly = parsed
	}
	if v := q.Get("min_impact_factor"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			return filter, errors.New("min_impact_factor must be a non-negative number")
		}
		filter.MinImpactFactor = parsed
	}
	if v := q.Get("max_time_to_publish_months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return filter, errors.New("max_time_to_publish_months must be a non-negative integer")
		}
		filter.MaxTimeToPublishMonths = parsed
	}
	filter.Domain = strings.TrimSpace(q.Get("domain"))

	return filter, nil
}

// toPlagiarismRequest converts the JSON body to the engine request.
// check_online defaults to true when omitted.
func toPlagiarismRequest(req checkPlagiarismRequest) ranking.PlagiarismRequest {
	checkOnline := true
	if req.CheckOnline != nil {
		checkOnline = *req.CheckOnline
	}
	return ranking.PlagiarismRequest{
		Text:        req.Text,
		CheckOnline: checkOnline,
	}
}

// translateFields rewrites display fields in place when a translator is
// configured. Scores and ordering are never touched.
func (s *Server) translateFields(r *http.Request, fields []*string, lang string) {
	if s.translator == nil || len(fields) == 0 {
		return
	}
	s.translator.TranslateFields(r.Context(), fields, defaultSourceLang, lang)
}

// targetLang returns the requested display language, empty when translation
// should be skipped.
func targetLang(r *http.Request) string {
	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang == "" || lang == defaultSourceLang {
		return ""
	}
	return lang
}
