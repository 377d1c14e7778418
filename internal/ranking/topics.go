package ranking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/arsp/ranking-service/internal/domain"
)

// velocityWeight scales the annualized citation velocity's contribution to
// the impact score.
const velocityWeight = 0.3

// TrendingTopics fans the query out to the enabled paper sources and ranks
// the merged results by impact score, a blend of total citations and recent
// citation velocity. Recently published papers accumulating citations fast
// outrank older papers with the same total.
func (e *Engine) TrendingTopics(ctx context.Context, req TopicRequest) ([]ScoredTopic, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, &domain.ValidationError{Field: "query", Message: "query must not be empty"}
	}

	start := e.now()
	limit := req.Limit
	if limit <= 0 || limit > e.config.MaxTopics {
		limit = e.config.MaxTopics
	}

	papers, err := e.searchCandidates(ctx, req.Query)
	if err != nil {
		e.recordRanking("trending_topics", "error", start, 0)
		return nil, err
	}

	topics := make([]ScoredTopic, 0, len(papers))
	for _, p := range papers {
		topics = append(topics, e.scoreTopic(p))
	}

	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].ImpactScore != topics[j].ImpactScore {
			return topics[i].ImpactScore > topics[j].ImpactScore
		}
		return topics[i].Title < topics[j].Title
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}

	e.recordRanking("trending_topics", "ok", start, len(papers))
	e.logger.Info().
		Str("query", req.Query).
		Int("papers", len(papers)).
		Int("returned", len(topics)).
		Dur("duration", time.Since(start)).
		Msg("trending topics completed")

	return topics, nil
}

// scoreTopic computes the impact score for one paper:
//
//	velocity = citations / days since publication
//	impact   = citations + velocity*365*0.3
//
// A paper without a publication date cannot have a velocity; its citation
// count is halved so dated papers rank ahead at equal totals.
func (e *Engine) scoreTopic(p *domain.Paper) ScoredTopic {
	topic := ScoredTopic{
		Title:           p.Title,
		URL:             p.URL,
		Year:            p.Year,
		PublicationDate: p.PublicationDate,
		CitationCount:   p.CitationCount,
		Source:          p.Source,
	}

	days, ok := p.DaysSincePublication(e.now())
	if !ok {
		topic.ImpactScore = float64(p.CitationCount) * 0.5
		return topic
	}

	topic.CitationVelocity = float64(p.CitationCount) / float64(days)
	topic.ImpactScore = float64(p.CitationCount) + topic.CitationVelocity*365*velocityWeight
	return topic
}
