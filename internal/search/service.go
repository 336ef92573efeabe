package search

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
	"github.com/denisok6893-rgb/casa-match/internal/matching"
)

const (
	queryMinLen = 10
	queryMaxLen = 500
)

// CriteriaExtractor is the NL-to-criteria boundary. One outbound call,
// no retries at this layer.
type CriteriaExtractor interface {
	Extract(ctx context.Context, query string) (domain.Criteria, error)
}

type ListingStore interface {
	ListAvailable(ctx context.Context) ([]domain.Listing, error)
	GetListing(ctx context.Context, id string) (domain.Listing, bool, error)
}

type HistoryStore interface {
	AppendSearch(ctx context.Context, rec domain.SearchRecord) (int64, error)
	ActiveProspectsWithLatestSearch(ctx context.Context, agentID string) ([]domain.ProspectSearch, error)
}

// Service composes extractor, listing store, scorer/ranker and history
// store into the two matching entry points.
type Service struct {
	extractor CriteriaExtractor
	listings  ListingStore
	history   HistoryStore
	scorer    *matching.Scorer
	log       *zap.Logger

	extractTimeout time.Duration
	storeTimeout   time.Duration
}

type Options struct {
	ExtractTimeout time.Duration
	StoreTimeout   time.Duration
}

func NewService(ext CriteriaExtractor, listings ListingStore, history HistoryStore, scorer *matching.Scorer, log *zap.Logger, opts Options) *Service {
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = 20 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	return &Service{
		extractor:      ext,
		listings:       listings,
		history:        history,
		scorer:         scorer,
		log:            log,
		extractTimeout: opts.ExtractTimeout,
		storeTimeout:   opts.StoreTimeout,
	}
}

// Search runs the end-to-end pipeline: validate, extract, fetch
// available listings, rank, record history. An empty result set is a
// valid outcome, not an error. The history append is best-effort: its
// failure is logged and does not fail the search.
func (s *Service) Search(ctx context.Context, query, agentID string, prospectID *int64) ([]domain.ScoreResult, error) {
	query = strings.TrimSpace(query)
	if n := utf8.RuneCountInString(query); n < queryMinLen || n > queryMaxLen {
		return nil, fmt.Errorf("%w: message must be between %d and %d characters", domain.ErrValidation, queryMinLen, queryMaxLen)
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()
	criteria, err := s.extractor.Extract(extractCtx, query)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	candidates, err := s.listings.ListAvailable(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: list available listings: %v", domain.ErrStore, err)
	}

	scored := make([]domain.ScoreResult, 0, len(candidates))
	for _, l := range candidates {
		total, factors := s.scorer.Score(l, criteria)
		scored = append(scored, domain.ScoreResult{Listing: l, Score: total, Factors: factors})
	}

	params := s.scorer.Params()
	ranked := matching.Rank(scored, func(r domain.ScoreResult) float64 { return r.Score },
		params.ScoreThreshold, params.ResultLimit)

	results := make([]domain.ScoreResult, len(ranked))
	for i, r := range ranked {
		results[i] = r.Item
	}

	s.recordSearch(ctx, agentID, prospectID, query, criteria, results)

	s.log.Info("search completed",
		zap.String("agent_id", agentID),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)))
	return results, nil
}

func (s *Service) recordSearch(ctx context.Context, agentID string, prospectID *int64, query string, criteria domain.Criteria, results []domain.ScoreResult) {
	var topScore float64
	if len(results) > 0 {
		topScore = results[0].Score
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()
	if _, err := s.history.AppendSearch(recCtx, domain.SearchRecord{
		AgentID:     agentID,
		ProspectID:  prospectID,
		QueryText:   query,
		Criteria:    criteria,
		ResultCount: len(results),
		TopScore:    topScore,
	}); err != nil {
		s.log.Error("history append failed", zap.String("agent_id", agentID), zap.Error(err))
	}
}

// SuggestionsForListing is the inverse direction: one listing scored
// against the latest extracted criteria of each of the agent's active
// prospects that have searched at least once. Same scorer, same
// threshold, no truncation.
func (s *Service) SuggestionsForListing(ctx context.Context, listingID, agentID string) ([]domain.ProspectSuggestion, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	listing, ok, err := s.listings.GetListing(storeCtx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: get listing: %v", domain.ErrStore, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, listingID)
	}
	if listing.AgentID != agentID {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrForbidden, listingID)
	}

	candidates, err := s.history.ActiveProspectsWithLatestSearch(storeCtx, agentID)
	if err != nil {
		return nil, fmt.Errorf("%w: load prospect searches: %v", domain.ErrStore, err)
	}

	ranked := matching.Rank(candidates, func(ps domain.ProspectSearch) float64 {
		total, _ := s.scorer.Score(listing, ps.Criteria)
		return total
	}, s.scorer.Params().ScoreThreshold, 0)

	out := make([]domain.ProspectSuggestion, len(ranked))
	for i, r := range ranked {
		out[i] = domain.ProspectSuggestion{
			Prospect:  r.Item.Prospect,
			Score:     r.Score,
			LastQuery: r.Item.QueryText,
		}
	}

	s.log.Info("suggestions computed",
		zap.String("listing_id", listingID),
		zap.Int("prospects", len(candidates)),
		zap.Int("matches", len(out)))
	return out, nil
}
