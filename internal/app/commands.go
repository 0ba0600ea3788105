package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentitrip/internal/adapters/observability"
	"sentitrip/internal/domain"
)

type IngestionService struct {
	store    domain.ReviewStore
	analyzer domain.SentimentAnalyzer
	now      func() time.Time
	logger   zerolog.Logger
}

type Option func(*IngestionService)

// WithClock overrides the source of review creation times.
func WithClock(now func() time.Time) Option {
	return func(s *IngestionService) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *IngestionService) { s.logger = l }
}

func NewIngestionService(st domain.ReviewStore, a domain.SentimentAnalyzer, opts ...Option) *IngestionService {
	s := &IngestionService{store: st, analyzer: a, now: time.Now, logger: log.Logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

var errInvalidDestination = domain.NewValidationError("destinationId", "invalid destination id")

// Submit validates the destination, scores content and persists the review.
// Only validation and persistence failures are returned; analyzer failures
// fall back to domain.DefaultScore.
func (s *IngestionService) Submit(ctx context.Context, destinationID int64, content string) (domain.Review, error) {
	// 1) Resolve the destination before anything leaves the process.
	if _, err := s.store.FindDestination(ctx, destinationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Review{}, errInvalidDestination
		}
		return domain.Review{}, fmt.Errorf("find destination %d: %w", destinationID, err)
	}
	if strings.TrimSpace(content) == "" {
		return domain.Review{}, domain.NewValidationError("content", "content must not be empty")
	}

	// 2) Score. The analyzer's own timeouts bound this call, so it is allowed
	// to finish even if the caller goes away.
	score := s.analyze(context.WithoutCancel(ctx), destinationID, content)

	// 3) Persist.
	saved, err := s.store.SaveReview(ctx, domain.Review{
		DestinationID:  destinationID,
		Content:        content,
		SentimentScore: score,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		// destination removed between resolve and save
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Review{}, errInvalidDestination
		}
		return domain.Review{}, fmt.Errorf("save review: %w", err)
	}

	s.logger.Info().
		Int64("review_id", saved.ID).
		Int64("destination_id", destinationID).
		Float64("score", saved.SentimentScore).
		Msg("review stored")
	return saved, nil
}

// analyze is the only place where failures are swallowed.
func (s *IngestionService) analyze(ctx context.Context, destinationID int64, content string) float64 {
	score, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		observability.ObserveFallback()
		s.logger.Warn().
			Err(err).
			Int64("destination_id", destinationID).
			Float64("score", domain.DefaultScore).
			Msg("sentiment analyzer unavailable, using default score")
		return domain.DefaultScore
	}
	return score
}

// DeleteReview is idempotent: deleting an unknown id succeeds.
func (s *IngestionService) DeleteReview(ctx context.Context, reviewID int64) error {
	if err := s.store.DeleteReview(ctx, reviewID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete review %d: %w", reviewID, err)
	}
	return nil
}

func (s *IngestionService) CreateDestination(ctx context.Context, name, description string) (domain.Destination, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Destination{}, domain.NewValidationError("name", "name must not be empty")
	}
	d, err := s.store.CreateDestination(ctx, domain.Destination{Name: name, Description: description})
	if err != nil {
		return domain.Destination{}, fmt.Errorf("create destination: %w", err)
	}
	return d, nil
}

// DeleteDestination removes the destination together with its reviews. Idempotent.
func (s *IngestionService) DeleteDestination(ctx context.Context, id int64) error {
	if err := s.store.DeleteDestination(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete destination %d: %w", id, err)
	}
	return nil
}
