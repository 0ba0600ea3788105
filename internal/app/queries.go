package app

import (
	"context"
	"fmt"

	"sentitrip/internal/domain"
)

// QueryService builds read models. Aggregates are recomputed on every call.
type QueryService struct {
	store domain.ReviewStore
}

func NewQueryService(st domain.ReviewStore) *QueryService {
	return &QueryService{store: st}
}

func (s *QueryService) GetDestination(ctx context.Context, id int64) (domain.DestinationView, error) {
	d, err := s.store.FindDestination(ctx, id)
	if err != nil {
		return domain.DestinationView{}, err
	}
	return s.view(ctx, d)
}

func (s *QueryService) ListDestinations(ctx context.Context) ([]domain.DestinationView, error) {
	ds, err := s.store.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	out := make([]domain.DestinationView, 0, len(ds))
	for _, d := range ds {
		v, err := s.view(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *QueryService) view(ctx context.Context, d domain.Destination) (domain.DestinationView, error) {
	rs, err := s.store.ListReviewsByDestination(ctx, d.ID)
	if err != nil {
		return domain.DestinationView{}, fmt.Errorf("list reviews for %d: %w", d.ID, err)
	}
	return mapDestinationView(d, rs), nil
}
