package domain

import "context"

type ReviewStore interface {
	// Destinations
	CreateDestination(ctx context.Context, d Destination) (Destination, error)
	FindDestination(ctx context.Context, id int64) (Destination, error)
	ListDestinations(ctx context.Context) ([]Destination, error)
	// DeleteDestination removes the destination and all of its reviews as one unit.
	DeleteDestination(ctx context.Context, id int64) error

	// Reviews
	SaveReview(ctx context.Context, r Review) (Review, error)
	DeleteReview(ctx context.Context, id int64) error
	// ListReviewsByDestination returns reviews ordered by id descending.
	ListReviewsByDestination(ctx context.Context, destinationID int64) ([]Review, error)
}

type SentimentAnalyzer interface {
	// Analyze returns a score in [0, 100] or an error wrapping ErrAnalysisFailed.
	Analyze(ctx context.Context, text string) (float64, error)
}

// Read models
type DestinationView struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Reviews      []Review `json:"reviews"`
	AverageScore string   `json:"averageScore"`
}
