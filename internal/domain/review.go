package domain

import "time"

// Review belongs to exactly one Destination, referenced by id only.
type Review struct {
	ID             int64     `json:"id"`
	DestinationID  int64     `json:"destinationId"`
	Content        string    `json:"content"`
	SentimentScore float64   `json:"sentimentScore"`
	CreatedAt      time.Time `json:"createdAt"`
}
