package domain

import (
	"math"
	"strconv"
)

// DefaultScore is stored when the analyzer cannot produce a score, and is
// the aggregate of a destination without reviews.
const DefaultScore = 0.0

// AggregateScore is the mean sentiment of rs at full precision.
func AggregateScore(rs []Review) float64 {
	if len(rs) == 0 {
		return DefaultScore
	}
	var sum float64
	for _, r := range rs {
		sum += r.SentimentScore
	}
	return sum / float64(len(rs))
}

// FormatScore renders v with one decimal digit, rounding half away from zero.
func FormatScore(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(DefaultScore, 'f', 1, 64)
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}
