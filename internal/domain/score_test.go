package domain_test

import (
	"testing"

	"sentitrip/internal/domain"
)

func TestAggregateScore_Empty(t *testing.T) {
	got := domain.AggregateScore(nil)
	if got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if s := domain.FormatScore(got); s != "0.0" {
		t.Fatalf("expected 0.0, got %s", s)
	}
}

func TestAggregateScore_Mean(t *testing.T) {
	rs := []domain.Review{{SentimentScore: 80}, {SentimentScore: 90}}
	if s := domain.FormatScore(domain.AggregateScore(rs)); s != "85.0" {
		t.Fatalf("expected 85.0, got %s", s)
	}
}

func TestAggregateScore_FullPrecisionThenRound(t *testing.T) {
	// 100/3 = 33.333.. ; rounding happens only when formatting
	rs := []domain.Review{{SentimentScore: 0}, {SentimentScore: 0}, {SentimentScore: 100}}
	got := domain.AggregateScore(rs)
	if got <= 33.33 || got >= 33.34 {
		t.Fatalf("unexpected mean %v", got)
	}
	if s := domain.FormatScore(got); s != "33.3" {
		t.Fatalf("expected 33.3, got %s", s)
	}
}

func TestFormatScore_HalfAwayFromZero(t *testing.T) {
	cases := map[float64]string{
		85.25: "85.3",
		72.5:  "72.5",
		99.96: "100.0",
		0.04:  "0.0",
	}
	for in, want := range cases {
		if got := domain.FormatScore(in); got != want {
			t.Errorf("FormatScore(%v) = %s, want %s", in, got, want)
		}
	}
}
