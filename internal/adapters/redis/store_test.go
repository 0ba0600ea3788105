package redisad_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "sentitrip/internal/adapters/redis"
	"sentitrip/internal/domain"
)

func newStore(t *testing.T) (*redisad.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = st.Close() })
	return st, mr
}

func TestStore_DestinationRoundTrip(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	a, err := st.CreateDestination(ctx, domain.Destination{Name: "Kyoto", Description: "temples"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, _ := st.CreateDestination(ctx, domain.Destination{Name: "Osaka"})
	if a.ID == 0 || b.ID <= a.ID {
		t.Fatalf("ids not monotonic: %d %d", a.ID, b.ID)
	}

	got, err := st.FindDestination(ctx, a.ID)
	if err != nil || got != a {
		t.Fatalf("find: %v %+v", err, got)
	}
	if _, err := st.FindDestination(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ds, err := st.ListDestinations(ctx)
	if err != nil || len(ds) != 2 || ds[0].ID != a.ID || ds[1].ID != b.ID {
		t.Fatalf("list: %v %+v", err, ds)
	}
}

func TestStore_ReviewsNewestFirst(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()
	d, _ := st.CreateDestination(ctx, domain.Destination{Name: "Nara"})

	created := time.Date(2024, 6, 1, 10, 0, 0, 500, time.UTC)
	var saved []domain.Review
	for _, c := range []string{"A", "B", "C"} {
		rv, err := st.SaveReview(ctx, domain.Review{DestinationID: d.ID, Content: c, SentimentScore: 72.5, CreatedAt: created})
		if err != nil {
			t.Fatalf("save %s: %v", c, err)
		}
		saved = append(saved, rv)
	}

	rs, err := st.ListReviewsByDestination(ctx, d.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rs) != 3 || rs[0].Content != "C" || rs[1].Content != "B" || rs[2].Content != "A" {
		t.Fatalf("expected [C B A], got %+v", rs)
	}
	if rs[0].ID != saved[2].ID || rs[0].DestinationID != d.ID ||
		rs[0].SentimentScore != 72.5 || !rs[0].CreatedAt.Equal(created) {
		t.Fatalf("round trip mismatch: %+v vs %+v", rs[0], saved[2])
	}
}

func TestStore_SaveReviewUnknownDestination(t *testing.T) {
	st, mr := newStore(t)
	_, err := st.SaveReview(context.Background(), domain.Review{DestinationID: 77, Content: "x", CreatedAt: time.Now()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if mr.Exists("destination:77:reviews") {
		t.Fatalf("index must not be created for a missing destination")
	}
}

func TestStore_DeleteReviewIdempotent(t *testing.T) {
	st, mr := newStore(t)
	ctx := context.Background()
	d, _ := st.CreateDestination(ctx, domain.Destination{Name: "Kobe"})
	rv, _ := st.SaveReview(ctx, domain.Review{DestinationID: d.ID, Content: "beef", CreatedAt: time.Now()})

	for i := 0; i < 2; i++ {
		if err := st.DeleteReview(ctx, rv.ID); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	if err := st.DeleteReview(ctx, 4242); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	if mr.Exists("review:1") {
		t.Fatalf("review hash still present")
	}
	if rs, _ := st.ListReviewsByDestination(ctx, d.ID); len(rs) != 0 {
		t.Fatalf("expected empty, got %+v", rs)
	}
}

func TestStore_DeleteDestinationCascades(t *testing.T) {
	st, mr := newStore(t)
	ctx := context.Background()
	keep, _ := st.CreateDestination(ctx, domain.Destination{Name: "Keep"})
	gone, _ := st.CreateDestination(ctx, domain.Destination{Name: "Gone"})
	kept, _ := st.SaveReview(ctx, domain.Review{DestinationID: keep.ID, Content: "k", CreatedAt: time.Now()})
	for i := 0; i < 3; i++ {
		if _, err := st.SaveReview(ctx, domain.Review{DestinationID: gone.ID, Content: "g", CreatedAt: time.Now()}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	if err := st.DeleteDestination(ctx, gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteDestination(ctx, gone.ID); err != nil {
		t.Fatalf("delete twice: %v", err)
	}

	if _, err := st.FindDestination(ctx, gone.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("destination survived: %v", err)
	}
	if rs, _ := st.ListReviewsByDestination(ctx, gone.ID); len(rs) != 0 {
		t.Fatalf("dangling reviews: %+v", rs)
	}
	// only the surviving review hash remains
	keys := mr.Keys()
	reviewHashes := 0
	for _, k := range keys {
		if strings.HasPrefix(k, "review:") && k != "review:seq" {
			reviewHashes++
		}
	}
	if reviewHashes != 1 {
		t.Fatalf("expected 1 review hash, keys: %v", keys)
	}
	if rs, _ := st.ListReviewsByDestination(ctx, keep.ID); len(rs) != 1 || rs[0].ID != kept.ID {
		t.Fatalf("unrelated destination affected: %+v", rs)
	}
	if ds, _ := st.ListDestinations(ctx); len(ds) != 1 || ds[0].ID != keep.ID {
		t.Fatalf("destinations: %+v", ds)
	}
}

func TestStore_ConcurrentSavesUniqueIDs(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()
	d, _ := st.CreateDestination(ctx, domain.Destination{Name: "Sapporo"})

	const n = 40
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rv, err := st.SaveReview(ctx, domain.Review{DestinationID: d.ID, Content: "snow", CreatedAt: time.Now()})
			if err != nil {
				t.Errorf("save: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[rv.ID] {
				t.Errorf("duplicate id %d", rv.ID)
			}
			seen[rv.ID] = true
		}()
	}
	wg.Wait()

	rs, err := st.ListReviewsByDestination(ctx, d.ID)
	if err != nil || len(rs) != n {
		t.Fatalf("expected %d reviews, got %d (%v)", n, len(rs), err)
	}
	for i := 1; i < len(rs); i++ {
		if rs[i-1].ID <= rs[i].ID {
			t.Fatalf("not id-descending at %d: %d, %d", i, rs[i-1].ID, rs[i].ID)
		}
	}
}

func TestStore_PropagatesConnectionErrors(t *testing.T) {
	st, mr := newStore(t)
	mr.Close()
	if _, err := st.FindDestination(context.Background(), 1); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected connection error, got %v", err)
	}
}
