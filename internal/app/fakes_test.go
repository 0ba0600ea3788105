package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"sentitrip/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu      sync.Mutex
	seq     int64
	dests   map[int64]domain.Destination
	reviews map[int64]domain.Review
	saveErr error
	saves   int
}

func newFakeStore(ds ...domain.Destination) *fakeStore {
	f := &fakeStore{dests: map[int64]domain.Destination{}, reviews: map[int64]domain.Review{}}
	for _, d := range ds {
		f.dests[d.ID] = d
	}
	return f
}

func (f *fakeStore) CreateDestination(ctx context.Context, d domain.Destination) (domain.Destination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	d.ID = 1000 + f.seq
	f.dests[d.ID] = d
	return d, nil
}

func (f *fakeStore) FindDestination(ctx context.Context, id int64) (domain.Destination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dests[id]
	if !ok {
		return domain.Destination{}, domain.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Destination, 0, len(f.dests))
	for _, d := range f.dests {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteDestination(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.dests, id)
	for rid, r := range f.reviews {
		if r.DestinationID == id {
			delete(f.reviews, rid)
		}
	}
	return nil
}

func (f *fakeStore) SaveReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return domain.Review{}, f.saveErr
	}
	if _, ok := f.dests[r.DestinationID]; !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	f.seq++
	r.ID = f.seq
	f.reviews[r.ID] = r
	return r, nil
}

func (f *fakeStore) DeleteReview(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reviews, id)
	return nil
}

func (f *fakeStore) ListReviewsByDestination(ctx context.Context, id int64) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if r.DestinationID == id {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	score float64
	err   error
	calls int
	texts []string
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, text string) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.texts = append(a.texts, text)
	return a.score, a.err
}

func (a *fakeAnalyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

var errDiskFull = errors.New("disk full")
