package redisad

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sentitrip/internal/adapters/observability"
	"sentitrip/internal/domain"
)

const backend = "redis"

// Key layout:
//
//	destination:seq             INCR counter
//	review:seq                  INCR counter
//	destinations                ZSET member=id score=id
//	destination:{id}            HASH name, description
//	destination:{id}:reviews    ZSET member=review id score=review id
//	review:{id}                 HASH destination_id, content, score, created_at
const (
	keyDestinationSeq = "destination:seq"
	keyReviewSeq      = "review:seq"
	keyDestinations   = "destinations"
)

func destinationKey(id int64) string { return fmt.Sprintf("destination:%d", id) }
func reviewIndexKey(id int64) string { return fmt.Sprintf("destination:%d:reviews", id) }
func reviewKey(id int64) string { return fmt.Sprintf("review:%d", id) }
func member(id int64) string { return strconv.FormatInt(id, 10) }
func zmember(id int64) redis.Z { return redis.Z{Score: float64(id), Member: member(id)} }

// maxTxAttempts bounds optimistic-lock retries when a watched key changes.
const maxTxAttempts = 5

// Store implements domain.ReviewStore on Redis.
type Store struct{ c *redis.Client }

func New(addr, pass string, db int) *Store {
	return &Store{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func NewWithClient(c *redis.Client) *Store { return &Store{c: c} }

func (s *Store) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *Store) Close() error { return s.c.Close() }

func observe(op string, err error) {
	switch {
	case err == nil:
		observability.ObserveStore(backend, op, "ok")
	case errors.Is(err, domain.ErrNotFound):
		observability.ObserveStore(backend, op, "not_found")
	default:
		observability.ObserveStore(backend, op, "error")
	}
}

// watch runs fn under WATCH keys, retrying when another client got there first.
func (s *Store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for i := 0; i < maxTxAttempts; i++ {
		err = s.c.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *Store) CreateDestination(ctx context.Context, d domain.Destination) (out domain.Destination, err error) {
	defer func() { observe("create_destination", err) }()
	id, err := s.c.Incr(ctx, keyDestinationSeq).Result()
	if err != nil {
		return domain.Destination{}, err
	}
	_, err = s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, destinationKey(id), "name", d.Name, "description", d.Description)
		p.ZAdd(ctx, keyDestinations, zmember(id))
		return nil
	})
	if err != nil {
		return domain.Destination{}, err
	}
	d.ID = id
	return d, nil
}

func (s *Store) FindDestination(ctx context.Context, id int64) (d domain.Destination, err error) {
	defer func() { observe("find_destination", err) }()
	return s.findDestination(ctx, id)
}

func (s *Store) findDestination(ctx context.Context, id int64) (domain.Destination, error) {
	m, err := s.c.HGetAll(ctx, destinationKey(id)).Result()
	if err != nil {
		return domain.Destination{}, err
	}
	if len(m) == 0 {
		return domain.Destination{}, domain.ErrNotFound
	}
	return domain.Destination{ID: id, Name: m["name"], Description: m["description"]}, nil
}

func (s *Store) ListDestinations(ctx context.Context) (out []domain.Destination, err error) {
	defer func() { observe("list_destinations", err) }()
	ids, err := s.c.ZRange(ctx, keyDestinations, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	cmds, err := s.c.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, m := range ids {
			id, _ := strconv.ParseInt(m, 10, 64)
			p.HGetAll(ctx, destinationKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, cmd := range cmds {
		h := cmd.(*redis.MapStringStringCmd).Val()
		if len(h) == 0 {
			continue // removed between ZRANGE and HGETALL
		}
		id, _ := strconv.ParseInt(ids[i], 10, 64)
		out = append(out, domain.Destination{ID: id, Name: h["name"], Description: h["description"]})
	}
	return out, nil
}

// DeleteDestination drops the destination, its index and every review in one MULTI.
func (s *Store) DeleteDestination(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete_destination", err) }()
	idx := reviewIndexKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		members, err := tx.ZRange(ctx, idx, 0, -1).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			for _, m := range members {
				rid, _ := strconv.ParseInt(m, 10, 64)
				p.Del(ctx, reviewKey(rid))
			}
			p.Del(ctx, idx, destinationKey(id))
			p.ZRem(ctx, keyDestinations, member(id))
			return nil
		})
		return err
	}, idx, destinationKey(id))
}

// SaveReview fails with domain.ErrNotFound if the destination does not exist
// at commit time.
func (s *Store) SaveReview(ctx context.Context, rv domain.Review) (out domain.Review, err error) {
	defer func() { observe("save_review", err) }()
	id, err := s.c.Incr(ctx, keyReviewSeq).Result()
	if err != nil {
		return domain.Review{}, err
	}
	dk := destinationKey(rv.DestinationID)
	err = s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, dk).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, reviewKey(id),
				"destination_id", rv.DestinationID,
				"content", rv.Content,
				"score", strconv.FormatFloat(rv.SentimentScore, 'g', -1, 64),
				"created_at", rv.CreatedAt.UTC().Format(time.RFC3339Nano),
			)
			p.ZAdd(ctx, reviewIndexKey(rv.DestinationID), zmember(id))
			return nil
		})
		return err
	}, dk)
	if err != nil {
		return domain.Review{}, err
	}
	rv.ID = id
	return rv, nil
}

// DeleteReview is idempotent.
func (s *Store) DeleteReview(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete_review", err) }()
	rk := reviewKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		dest, err := tx.HGet(ctx, rk, "destination_id").Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		did, err := strconv.ParseInt(dest, 10, 64)
		if err != nil {
			return fmt.Errorf("review %d has bad destination_id %q: %w", id, dest, err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, rk)
			p.ZRem(ctx, reviewIndexKey(did), member(id))
			return nil
		})
		return err
	}, rk)
}

func (s *Store) ListReviewsByDestination(ctx context.Context, destinationID int64) (out []domain.Review, err error) {
	defer func() { observe("list_reviews", err) }()
	ids, err := s.c.ZRevRange(ctx, reviewIndexKey(destinationID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	cmds, err := s.c.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, m := range ids {
			rid, _ := strconv.ParseInt(m, 10, 64)
			p.HGetAll(ctx, reviewKey(rid))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out = make([]domain.Review, 0, len(ids))
	for i, cmd := range cmds {
		h := cmd.(*redis.MapStringStringCmd).Val()
		if len(h) == 0 {
			continue
		}
		rid, _ := strconv.ParseInt(ids[i], 10, 64)
		rv, err := decodeReview(rid, h)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

func decodeReview(id int64, h map[string]string) (domain.Review, error) {
	did, err := strconv.ParseInt(h["destination_id"], 10, 64)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review %d destination_id: %w", id, err)
	}
	score, err := strconv.ParseFloat(h["score"], 64)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review %d score: %w", id, err)
	}
	created, err := time.Parse(time.RFC3339Nano, h["created_at"])
	if err != nil {
		return domain.Review{}, fmt.Errorf("review %d created_at: %w", id, err)
	}
	return domain.Review{
		ID:             id,
		DestinationID:  did,
		Content:        h["content"],
		SentimentScore: score,
		CreatedAt:      created.UTC(),
	}, nil
}
