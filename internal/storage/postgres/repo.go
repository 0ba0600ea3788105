package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sentitrip/internal/adapters/observability"
	"sentitrip/internal/domain"
)

const backend = "postgres"

const foreignKeyViolation = "23503"

// Repo implements domain.ReviewStore on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

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

func (r *Repo) CreateDestination(ctx context.Context, d domain.Destination) (out domain.Destination, err error) {
	defer func() { observe("create_destination", err) }()
	const query = `
        INSERT INTO destinations (name, description)
        VALUES ($1, $2)
        RETURNING id
    `
	if err := r.pool.QueryRow(ctx, query, d.Name, d.Description).Scan(&d.ID); err != nil {
		return domain.Destination{}, err
	}
	return d, nil
}

func (r *Repo) FindDestination(ctx context.Context, id int64) (d domain.Destination, err error) {
	defer func() { observe("find_destination", err) }()
	const query = `SELECT id, name, description FROM destinations WHERE id = $1`
	if err := r.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Destination{}, domain.ErrNotFound
		}
		return domain.Destination{}, err
	}
	return d, nil
}

func (r *Repo) ListDestinations(ctx context.Context) (out []domain.Destination, err error) {
	defer func() { observe("list_destinations", err) }()
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM destinations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Destination, error) {
		var d domain.Destination
		err := row.Scan(&d.ID, &d.Name, &d.Description)
		return d, err
	})
	return out, err
}

// DeleteDestination removes reviews and destination in one transaction.
func (r *Repo) DeleteDestination(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete_destination", err) }()
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE destination_id = $1`, id); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM destinations WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete destination: %w", err)
		}
		return nil
	})
}

func (r *Repo) SaveReview(ctx context.Context, rv domain.Review) (out domain.Review, err error) {
	defer func() { observe("save_review", err) }()
	const query = `
        INSERT INTO reviews (destination_id, content, sentiment_score, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	err = r.pool.QueryRow(ctx, query, rv.DestinationID, rv.Content, rv.SentimentScore, rv.CreatedAt.UTC()).Scan(&rv.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}
	return rv, nil
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete_review", err) }()
	_, err = r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return err
}

func (r *Repo) ListReviewsByDestination(ctx context.Context, destinationID int64) (out []domain.Review, err error) {
	defer func() { observe("list_reviews", err) }()
	const query = `
        SELECT id, destination_id, content, sentiment_score, created_at
        FROM reviews
        WHERE destination_id = $1
        ORDER BY id DESC
    `
	rows, err := r.pool.Query(ctx, query, destinationID)
	if err != nil {
		return nil, err
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Review, error) {
		var rv domain.Review
		err := row.Scan(&rv.ID, &rv.DestinationID, &rv.Content, &rv.SentimentScore, &rv.CreatedAt)
		rv.CreatedAt = rv.CreatedAt.UTC()
		return rv, err
	})
	return out, err
}
