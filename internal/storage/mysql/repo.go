package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"

	"sentitrip/internal/adapters/observability"
	"sentitrip/internal/domain"
)

const backend = "mysql"

// errNoReferencedRow is ER_NO_REFERENCED_ROW_2: the FK target does not exist.
const errNoReferencedRow = 1452

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

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
	res, err := r.db.ExecContext(ctx, insertDestinationSQL, d.Name, d.Description)
	if err != nil {
		return domain.Destination{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Destination{}, err
	}
	d.ID = id
	return d, nil
}

func (r *Repo) FindDestination(ctx context.Context, id int64) (d domain.Destination, err error) {
	defer func() { observe("find_destination", err) }()
	if err := r.db.QueryRowContext(ctx, getDestinationSQL, id).Scan(&d.ID, &d.Name, &d.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Destination{}, domain.ErrNotFound
		}
		return domain.Destination{}, err
	}
	return d, nil
}

func (r *Repo) ListDestinations(ctx context.Context) (out []domain.Destination, err error) {
	defer func() { observe("list_destinations", err) }()
	rows, err := r.db.QueryContext(ctx, listDestinationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDestination removes reviews and destination in one transaction.
func (r *Repo) DeleteDestination(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete_destination", err) }()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteDestinationReviewsSQL, id); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	if _, err = tx.ExecContext(ctx, deleteDestinationSQL, id); err != nil {
		return fmt.Errorf("delete destination: %w", err)
	}
	return tx.Commit()
}

func (r *Repo) SaveReview(ctx context.Context, rv domain.Review) (out domain.Review, err error) {
	defer func() { observe("save_review", err) }()
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.DestinationID,
		rv.Content,
		rv.SentimentScore,
		rv.CreatedAt.UTC(),
	)
	if err != nil {
		var me *mysqldrv.MySQLError
		if errors.As(err, &me) && me.Number == errNoReferencedRow {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, err
	}
	rv.ID = id
	return rv, nil
}

// DeleteReview is idempotent; zero affected rows is not an error.
func (r *Repo) DeleteReview(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete_review", err) }()
	_, err = r.db.ExecContext(ctx, deleteReviewSQL, id)
	return err
}

func (r *Repo) ListReviewsByDestination(ctx context.Context, destinationID int64) (out []domain.Review, err error) {
	defer func() { observe("list_reviews", err) }()
	rows, err := r.db.QueryContext(ctx, listReviewsByDestinationSQL, destinationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.DestinationID,
			&rv.Content,
			&rv.SentimentScore,
			&rv.CreatedAt, // needs parseTime=true in the DSN
		); err != nil {
			return nil, err
		}
		rv.CreatedAt = rv.CreatedAt.UTC()
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
