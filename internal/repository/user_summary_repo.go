package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsapp-summarizer/internal/models"
)

type UserSummaryRepo struct {
	pool *pgxpool.Pool
}

func NewUserSummaryRepo(pool *pgxpool.Pool) *UserSummaryRepo {
	return &UserSummaryRepo{pool: pool}
}

func (r *UserSummaryRepo) Create(ctx context.Context, s *models.UserSummary) error {
	s.ID = uuid.New()

	query := `INSERT INTO user_summaries (id, email, category)
		VALUES ($1, $2, $3) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, s.ID, s.Email, s.Category).Scan(&s.Timestamp)
}

// LastByEmail returns the most recent entry for email, or nil when there is none.
func (r *UserSummaryRepo) LastByEmail(ctx context.Context, email string) (*models.UserSummary, error) {
	s := &models.UserSummary{}
	query := `SELECT id, email, category, created_at
		FROM user_summaries WHERE email = $1
		ORDER BY created_at DESC LIMIT 1`

	err := r.pool.QueryRow(ctx, query, email).Scan(&s.ID, &s.Email, &s.Category, &s.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteOlderThan removes entries created before cutoff and reports how many went.
func (r *UserSummaryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM user_summaries WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
