package seenposts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-feed-archiver/internal/repositories"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, log logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: log.WithComponent("SeenPostsRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, post SeenPost) error {
	query, args, err := repositories.SqBuilder.
		Insert("seen_posts").
		Columns("post_id", "username", "snapshot_file", "created_at").
		Values(post.PostID, post.Username, post.SnapshotFile, time.Now()).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (p *Pgx) Exists(ctx context.Context, postID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("seen_posts").
		Where(sq.Eq{"post_id": postID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = p.pg.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	query, args, err := repositories.SqBuilder.
		Delete("seen_posts").
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
