package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/repository"
)

const selectPostColumns = `SELECT id, title, body, created_at, updated_at FROM posts`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) repository.PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO posts (title, body, created_at, updated_at)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		post.Title,
		post.Body,
		post.CreatedAt.UTC(),
		post.UpdatedAt.UTC(),
	).Scan(&post.ID)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return post.ID, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, selectPostColumns+` WHERE id=$1`, id))
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE posts
SET title=$1, body=$2, updated_at=$3
WHERE id=$4`,
		post.Title,
		post.Body,
		post.UpdatedAt.UTC(),
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update post: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, opts repository.PostListOptions) ([]domain.Post, error) {
	query := selectPostColumns + ` ORDER BY ` + orderClause(opts.Sort)
	var args []any
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, len(args)+1)
		args = append(args, opts.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) Search(ctx context.Context, term string) ([]domain.Post, error) {
	if term == "" {
		return r.List(ctx, repository.PostListOptions{})
	}

	rows, err := r.pool.Query(ctx, selectPostColumns+`
WHERE strpos(lower(title), lower($1)) > 0 OR strpos(lower(body), lower($1)) > 0
ORDER BY id ASC`, term)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return collectPosts(rows)
}

func orderClause(sort domain.SortDirection) string {
	switch sort {
	case domain.SortNewest:
		return `created_at DESC, id DESC`
	case domain.SortOldest:
		return `created_at ASC, id ASC`
	default:
		return `id ASC`
	}
}

func collectPosts(rows pgx.Rows) ([]domain.Post, error) {
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("post: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
