package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkwell/internal/domain"
	"inkwell/internal/repository"
)

const selectPostColumns = `SELECT id, title, body, created_at, updated_at FROM posts`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (title, body, created_at, updated_at)
VALUES (?, ?, ?, ?)`,
		post.Title,
		post.Body,
		post.CreatedAt.UTC(),
		post.UpdatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPostColumns+` WHERE id=?`, id)
	return scanPost(row)
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE posts
SET title=?, body=?, updated_at=?
WHERE id=?`,
		post.Title,
		post.Body,
		post.UpdatedAt.UTC(),
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireAffected(res, "update post")
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, opts repository.PostListOptions) ([]domain.Post, error) {
	query := selectPostColumns + ` ORDER BY ` + orderClause(opts.Sort)
	var args []any
	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = -1 // sqlite: no upper bound
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) Search(ctx context.Context, term string) ([]domain.Post, error) {
	if term == "" {
		return r.List(ctx, repository.PostListOptions{})
	}

	rows, err := r.db.QueryContext(ctx, selectPostColumns+`
WHERE instr(lower(title), lower(?)) > 0 OR instr(lower(body), lower(?)) > 0
ORDER BY id ASC`,
		term,
		term,
	)
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

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
