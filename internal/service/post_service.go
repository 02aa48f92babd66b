package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/repository"
	"inkwell/internal/security"
	"inkwell/internal/validation"
)

// ListQuery selects one page of the post listing.
type ListQuery struct {
	Page     int
	PageSize int
	Sort     domain.SortDirection
}

// PostService coordinates post CRUD, listing and search.
type PostService interface {
	Create(ctx context.Context, title, body string) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Update(ctx context.Context, id int64, title, body string) (*domain.Post, error)
	// Delete is idempotent: removing an absent post succeeds.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q ListQuery) (*domain.PostPage, error)
	All(ctx context.Context, sort domain.SortDirection) ([]domain.Post, error)
	Search(ctx context.Context, term string) ([]domain.Post, error)
}

type postService struct {
	posts     repository.PostRepository
	rules     validation.Rules
	sanitizer security.ContentSanitizer
	pageSize  int
	now       func() time.Time
}

func NewPostService(posts repository.PostRepository, rules validation.Rules, sanitizer security.ContentSanitizer, pageSize int) PostService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &postService{
		posts:     posts,
		rules:     rules,
		sanitizer: sanitizer,
		pageSize:  pageSize,
		now:       time.Now,
	}
}

func (s *postService) Create(ctx context.Context, title, body string) (*domain.Post, error) {
	title, body = s.clean(title, body)
	if err := s.rules.Post(title, body); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post := &domain.Post{
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.posts.Get(ctx, id)
}

func (s *postService) Update(ctx context.Context, id int64, title, body string) (*domain.Post, error) {
	title, body = s.clean(title, body)
	if err := s.rules.Post(title, body); err != nil {
		return nil, err
	}

	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Title = title
	post.Body = body
	post.UpdatedAt = s.now().UTC()

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id int64) error {
	return s.posts.Delete(ctx, id)
}

// List returns one page ordered by creation time, newest first unless asked
// otherwise. The count is read separately from the window, so the two may
// disagree under concurrent writes.
func (s *postService) List(ctx context.Context, q ListQuery) (*domain.PostPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	if q.Sort == domain.SortNone {
		q.Sort = domain.SortNewest
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	offset, hasNext, inRange := pageWindow(q.Page, q.PageSize, total)
	items := []domain.Post{}
	if inRange {
		items, err = s.posts.List(ctx, repository.PostListOptions{
			Sort:   q.Sort,
			Offset: offset,
			Limit:  q.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
	}

	return &domain.PostPage{
		Items:       items,
		Page:        q.Page,
		PageSize:    q.PageSize,
		Total:       total,
		HasNextPage: hasNext,
	}, nil
}

func (s *postService) All(ctx context.Context, sort domain.SortDirection) ([]domain.Post, error) {
	return s.posts.List(ctx, repository.PostListOptions{Sort: sort})
}

func (s *postService) Search(ctx context.Context, term string) ([]domain.Post, error) {
	return s.posts.Search(ctx, SanitizeSearchTerm(term))
}

func (s *postService) clean(title, body string) (string, string) {
	if s.sanitizer == nil {
		return title, body
	}
	return s.sanitizer.Title(title), s.sanitizer.Body(body)
}
