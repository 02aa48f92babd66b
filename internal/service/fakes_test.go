package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
)

// --- users ---

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]domain.User{}}
}

func (r *fakeUserRepo) taken(user *domain.User) bool {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(user) {
		return 0, fmt.Errorf("insert user: %w", domain.ErrConflict)
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("update user: %w", domain.ErrNotFound)
	}
	if r.taken(user) {
		return fmt.Errorf("update user: %w", domain.ErrConflict)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("delete user: %w", domain.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeTokens struct {
	issued []int64
	err    error
}

func (f *fakeTokens) Issue(userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, userID)
	return fmt.Sprintf("token-%d", userID), nil
}

// --- posts ---

type fakePostRepo struct {
	mu        sync.Mutex
	nextID    int64
	posts     map[int64]domain.Post
	countHook func() // runs inside Count, before the result is returned
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int64]domain.Post{}}
}

var _ repository.PostRepository = (*fakePostRepo)(nil)

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	r.posts[post.ID] = *post
	return post.ID, nil
}

func (r *fakePostRepo) Get(ctx context.Context, id int64) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return fmt.Errorf("update post: %w", domain.ErrNotFound)
	}
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) sorted(dir domain.SortDirection) []domain.Post {
	out := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		switch dir {
		case domain.SortNewest:
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		case domain.SortOldest:
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

func (r *fakePostRepo) List(ctx context.Context, opts repository.PostListOptions) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(opts.Sort)
	if opts.Offset >= len(all) {
		return []domain.Post{}, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (r *fakePostRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	n := int64(len(r.posts))
	r.mu.Unlock()
	if r.countHook != nil {
		r.countHook()
	}
	return n, nil
}

func (r *fakePostRepo) Search(ctx context.Context, term string) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Post{}
	needle := strings.ToLower(term)
	for _, p := range r.sorted(domain.SortNone) {
		if strings.Contains(strings.ToLower(p.Title), needle) || strings.Contains(strings.ToLower(p.Body), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- storage ---

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

var _ storage.Service = (*fakeStorage)(nil)

func (s *fakeStorage) PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = data
	s.types[bucket+"/"+key] = contentType
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

func (s *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.ObjectInfo
	for full, data := range s.objects {
		key := strings.TrimPrefix(full, bucket+"/")
		if key == full || !strings.HasPrefix(key, prefix) {
			continue
		}
		ts := time.Now()
		out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: &ts})
	}
	return out, nil
}

func (s *fakeStorage) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for full := range s.objects {
		if strings.HasPrefix(full, bucket+"/"+prefix) {
			delete(s.objects, full)
		}
	}
	return nil
}

func (s *fakeStorage) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://%s.example/%s?expires=%d", bucket, key, int(expires.Seconds())), nil
}

func (s *fakeStorage) object(bucket, key string) *bytes.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil
	}
	return bytes.NewReader(data)
}
