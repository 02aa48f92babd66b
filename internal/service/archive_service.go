package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
)

// ErrArchiveDisabled is returned when no storage bucket is configured.
var ErrArchiveDisabled = errors.New("archive storage is not configured")

// ArchiveConfig locates post snapshots in object storage.
type ArchiveConfig struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
}

// Snapshot describes one stored export.
type Snapshot struct {
	Key          string
	Location     string
	Size         int64
	LastModified *time.Time
	URL          string
	PostCount    int
}

// ArchiveService exports every post as a JSON snapshot to object storage.
type ArchiveService interface {
	Export(ctx context.Context) (*Snapshot, error)
	List(ctx context.Context) ([]Snapshot, error)
	Purge(ctx context.Context) error
}

type archiveService struct {
	posts   repository.PostRepository
	storage storage.Service
	cfg     ArchiveConfig
	now     func() time.Time
}

func NewArchiveService(posts repository.PostRepository, store storage.Service, cfg ArchiveConfig) ArchiveService {
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "post-snapshots"
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	return &archiveService{
		posts:   posts,
		storage: store,
		cfg:     cfg,
		now:     time.Now,
	}
}

type snapshotDocument struct {
	ExportedAt time.Time      `json:"exported_at"`
	Count      int            `json:"count"`
	Posts      []snapshotPost `json:"posts"`
}

type snapshotPost struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *archiveService) Export(ctx context.Context) (*Snapshot, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}

	posts, err := s.posts.List(ctx, repository.PostListOptions{Sort: domain.SortOldest})
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	now := s.now().UTC()
	doc := snapshotDocument{
		ExportedAt: now,
		Count:      len(posts),
		Posts:      make([]snapshotPost, len(posts)),
	}
	for i, p := range posts {
		doc.Posts[i] = snapshotPost{
			ID:        p.ID,
			Title:     p.Title,
			Body:      p.Body,
			CreatedAt: p.CreatedAt.UTC(),
			UpdatedAt: p.UpdatedAt.UTC(),
		}
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join(s.cfg.KeyPrefix, fmt.Sprintf("posts-%s-%s.json", now.Format("20060102T150405Z"), uuid.NewString()[:8]))
	location, err := s.storage.PutObject(ctx, s.cfg.Bucket, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Key:          key,
		Location:     location,
		Size:         int64(len(payload)),
		LastModified: &now,
		PostCount:    len(posts),
	}, nil
}

// List returns the stored snapshots newest first, each with a presigned download URL.
func (s *archiveService) List(ctx context.Context) ([]Snapshot, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}

	objects, err := s.storage.ListObjects(ctx, s.cfg.Bucket, s.cfg.KeyPrefix+"/")
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		url, err := s.storage.GetObjectURL(ctx, s.cfg.Bucket, obj.Key, s.cfg.URLExpiry)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, Snapshot{
			Key:          obj.Key,
			Location:     fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          url,
		})
	}

	// keys embed the export time, so lexical order is chronological
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Key > snapshots[j].Key })
	return snapshots, nil
}

func (s *archiveService) Purge(ctx context.Context) error {
	if err := s.enabled(); err != nil {
		return err
	}
	return s.storage.DeletePrefix(ctx, s.cfg.Bucket, s.cfg.KeyPrefix+"/")
}

func (s *archiveService) enabled() error {
	if s.storage == nil || s.cfg.Bucket == "" {
		return ErrArchiveDisabled
	}
	return nil
}
