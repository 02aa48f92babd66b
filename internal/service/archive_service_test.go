package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"inkwell/internal/domain"
)

func newTestArchive(t *testing.T) (*archiveService, *fakePostRepo, *fakeStorage) {
	t.Helper()
	posts := newFakePostRepo()
	store := newFakeStorage()
	svc := NewArchiveService(posts, store, ArchiveConfig{Bucket: "blog", KeyPrefix: "/snapshots/"}).(*archiveService)
	return svc, posts, store
}

func TestArchiveExport_WritesSnapshot(t *testing.T) {
	svc, posts, store := newTestArchive(t)
	ctx := context.Background()
	posts.Create(ctx, &domain.Post{Title: "second post", Body: "b", CreatedAt: t0.Add(time.Minute)})
	posts.Create(ctx, &domain.Post{Title: "first post", Body: "a", CreatedAt: t0})

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	snap, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasPrefix(snap.Key, "snapshots/posts-20260401T110000Z-") || !strings.HasSuffix(snap.Key, ".json") {
		t.Errorf("Key = %q", snap.Key)
	}
	if snap.Location != "s3://blog/"+snap.Key || snap.PostCount != 2 {
		t.Errorf("snapshot = %+v", snap)
	}

	r := store.object("blog", snap.Key)
	if r == nil {
		t.Fatal("snapshot object not stored")
	}
	var doc snapshotDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if doc.Count != 2 || doc.Posts[0].Title != "first post" || doc.Posts[1].Title != "second post" {
		t.Errorf("document = %+v", doc)
	}
	if store.types["blog/"+snap.Key] != "application/json" {
		t.Errorf("content type = %q", store.types["blog/"+snap.Key])
	}
}

func TestArchiveList_NewestFirstWithURLs(t *testing.T) {
	svc, _, store := newTestArchive(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ts := t0.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return ts }
		if _, err := svc.Export(ctx); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
	}
	store.PutObject(ctx, "blog", "snapshots/readme.txt", "text/plain", strings.NewReader("ignore me"))
	store.PutObject(ctx, "blog", "elsewhere/posts.json", "application/json", strings.NewReader("{}"))

	snaps, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("List() = %d snapshots, want 3", len(snaps))
	}
	if !strings.Contains(snaps[0].Key, "20260401T120000Z") || !strings.Contains(snaps[2].Key, "20260401T100000Z") {
		t.Errorf("order = %s, %s, %s", snaps[0].Key, snaps[1].Key, snaps[2].Key)
	}
	for _, s := range snaps {
		if !strings.Contains(s.URL, s.Key) || !strings.Contains(s.URL, "expires=900") {
			t.Errorf("URL = %q", s.URL)
		}
	}
}

func TestArchivePurge(t *testing.T) {
	svc, _, store := newTestArchive(t)
	ctx := context.Background()
	svc.Export(ctx)
	store.PutObject(ctx, "blog", "elsewhere/keep.json", "application/json", strings.NewReader("{}"))

	if err := svc.Purge(ctx); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	snaps, _ := svc.List(ctx)
	if len(snaps) != 0 {
		t.Errorf("snapshots after purge = %d", len(snaps))
	}
	if store.object("blog", "elsewhere/keep.json") == nil {
		t.Error("purge removed objects outside the snapshot prefix")
	}
}

func TestArchive_Disabled(t *testing.T) {
	ctx := context.Background()
	for name, svc := range map[string]ArchiveService{
		"no bucket":  NewArchiveService(newFakePostRepo(), newFakeStorage(), ArchiveConfig{}),
		"no storage": NewArchiveService(newFakePostRepo(), nil, ArchiveConfig{Bucket: "blog"}),
	} {
		if _, err := svc.Export(ctx); !errors.Is(err, ErrArchiveDisabled) {
			t.Errorf("%s: Export() error = %v", name, err)
		}
		if _, err := svc.List(ctx); !errors.Is(err, ErrArchiveDisabled) {
			t.Errorf("%s: List() error = %v", name, err)
		}
		if err := svc.Purge(ctx); !errors.Is(err, ErrArchiveDisabled) {
			t.Errorf("%s: Purge() error = %v", name, err)
		}
	}
}
