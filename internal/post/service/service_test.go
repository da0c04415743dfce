package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/common/clock"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/post/domain"
	"github.com/aiagents/collab-hub/internal/post/repository"
	"github.com/aiagents/collab-hub/internal/post/service"
)

type mockStore struct {
	appendFunc func(ctx context.Context, post domain.Post) error
	listFunc   func(ctx context.Context) ([]domain.Post, error)
}

func (m *mockStore) Append(ctx context.Context, post domain.Post) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, post)
	}
	return nil
}

func (m *mockStore) List(ctx context.Context) ([]domain.Post, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) Close() error { return nil }

var demoSession = authdomain.Session{
	ID:     "sid-1",
	UserID: "1",
	Name:   "Demo User",
	Email:  "demo@aiagents.com",
}

func newFeed(store repository.Store, now time.Time) *service.FeedService {
	log, _ := logger.New("", "test", "info")
	return service.NewFeedService(store, commoncrypto.NewTimeOrderedGenerator(), clock.NewMockClock(now), log)
}

func TestFeedService_Create_Success(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	store := repository.NewMemoryStore()
	feed := newFeed(store, now)

	post, err := feed.Create(context.Background(), demoSession, "  Hello  ", "\tworld\n")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Title != "Hello" || post.Content != "world" {
		t.Errorf("expected trimmed fields, got %q %q", post.Title, post.Content)
	}
	if post.Author != "Demo User" || post.AuthorID != "1" {
		t.Errorf("unexpected author: %s (%s)", post.Author, post.AuthorID)
	}
	if post.ID == "" {
		t.Error("expected generated id")
	}
	if !post.CreatedAt.Equal(now) || post.CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC creation time %v, got %v", now, post.CreatedAt)
	}

	posts, _ := feed.List(context.Background())
	if len(posts) != 1 || posts[0].ID != post.ID {
		t.Errorf("expected stored post, got %+v", posts)
	}
}

func TestFeedService_Create_MicrosecondTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 123456789, time.UTC)
	feed := newFeed(repository.NewMemoryStore(), now)

	post, err := feed.Create(context.Background(), demoSession, "title", "content")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := time.Date(2026, 3, 1, 9, 0, 0, 123456000, time.UTC)
	if !post.CreatedAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, post.CreatedAt)
	}
	if post.CreatedAt.Nanosecond()%1000 != 0 {
		t.Errorf("expected no sub-microsecond part, got %d ns", post.CreatedAt.Nanosecond())
	}
}

func TestFeedService_Create_Unauthenticated(t *testing.T) {
	store := &mockStore{appendFunc: func(context.Context, domain.Post) error {
		t.Fatal("store must not be touched without a session")
		return nil
	}}
	feed := newFeed(store, time.Now())

	_, err := feed.Create(context.Background(), authdomain.Session{}, "title", "content")
	if !errors.Is(err, commonerrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestFeedService_Create_Validation(t *testing.T) {
	store := &mockStore{appendFunc: func(context.Context, domain.Post) error {
		t.Fatal("store must not be touched for invalid input")
		return nil
	}}
	feed := newFeed(store, time.Now())

	cases := []struct {
		name, title, content string
		want                 error
	}{
		{"empty title", "", "content", service.ErrValidation},
		{"whitespace title", "   ", "content", service.ErrValidation},
		{"whitespace content", "title", " \n\t", service.ErrValidation},
		{"title too long", strings.Repeat("a", 201), "content", service.ErrTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := feed.Create(context.Background(), demoSession, tc.title, tc.content)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFeedService_Create_StoreFailure(t *testing.T) {
	feed := newFeed(&mockStore{appendFunc: func(context.Context, domain.Post) error {
		return errors.New("disk full")
	}}, time.Now())

	_, err := feed.Create(context.Background(), demoSession, "title", "content")
	de, ok := commonerrors.AsDomainError(err)
	if !ok || de.Category() != commonerrors.CategoryInternal {
		t.Fatalf("expected internal domain error, got %v", err)
	}
	if de.Message() != "internal server error" {
		t.Errorf("expected generic message, got %q", de.Message())
	}
}

func TestFeedService_Create_CircuitOpen(t *testing.T) {
	feed := newFeed(&mockStore{appendFunc: func(context.Context, domain.Post) error {
		return commonerrors.ErrCircuitOpen
	}}, time.Now())

	if _, err := feed.Create(context.Background(), demoSession, "title", "content"); !errors.Is(err, commonerrors.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestFeedService_List_NewestFirst(t *testing.T) {
	feed := newFeed(repository.NewMemoryStore(), time.Now())

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		p, err := feed.Create(context.Background(), demoSession, title, "body")
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, p.ID)
	}

	posts, err := feed.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 3 || posts[0].ID != ids[2] || posts[2].ID != ids[0] {
		t.Errorf("expected newest first, got %+v", posts)
	}
}
