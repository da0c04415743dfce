package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	"github.com/aiagents/collab-hub/internal/common/clock"
	"github.com/aiagents/collab-hub/internal/common/constants"
	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
	"github.com/aiagents/collab-hub/internal/common/logger"
	"github.com/aiagents/collab-hub/internal/observability/metrics"
	"github.com/aiagents/collab-hub/internal/post/domain"
	"github.com/aiagents/collab-hub/internal/post/repository"
)

var (
	ErrValidation = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"please fill in both title and content",
	)

	ErrTooLong = commonerrors.NewDomainError(
		"POST_TOO_LONG",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"title or content is too long",
	)
)

type FeedService struct {
	store repository.Store
	ids   commoncrypto.IDGenerator
	clock clock.Clock
	log   *logger.Logger
}

func NewFeedService(store repository.Store, ids commoncrypto.IDGenerator, clock clock.Clock, log *logger.Logger) *FeedService {
	return &FeedService{store: store, ids: ids, clock: clock, log: log}
}

func (s *FeedService) Create(ctx context.Context, session authdomain.Session, title, content string) (domain.Post, error) {
	if !session.Valid() {
		metrics.PostsRejected.WithLabelValues("unauthenticated").Inc()
		return domain.Post{}, commonerrors.ErrUnauthenticated
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		metrics.PostsRejected.WithLabelValues("empty").Inc()
		return domain.Post{}, ErrValidation
	}
	if utf8.RuneCountInString(title) > constants.MaxPostTitleLength ||
		utf8.RuneCountInString(content) > constants.MaxPostContentLength {
		metrics.PostsRejected.WithLabelValues("too_long").Inc()
		return domain.Post{}, ErrTooLong
	}

	id, err := s.ids.NewID()
	if err != nil {
		return domain.Post{}, commonerrors.NewInternalError("POST_CREATE_FAILED", "internal server error", err)
	}

	post := domain.Post{
		ID:        id,
		Title:     title,
		Content:   content,
		Author:    session.Name,
		AuthorID:  session.UserID,
		// microseconds survive every store, so a reload returns the same value
		CreatedAt: s.clock.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.store.Append(ctx, post); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": session.UserID,
			"post_id": id,
			"action":  "post_append_failed",
		}).Errorf("create post failed: %v", err)
		if errors.Is(err, commonerrors.ErrCircuitOpen) {
			return domain.Post{}, commonerrors.ErrCircuitOpen
		}
		return domain.Post{}, commonerrors.NewInternalError("POST_CREATE_FAILED", "internal server error", err)
	}

	metrics.PostsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": session.UserID,
		"post_id": id,
		"action":  "post_created",
	}).Info("post created")

	return post, nil
}

// List returns the feed newest first.
func (s *FeedService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "post_list_failed",
		}).Errorf("list posts failed: %v", err)
		if errors.Is(err, commonerrors.ErrCircuitOpen) {
			return nil, commonerrors.ErrCircuitOpen
		}
		return nil, commonerrors.NewInternalError("POST_LIST_FAILED", "internal server error", err)
	}
	return posts, nil
}
