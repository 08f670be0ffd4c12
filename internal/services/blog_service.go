package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/createconomy/cemvp/internal/models"
)

const maxBlogPosts = 100

// BlogRepository defines the blog store operations
type BlogRepository interface {
	List(ctx context.Context, category string, limit int) ([]*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	UpsertAll(ctx context.Context, posts []*models.BlogPost) error
}

// BlogService serves published blog posts
type BlogService struct {
	repo   BlogRepository
	logger *slog.Logger
}

// NewBlogService creates a new BlogService
func NewBlogService(repo BlogRepository, logger *slog.Logger) *BlogService {
	return &BlogService{repo: repo, logger: logger}
}

// List returns published posts, newest first, optionally limited to one category
func (s *BlogService) List(ctx context.Context, category string) ([]*models.BlogPost, error) {
	posts, err := s.repo.List(ctx, strings.TrimSpace(category), maxBlogPosts)
	if err != nil {
		s.logger.Error("failed to list blog posts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return posts, nil
}

// Get returns the published post with the given slug
func (s *BlogService) Get(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get blog post", slog.String("slug", slug), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return post, nil
}

// Seed upserts posts by slug. Either every post is written or none is.
func (s *BlogService) Seed(ctx context.Context, posts []*models.BlogPost) error {
	if err := s.repo.UpsertAll(ctx, posts); err != nil {
		return err
	}
	for _, post := range posts {
		s.logger.Info("blog post seeded", slog.String("slug", post.Slug))
	}
	return nil
}
