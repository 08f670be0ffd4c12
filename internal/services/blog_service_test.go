package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/createconomy/cemvp/internal/models"
)

func TestBlogList(t *testing.T) {
	var gotCategory string
	var gotLimit int
	repo := &MockBlogRepository{
		ListFunc: func(ctx context.Context, category string, limit int) ([]*models.BlogPost, error) {
			gotCategory = category
			gotLimit = limit
			return []*models.BlogPost{{Slug: "launch-announcement"}}, nil
		},
	}
	svc := NewBlogService(repo, discardLogger())

	posts, err := svc.List(context.Background(), " Announcements ")

	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, "Announcements", gotCategory)
	assert.Equal(t, maxBlogPosts, gotLimit)
}

func TestBlogList_Error(t *testing.T) {
	repo := &MockBlogRepository{
		ListFunc: func(ctx context.Context, category string, limit int) ([]*models.BlogPost, error) {
			return nil, errors.New("boom")
		},
	}
	svc := NewBlogService(repo, discardLogger())

	_, err := svc.List(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestBlogGet(t *testing.T) {
	svc := NewBlogService(&MockBlogRepository{}, discardLogger())

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	repo := &MockBlogRepository{
		GetBySlugFunc: func(ctx context.Context, slug string) (*models.BlogPost, error) {
			return &models.BlogPost{Slug: slug, Title: "Meet the Team"}, nil
		},
	}
	svc = NewBlogService(repo, discardLogger())

	post, err := svc.Get(context.Background(), "meet-the-team")
	require.NoError(t, err)
	assert.Equal(t, "Meet the Team", post.Title)
}

func TestBlogSeed(t *testing.T) {
	var seeded []string
	repo := &MockBlogRepository{
		UpsertAllFunc: func(ctx context.Context, posts []*models.BlogPost) error {
			for _, post := range posts {
				seeded = append(seeded, post.Slug)
			}
			return nil
		},
	}
	svc := NewBlogService(repo, discardLogger())

	err := svc.Seed(context.Background(), []*models.BlogPost{{Slug: "a"}, {Slug: "b"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seeded)
}

func TestBlogSeed_Error(t *testing.T) {
	repo := &MockBlogRepository{
		UpsertAllFunc: func(ctx context.Context, posts []*models.BlogPost) error {
			return errors.New("tx aborted")
		},
	}
	svc := NewBlogService(repo, discardLogger())

	err := svc.Seed(context.Background(), []*models.BlogPost{{Slug: "a"}})

	assert.Error(t, err)
}
