package repositories

import (
	"context"
	"fmt"

	"github.com/createconomy/cemvp/internal/database"
	"github.com/createconomy/cemvp/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BlogRepository struct {
	db *database.DB
}

func NewBlogRepository(db *database.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

const blogColumns = `id, slug, title, excerpt, category, featured_image, author_name, author_avatar, read_time, published_at`

func scanBlogRow(scanner rowScanner) (*models.BlogPost, error) {
	var p models.BlogPost
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Category,
		&p.FeaturedImage, &p.AuthorName, &p.AuthorAvatar, &p.ReadTime, &p.PublishedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

func scanBlogRows(rows pgx.Rows) ([]*models.BlogPost, error) {
	defer rows.Close()

	posts := make([]*models.BlogPost, 0)
	for rows.Next() {
		post, err := scanBlogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return posts, nil
}

// List returns published posts newest first. An empty category returns all posts.
func (r *BlogRepository) List(ctx context.Context, category string, limit int) ([]*models.BlogPost, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blog_posts
		WHERE published_at <= NOW() AND ($1 = '' OR category = $1)
		ORDER BY published_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query blog posts: %w", err)
	}
	return scanBlogRows(rows)
}

// GetBySlug returns a single published post
func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = $1 AND published_at <= NOW()`

	return scanBlogRow(r.db.Pool.QueryRow(ctx, query, slug))
}

// Upsert creates or refreshes a post keyed by slug
func (r *BlogRepository) Upsert(ctx context.Context, post *models.BlogPost) error {
	return upsertBlogPost(ctx, r.db.Pool, post)
}

// UpsertAll writes every post in a single transaction
func (r *BlogRepository) UpsertAll(ctx context.Context, posts []*models.BlogPost) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, post := range posts {
			if err := upsertBlogPost(ctx, tx, post); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertBlogPost(ctx context.Context, q database.Querier, post *models.BlogPost) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	query := `
		INSERT INTO blog_posts (id, slug, title, excerpt, category, featured_image, author_name, author_avatar, read_time, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			title          = EXCLUDED.title,
			excerpt        = EXCLUDED.excerpt,
			category       = EXCLUDED.category,
			featured_image = EXCLUDED.featured_image,
			author_name    = EXCLUDED.author_name,
			author_avatar  = EXCLUDED.author_avatar,
			read_time      = EXCLUDED.read_time,
			published_at   = EXCLUDED.published_at,
			updated_at     = NOW()
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		post.ID, post.Slug, post.Title, post.Excerpt, post.Category,
		post.FeaturedImage, post.AuthorName, post.AuthorAvatar, post.ReadTime, post.PublishedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert blog post %q: %w", post.Slug, database.MapPostgresError(err))
	}
	return nil
}
