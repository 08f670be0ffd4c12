package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/createconomy/cemvp/internal/models"
	pkghttp "github.com/createconomy/cemvp/pkg/http"
)

// BlogServiceInterface defines the blog read operations
type BlogServiceInterface interface {
	List(ctx context.Context, category string) ([]*models.BlogPost, error)
	Get(ctx context.Context, slug string) (*models.BlogPost, error)
}

// BlogHandler serves published blog posts
type BlogHandler struct {
	service BlogServiceInterface
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(service BlogServiceInterface) *BlogHandler {
	return &BlogHandler{service: service}
}

// List handles GET /api/blog
//
// @Summary List published posts
// @Tags blog
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} BlogListResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/blog [get]
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(BlogListResponse{Posts: posts, Count: len(posts)})
}

// Get handles GET /api/blog/{slug}
//
// @Summary Get a published post
// @Tags blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/blog/{slug} [get]
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(post)
}
