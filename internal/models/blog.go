package models

import "time"

// BlogPost is a published marketing article
type BlogPost struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	Category      string    `json:"category"`
	FeaturedImage *string   `json:"featured_image,omitempty"`
	AuthorName    *string   `json:"author_name,omitempty"`
	AuthorAvatar  *string   `json:"author_avatar,omitempty"`
	ReadTime      int       `json:"read_time"`
	PublishedAt   time.Time `json:"published_at"`
}
