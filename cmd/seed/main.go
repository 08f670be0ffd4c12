// Command seed loads the launch blog posts. Safe to rerun: posts are upserted by slug.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/createconomy/cemvp/internal/config"
	"github.com/createconomy/cemvp/internal/database"
	"github.com/createconomy/cemvp/internal/models"
	"github.com/createconomy/cemvp/internal/repositories"
	"github.com/createconomy/cemvp/internal/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	blogService := services.NewBlogService(repositories.NewBlogRepository(db), logger)
	if err := blogService.Seed(ctx, launchPosts()); err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seeding completed")
}

func launchPosts() []*models.BlogPost {
	day := func(year int, month time.Month, d int) time.Time {
		return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	}

	return []*models.BlogPost{
		{
			Slug:        "welcome-to-createconomy",
			Title:       "Welcome to CreateConomy",
			Excerpt:     "Building the future of AI workflows. Join us on this exciting journey as we revolutionize how creators work with AI.",
			Category:    "Our Story",
			ReadTime:    5,
			PublishedAt: day(2024, time.January, 15),
		},
		{
			Slug:        "vision-behind-createconomy",
			Title:       "The Vision Behind CreateConomy",
			Excerpt:     "Discover why we're building an AI workflow marketplace and how it will empower creators worldwide.",
			Category:    "Our Story",
			ReadTime:    5,
			PublishedAt: day(2024, time.January, 20),
		},
		{
			Slug:        "launch-announcement",
			Title:       "Launch Announcement Coming Soon",
			Excerpt:     "Exciting news! Our official launch is approaching. Be the first to know by joining our waitlist.",
			Category:    "News",
			ReadTime:    5,
			PublishedAt: day(2024, time.January, 25),
		},
		{
			Slug:        "ai-workflows-future",
			Title:       "AI Workflows: The Future of Automation",
			Excerpt:     "Explore how AI-powered workflows are transforming productivity and creativity across industries.",
			Category:    "News",
			ReadTime:    5,
			PublishedAt: day(2024, time.February, 1),
		},
		{
			Slug:        "meet-the-team",
			Title:       "Meet the CreateConomy Team",
			Excerpt:     "Get to know the passionate team building the next generation of AI workflow tools.",
			Category:    "Our Story",
			ReadTime:    5,
			PublishedAt: day(2024, time.February, 5),
		},
		{
			Slug:        "beta-program-opening",
			Title:       "Beta Program Opening Soon",
			Excerpt:     "Join our exclusive beta program and be among the first to experience CreateConomy.",
			Category:    "News",
			ReadTime:    5,
			PublishedAt: day(2024, time.February, 10),
		},
	}
}
