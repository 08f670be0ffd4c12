package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/createconomy/cemvp/internal/database"
	"github.com/createconomy/cemvp/internal/models"
	"github.com/createconomy/cemvp/pkg/idx"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitlistRepository struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepository(db *database.DB) *WaitlistRepository {
	return &WaitlistRepository{pool: db.Pool}
}

// Create inserts a waitlist entry. Returns ErrConflict if the email is already registered.
func (r *WaitlistRepository) Create(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{
		ID:        idx.New(),
		Email:     email,
		IPAddress: ipAddress,
	}

	query := `
		INSERT INTO waitlist_emails (id, email, ip_address)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, entry.ID, entry.Email, entry.IPAddress).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return entry, nil
}

// ExistsByEmail reports whether the email is already on the waitlist
func (r *WaitlistRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM waitlist_emails WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check waitlist email: %w", err)
	}
	return exists, nil
}

// CountByIPSince counts entries created from ipAddress at or after since
func (r *WaitlistRepository) CountByIPSince(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM waitlist_emails WHERE ip_address = $1 AND created_at >= $2`,
		ipAddress, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries by ip: %w", err)
	}
	return count, nil
}

// Count returns the total number of waitlist entries
func (r *WaitlistRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM waitlist_emails`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}
	return count, nil
}
