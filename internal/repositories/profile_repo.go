package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/createconomy/cemvp/internal/database"
	"github.com/createconomy/cemvp/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const profileColumns = `id, user_id, email, username, full_name, first_name, last_name, avatar_url, phone,
	role, mfa_enabled, mfa_verified, mfa_pin, mfa_pin_expires, password_set, created_at, updated_at`

func scanProfileRow(scanner rowScanner) (*models.Profile, error) {
	var p models.Profile
	var role string

	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Email, &p.Username, &p.FullName, &p.FirstName, &p.LastName, &p.AvatarURL, &p.Phone,
		&role, &p.MFAEnabled, &p.MFAVerified, &p.MFAPin, &p.MFAPinExpires, &p.PasswordSet,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	p.Role = models.Role(role)

	return &p, nil
}

// GetByUserID looks up the profile owned by an identity provider user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	return scanProfileRow(r.pool.QueryRow(ctx, query, userID))
}

// Create inserts a new profile. Returns ErrConflict when a profile for the
// same user already exists.
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}

	now := time.Now()

	query := `
		INSERT INTO profiles (id, user_id, email, username, full_name, first_name, last_name, avatar_url, phone,
			role, mfa_enabled, mfa_verified, password_set, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + profileColumns

	created, err := scanProfileRow(r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.Email, p.Username, p.FullName, p.FirstName, p.LastName, p.AvatarURL, p.Phone,
		string(p.Role), p.MFAEnabled, p.MFAVerified, p.PasswordSet, now,
	))
	if err != nil {
		// DO NOTHING returns no row when another request created the profile first
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return created, nil
}

// ApplyPatch overwrites the fields present in patch, keeping stored values for the rest
func (r *ProfileRepository) ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	query := `
		UPDATE profiles SET
			email      = COALESCE($2, email),
			username   = COALESCE($3, username),
			full_name  = COALESCE($4, full_name),
			first_name = COALESCE($5, first_name),
			last_name  = COALESCE($6, last_name),
			avatar_url = COALESCE($7, avatar_url),
			phone      = COALESCE($8, phone),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns

	return scanProfileRow(r.pool.QueryRow(ctx, query, userID,
		patch.Email, patch.Username, patch.FullName, patch.FirstName, patch.LastName, patch.AvatarURL, patch.Phone,
	))
}

// UpsertOAuthAccount links a provider account to a profile, refreshing provider details
// when the (provider, provider_id) pair is already linked
func (r *ProfileRepository) UpsertOAuthAccount(ctx context.Context, acct *models.OAuthAccount) error {
	if acct.ID == "" {
		acct.ID = uuid.New().String()
	}
	if acct.ProviderData == nil {
		acct.ProviderData = map[string]any{}
	}

	query := `
		INSERT INTO oauth_accounts (id, profile_id, provider, provider_id, provider_email, provider_username, provider_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider, provider_id) DO UPDATE SET
			provider_email    = EXCLUDED.provider_email,
			provider_username = EXCLUDED.provider_username,
			provider_data     = EXCLUDED.provider_data,
			updated_at        = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		acct.ID, acct.ProfileID, string(acct.Provider), acct.ProviderID,
		acct.ProviderEmail, acct.ProviderUsername, acct.ProviderData,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert oauth account: %w", database.MapPostgresError(err))
	}
	return nil
}

// ListOAuthAccounts returns the provider accounts linked to a profile
func (r *ProfileRepository) ListOAuthAccounts(ctx context.Context, profileID string) ([]*models.OAuthAccount, error) {
	query := `
		SELECT id, profile_id, provider, provider_id, provider_email, provider_username, provider_data, created_at, updated_at
		FROM oauth_accounts WHERE profile_id = $1 ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query oauth accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.OAuthAccount, 0)
	for rows.Next() {
		var a models.OAuthAccount
		var provider string
		if err := rows.Scan(&a.ID, &a.ProfileID, &provider, &a.ProviderID, &a.ProviderEmail,
			&a.ProviderUsername, &a.ProviderData, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan oauth account: %w", err)
		}
		a.Provider = models.OAuthProvider(provider)
		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return accounts, nil
}

// CreateSellerInfo creates the seller extension record for a profile
func (r *ProfileRepository) CreateSellerInfo(ctx context.Context, profileID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO seller_info (id, profile_id) VALUES ($1, $2)`,
		uuid.New().String(), profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to create seller info: %w", database.MapPostgresError(err))
	}
	return nil
}

// CreateAdminInfo creates the admin extension record with the given permissions
func (r *ProfileRepository) CreateAdminInfo(ctx context.Context, profileID string, permissions []string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admin_info (id, profile_id, permissions) VALUES ($1, $2, $3)`,
		uuid.New().String(), profileID, pq.Array(permissions),
	)
	if err != nil {
		return fmt.Errorf("failed to create admin info: %w", database.MapPostgresError(err))
	}
	return nil
}

// GetAdminInfo returns the admin extension record of a profile
func (r *ProfileRepository) GetAdminInfo(ctx context.Context, profileID string) (*models.AdminInfo, error) {
	return scanAdminInfo(r.pool.QueryRow(ctx,
		`SELECT id, profile_id, permissions, created_at FROM admin_info WHERE profile_id = $1`,
		profileID,
	))
}

// permissions is read back as a native []string; pgx requests text[] in binary format
func scanAdminInfo(scanner rowScanner) (*models.AdminInfo, error) {
	var info models.AdminInfo
	if err := scanner.Scan(&info.ID, &info.ProfileID, &info.Permissions, &info.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &info, nil
}

// EnableMFA turns on PIN verification for a profile and stores its first PIN.
// The password is marked as not yet set.
func (r *ProfileRepository) EnableMFA(ctx context.Context, userID, pin string, expiresAt time.Time) error {
	query := `
		UPDATE profiles SET
			mfa_enabled = TRUE,
			mfa_verified = FALSE,
			mfa_pin = $2,
			mfa_pin_expires = $3,
			password_set = FALSE,
			updated_at = NOW()
		WHERE user_id = $1
	`
	return r.execOne(ctx, "enable mfa", query, userID, pin, expiresAt)
}

// SetMFAPin stores a freshly issued PIN and clears the verified flag
func (r *ProfileRepository) SetMFAPin(ctx context.Context, userID, pin string, expiresAt time.Time) error {
	query := `
		UPDATE profiles SET mfa_pin = $2, mfa_pin_expires = $3, mfa_verified = FALSE, updated_at = NOW()
		WHERE user_id = $1
	`
	return r.execOne(ctx, "set mfa pin", query, userID, pin, expiresAt)
}

// MarkMFAVerified records a successful PIN verification
func (r *ProfileRepository) MarkMFAVerified(ctx context.Context, userID string) error {
	query := `UPDATE profiles SET mfa_verified = TRUE, updated_at = NOW() WHERE user_id = $1`
	return r.execOne(ctx, "mark mfa verified", query, userID)
}

// SetPasswordSet records whether the user has completed password setup
func (r *ProfileRepository) SetPasswordSet(ctx context.Context, userID string, passwordSet bool) error {
	query := `UPDATE profiles SET password_set = $2, updated_at = NOW() WHERE user_id = $1`
	return r.execOne(ctx, "set password flag", query, userID, passwordSet)
}

// ScrubExpiredPins clears stored PIN values whose expiry has passed.
// The expiry itself is kept.
func (r *ProfileRepository) ScrubExpiredPins(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE profiles SET mfa_pin = NULL, updated_at = NOW()
		WHERE mfa_pin IS NOT NULL AND mfa_pin_expires < $1
	`

	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to scrub expired pins: %w", err)
	}
	return result.RowsAffected(), nil
}

// execOne runs an update that must touch exactly one profile
func (r *ProfileRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

