package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/createconomy/cemvp/internal/models"
)

func newTestWaitlistService(repo WaitlistRepository) *WaitlistService {
	return NewWaitlistService(repo, WaitlistConfig{MaxPerIP: 5, Window: time.Hour}, discardLogger())
}

func strPtr(s string) *string {
	return &s
}

func TestWaitlistJoin_Success(t *testing.T) {
	var storedEmail string
	var storedIP *string
	repo := &MockWaitlistRepository{
		CreateFunc: func(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error) {
			storedEmail = email
			storedIP = ipAddress
			return &models.WaitlistEntry{ID: "w1", Email: email, IPAddress: ipAddress}, nil
		},
		CountFunc: func(ctx context.Context) (int, error) {
			return 42, nil
		},
	}
	svc := newTestWaitlistService(repo)

	position, err := svc.Join(context.Background(), "  fan@example.com ", strPtr("203.0.113.9"))

	require.NoError(t, err)
	assert.Equal(t, 42, position)
	assert.Equal(t, "fan@example.com", storedEmail)
	require.NotNil(t, storedIP)
	assert.Equal(t, "203.0.113.9", *storedIP)
}

func TestWaitlistJoin_InvalidEmail(t *testing.T) {
	repo := &MockWaitlistRepository{
		CreateFunc: func(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error) {
			t.Fatal("invalid email must not be stored")
			return nil, nil
		},
	}
	svc := newTestWaitlistService(repo)

	for _, email := range []string{"", "not-an-email", "a@", "@example.com"} {
		_, err := svc.Join(context.Background(), email, nil)
		assert.ErrorIs(t, err, models.ErrBadRequest, email)
	}
}

func TestWaitlistJoin_RateLimited(t *testing.T) {
	var since time.Time
	repo := &MockWaitlistRepository{
		CountByIPSinceFunc: func(ctx context.Context, ipAddress string, s time.Time) (int, error) {
			since = s
			return 5, nil
		},
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			t.Fatal("rate limit is checked before duplicates")
			return false, nil
		},
	}
	svc := newTestWaitlistService(repo)

	_, err := svc.Join(context.Background(), "fan@example.com", strPtr("203.0.113.9"))

	assert.ErrorIs(t, err, models.ErrRateLimited)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), since, 5*time.Second)
	assert.Equal(t, time.Hour, svc.RetryAfter())
}

func TestWaitlistJoin_UnderLimit(t *testing.T) {
	repo := &MockWaitlistRepository{
		CountByIPSinceFunc: func(ctx context.Context, ipAddress string, since time.Time) (int, error) {
			return 4, nil
		},
		CountFunc: func(ctx context.Context) (int, error) {
			return 5, nil
		},
	}
	svc := newTestWaitlistService(repo)

	position, err := svc.Join(context.Background(), "fan@example.com", strPtr("203.0.113.9"))

	require.NoError(t, err)
	assert.Equal(t, 5, position)
}

func TestWaitlistJoin_UnknownIPSkipsLimit(t *testing.T) {
	var storedIP *string = strPtr("sentinel")
	repo := &MockWaitlistRepository{
		CountByIPSinceFunc: func(ctx context.Context, ipAddress string, since time.Time) (int, error) {
			t.Fatal("unknown clients are not rate limited")
			return 0, nil
		},
		CreateFunc: func(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error) {
			storedIP = ipAddress
			return &models.WaitlistEntry{ID: "w1", Email: email}, nil
		},
		CountFunc: func(ctx context.Context) (int, error) {
			return 1, nil
		},
	}
	svc := newTestWaitlistService(repo)

	_, err := svc.Join(context.Background(), "fan@example.com", nil)

	require.NoError(t, err)
	assert.Nil(t, storedIP)
}

func TestWaitlistJoin_Duplicate(t *testing.T) {
	repo := &MockWaitlistRepository{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestWaitlistService(repo)

	_, err := svc.Join(context.Background(), "fan@example.com", nil)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestWaitlistJoin_DuplicateRace(t *testing.T) {
	repo := &MockWaitlistRepository{
		CreateFunc: func(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error) {
			return nil, models.ErrConflict
		},
	}
	svc := newTestWaitlistService(repo)

	_, err := svc.Join(context.Background(), "fan@example.com", nil)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestWaitlistJoin_StoreFailure(t *testing.T) {
	repo := &MockWaitlistRepository{
		CreateFunc: func(ctx context.Context, email string, ipAddress *string) (*models.WaitlistEntry, error) {
			return nil, errors.New("disk full")
		},
	}
	svc := newTestWaitlistService(repo)

	_, err := svc.Join(context.Background(), "fan@example.com", nil)
	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestWaitlistCount(t *testing.T) {
	repo := &MockWaitlistRepository{
		CountFunc: func(ctx context.Context) (int, error) {
			return 7, nil
		},
	}
	svc := newTestWaitlistService(repo)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	repo.CountFunc = func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	}
	_, err = svc.Count(context.Background())
	assert.ErrorIs(t, err, models.ErrInternalServer)
}
