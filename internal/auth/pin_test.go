package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinGenerator_Generate_SixDigitsInRange(t *testing.T) {
	g := NewPinGenerator(0)

	for i := 0; i < 1000; i++ {
		pin, err := g.Generate()
		require.NoError(t, err)
		require.Len(t, pin, 6)
		assert.NotEqual(t, byte('0'), pin[0], "pin must not start with zero")
		assert.GreaterOrEqual(t, pin, "100000")
		assert.LessOrEqual(t, pin, "999999")
	}
}

func TestPinGenerator_Generate_Varies(t *testing.T) {
	g := NewPinGenerator(0)
	seen := make(map[string]struct{})

	for i := 0; i < 50; i++ {
		pin, err := g.Generate()
		require.NoError(t, err)
		seen[pin] = struct{}{}
	}

	assert.Greater(t, len(seen), 1)
}

func TestPinGenerator_Expiration(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	g := NewPinGenerator(0)
	g.now = func() time.Time { return now }
	assert.Equal(t, now.Add(24*time.Hour), g.Expiration())

	g = NewPinGenerator(15 * time.Minute)
	g.now = func() time.Time { return now }
	assert.Equal(t, now.Add(15*time.Minute), g.Expiration())
}

func TestPinGenerator_IsExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewPinGenerator(0)
	g.now = func() time.Time { return now }

	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name    string
		expiry  *time.Time
		expired bool
	}{
		{"missing expiry", nil, true},
		{"expired one second ago", &past, true},
		{"exactly now", &now, false},
		{"valid for one more second", &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, g.IsExpired(tt.expiry))
		})
	}
}

func TestPinsEqual(t *testing.T) {
	assert.True(t, PinsEqual("123456", "123456"))
	assert.False(t, PinsEqual("123456", "123457"))
	assert.False(t, PinsEqual("123456", "12345"))
	assert.False(t, PinsEqual("123456", " 123456"))
}
