package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginAttemptLocked(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		attempts int
		age      time.Duration
		want     bool
	}{
		{name: "below threshold", attempts: 4, age: time.Minute, want: false},
		{name: "at threshold inside window", attempts: 5, age: 14 * time.Minute, want: true},
		{name: "at threshold window elapsed", attempts: 5, age: 15 * time.Minute, want: false},
		{name: "over threshold inside window", attempts: 9, age: 0, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := LoginAttempt{Email: "a@example.com", Attempts: tc.attempts, UpdatedAt: now.Add(-tc.age)}
			assert.Equal(t, tc.want, a.Locked(now))
		})
	}
}

func TestTokenExpiryIsInclusive(t *testing.T) {
	now := time.Now().UTC()
	tok := EmailVerificationToken{ExpiresAt: now}
	assert.True(t, tok.Expired(now))
	assert.False(t, tok.Expired(now.Add(-time.Second)))

	reset := PasswordResetToken{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, reset.Expired(now))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
