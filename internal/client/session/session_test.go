package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestParse(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(time.Hour)

	tests := []struct {
		name         string
		claims       Claims
		wantUserID   string
		wantUsername string
		wantExpires  time.Time
	}{
		{
			name: "custom claims",
			claims: Claims{
				UserID:   "u1",
				Username: "alice",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(expires),
					IssuedAt:  jwt.NewNumericDate(issued),
				},
			},
			wantUserID:   "u1",
			wantUsername: "alice",
			wantExpires:  expires,
		},
		{
			name: "subject fallback",
			claims: Claims{
				Name: "bob",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "u2",
					ExpiresAt: jwt.NewNumericDate(expires),
				},
			},
			wantUserID:   "u2",
			wantUsername: "bob",
			wantExpires:  expires,
		},
		{
			name:       "no expiry",
			claims:     Claims{UserID: "u3"},
			wantUserID: "u3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(signed(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.wantUserID, s.UserID)
			assert.Equal(t, tt.wantUsername, s.Username)
			assert.True(t, tt.wantExpires.Equal(s.ExpiresAt), "expires %v", s.ExpiresAt)
		})
	}
}

func TestParse_BearerPrefix(t *testing.T) {
	token := signed(t, Claims{UserID: "u1"})
	s, err := Parse("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s := &Session{ExpiresAt: now.Add(30 * time.Minute)}
	assert.False(t, s.Expired(now))
	assert.Equal(t, 30*time.Minute, s.Remaining(now))

	assert.True(t, s.Expired(now.Add(30*time.Minute)))
	assert.Equal(t, time.Duration(0), s.Remaining(now.Add(time.Hour)))

	forever := &Session{}
	assert.False(t, forever.Expired(now))
	assert.Equal(t, time.Duration(0), forever.Remaining(now))
}
