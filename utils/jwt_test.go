package utils

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain points the singleton redis client at an embedded server so the
// cache and auth-state paths run against real redis semantics.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "unit-test-secret")

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("start embedded redis: %v", err)
	}
	os.Setenv("REDIS_HOST", mr.Host())
	os.Setenv("REDIS_PORT", mr.Port())

	code := m.Run()
	mr.Close()
	os.Exit(code)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("u1", "alice", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	token, err := GenerateToken("u1", "alice", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("u1", "alice", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}
