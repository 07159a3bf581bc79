package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	key := ProfileCacheKey("alice")
	CacheSetJSON(key, map[string]string{"username": "alice"}, time.Minute)

	b, ok := CacheGetBytes(key)
	require.True(t, ok)
	assert.JSONEq(t, `{"username":"alice"}`, string(b))
}

func TestCacheGetMissingKey(t *testing.T) {
	_, ok := CacheGetBytes(ProfileCacheKey("nobody"))
	assert.False(t, ok)
}

func TestInvalidateByPrefixRemovesProfileEntries(t *testing.T) {
	CacheSetBytes(ProfileCacheKey("bob"), []byte(`{}`), time.Minute)
	CacheSetBytes(ProfileCacheKey("bobby"), []byte(`{}`), time.Minute)
	CacheSetBytes("cache:other:bob", []byte(`{}`), time.Minute)

	InvalidateByPrefix(ProfileCacheKey("bob"))

	_, ok := CacheGetBytes(ProfileCacheKey("bob"))
	assert.False(t, ok, "invalidated entry must not be served")
	_, ok = CacheGetBytes(ProfileCacheKey("bobby"))
	assert.False(t, ok, "prefix match covers longer usernames sharing the prefix")
	_, ok = CacheGetBytes("cache:other:bob")
	assert.True(t, ok, "keys outside the prefix survive")
}
