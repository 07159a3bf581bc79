package utils

import (
	"sync"
	"time"
)

const (
	stateKeyPrefix     = "oauth:state:"
	blacklistKeyPrefix = "jwt:blacklist:"
)

// ttlSet is the single-instance fallback for short-lived auth state when redis
// is unreachable. Entries expire lazily on access.
type ttlSet struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newTTLSet() *ttlSet {
	return &ttlSet{entries: map[string]time.Time{}}
}

func (s *ttlSet) add(key string, expiresAt time.Time) {
	s.mu.Lock()
	s.entries[key] = expiresAt
	s.mu.Unlock()
}

// take removes the key and reports whether it was present and unexpired.
func (s *ttlSet) take(key string) bool {
	s.mu.Lock()
	expiresAt, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return ok && time.Now().Before(expiresAt)
}

func (s *ttlSet) contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		delete(s.entries, key)
		return false
	}
	return true
}

var (
	oauthStates   = newTTLSet()
	revokedTokens = newTTLSet()
)

// SaveState stores a single-use OAuth state token. Redis is the primary store
// so callbacks may land on any instance; memory catches a redis outage.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	if err := GetRedis().Set(ctx, stateKeyPrefix+state, "1", ttl).Err(); err != nil {
		oauthStates.add(state, time.Now().Add(ttl))
	}
}

// ConsumeState validates and removes a state token in one step.
func ConsumeState(state string) bool {
	ctx, cancel := cacheCtx()
	defer cancel()
	if v, err := GetRedis().GetDel(ctx, stateKeyPrefix+state).Result(); err == nil {
		return v != ""
	}
	return oauthStates.take(state)
}

// BlacklistToken revokes a JWT until its natural expiration.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	if err := GetRedis().Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err(); err != nil {
		revokedTokens.add(token, expiresAt)
	}
}

// IsTokenBlacklisted reports whether a token was revoked before expiring.
// A redis failure falls through to the memory set rather than rejecting the
// token, so a cache outage cannot log every user out.
func IsTokenBlacklisted(token string) bool {
	ctx, cancel := cacheCtx()
	defer cancel()
	if n, err := GetRedis().Exists(ctx, blacklistKeyPrefix+token).Result(); err == nil && n > 0 {
		return true
	}
	return revokedTokens.contains(token)
}
