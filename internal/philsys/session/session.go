package session

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Cache stores the short-lived PhilSys session cookie. Writes are
// idempotent replacements and reads may return a stale-but-unexpired value;
// no stronger consistency is needed.
type Cache interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, cookie string)
}

// Memory is the in-process cookie cache. The clock is injected so tests
// control expiry deterministically.
type Memory struct {
	clk clock.Clock
	ttl time.Duration

	mu        sync.RWMutex
	value     string
	expiresAt time.Time
}

func NewMemory(clk clock.Clock, ttl time.Duration) *Memory {
	return &Memory{clk: clk, ttl: ttl}
}

func (m *Memory) Get(_ context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == "" || !m.clk.Now().Before(m.expiresAt) {
		return "", false
	}
	return m.value, true
}

// Set replaces the cached cookie wholesale; the previous value is discarded
// rather than mutated.
func (m *Memory) Set(_ context.Context, cookie string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = cookie
	m.expiresAt = m.clk.Now().Add(m.ttl)
}
