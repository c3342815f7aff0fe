package session

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheHitWithinTTL(t *testing.T) {
	clk := clock.NewMock()
	cache := NewMemory(clk, 5*time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx)
	require.False(t, ok)

	cache.Set(ctx, "session=abc")

	clk.Add(4 * time.Minute)
	value, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "session=abc", value)
}

func TestMemoryCacheExpires(t *testing.T) {
	clk := clock.NewMock()
	cache := NewMemory(clk, 5*time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "session=abc")
	clk.Add(5 * time.Minute)

	_, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryCacheSetRefreshesExpiry(t *testing.T) {
	clk := clock.NewMock()
	cache := NewMemory(clk, 5*time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "session=old")
	clk.Add(4 * time.Minute)
	cache.Set(ctx, "session=new")
	clk.Add(4 * time.Minute)

	value, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "session=new", value)
}
