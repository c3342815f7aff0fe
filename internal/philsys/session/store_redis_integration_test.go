//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"idverify/internal/philsys/session"
	"idverify/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *session.Redis
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = session.NewRedis(s.redis.Client, 5*time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestMissOnEmptyCache() {
	_, ok := s.cache.Get(context.Background())
	s.False(ok)
}

func (s *RedisCacheSuite) TestSetThenGet() {
	ctx := context.Background()
	s.cache.Set(ctx, "session=abc; token=xyz")

	value, ok := s.cache.Get(ctx)
	s.Require().True(ok)
	s.Equal("session=abc; token=xyz", value)
}

func (s *RedisCacheSuite) TestExpiry() {
	ctx := context.Background()
	shortLived := session.NewRedis(s.redis.Client, 1*time.Second)
	shortLived.Set(ctx, "session=abc")

	s.Eventually(func() bool {
		_, ok := shortLived.Get(ctx)
		return !ok
	}, 5*time.Second, 200*time.Millisecond)
}
