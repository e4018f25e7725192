//go:build integration

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"carehub/internal/registry/cache"
	id "carehub/pkg/domain"
	"carehub/pkg/platform/sentinel"
	"carehub/pkg/testutil/containers"
)

type ReputationCacheSuite struct {
	suite.Suite
	client *redis.Client
	cache  *cache.Reputation
	ctx    context.Context
}

func (s *ReputationCacheSuite) SetupSuite() {
	s.client = containers.NewRedisContainer(s.T()).Client
	s.cache = cache.New(s.client, time.Minute)
	s.ctx = context.Background()
}

func TestReputationCacheSuite(t *testing.T) {
	suite.Run(t, new(ReputationCacheSuite))
}

func (s *ReputationCacheSuite) TestRoundTrip() {
	ada := id.Identity("0xada")

	_, err := s.cache.Score(s.ctx, ada)
	s.Require().True(errors.Is(err, sentinel.ErrNotFound), "cold cache must miss")

	s.Require().NoError(s.cache.SetScore(s.ctx, ada, 42))
	score, err := s.cache.Score(s.ctx, ada)
	s.Require().NoError(err)
	s.Equal(uint64(42), score)

	s.Require().NoError(s.cache.Invalidate(s.ctx, ada))
	_, err = s.cache.Score(s.ctx, ada)
	s.Require().True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *ReputationCacheSuite) TestExpiry() {
	short := cache.New(s.client, time.Second)
	ada := id.Identity("0xexpiry")

	s.Require().NoError(short.SetScore(s.ctx, ada, 7))
	require.Eventually(s.T(), func() bool {
		_, err := short.Score(s.ctx, ada)
		return errors.Is(err, sentinel.ErrNotFound)
	}, 5*time.Second, 100*time.Millisecond)
}
