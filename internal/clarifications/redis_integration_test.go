//go:build integration

package clarifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/JaimeStill/vetter/internal/clarifications"
)

type RedisLedgerSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	ledger    *clarifications.Redis
}

func TestRedisLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLedgerSuite))
}

func (s *RedisLedgerSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	opts, err := redis.ParseURL(url)
	s.Require().NoError(err)

	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(ctx).Err())
	s.ledger = clarifications.NewRedis(s.client, 2*time.Second)
}

func (s *RedisLedgerSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RedisLedgerSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisLedgerSuite) TestOpenFindTake() {
	ctx := context.Background()

	opened, err := s.ledger.Open(ctx, "fp-1", questions, "v1")
	s.Require().NoError(err)

	found, err := s.ledger.Find(ctx, opened.ID)
	s.Require().NoError(err)
	s.Equal(opened.Questions, found.Questions)
	s.Equal(opened.Fingerprint, found.Fingerprint)
	s.True(opened.ExpiresAt.Equal(found.ExpiresAt))

	_, err = s.ledger.Take(ctx, opened.ID)
	s.Require().NoError(err)

	_, err = s.ledger.Take(ctx, opened.ID)
	s.ErrorIs(err, clarifications.ErrSessionNotFound)
}

func (s *RedisLedgerSuite) TestExpiry() {
	ctx := context.Background()

	opened, err := s.ledger.Open(ctx, "fp-2", questions, "v1")
	s.Require().NoError(err)

	ttl, err := s.client.TTL(ctx, "vetter:clarification:"+opened.ID.String()).Result()
	s.Require().NoError(err)
	s.Positive(ttl)

	s.Eventually(func() bool {
		_, err := s.ledger.Find(ctx, opened.ID)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}
