//go:build integration

package redisstore_test

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"tinylink/internal/adapters/redisstore"
	"tinylink/internal/adapters/storetest"
	"tinylink/internal/app/links"
	"tinylink/internal/domain"
)

var (
	tcCtx = context.Background()
	rdb   *redis.Client
	seq   atomic.Int64
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	redisC, err := tcredis.Run(tcCtx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintln(os.Stderr, "start redis:", err)

		return 1
	}
	defer func() { _ = testcontainers.TerminateContainer(redisC) }()

	url, err := redisC.ConnectionString(tcCtx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "redis url:", err)

		return 1
	}

	rdb, err = redisstore.Open(tcCtx, url)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open redis:", err)

		return 1
	}
	defer func() { _ = rdb.Close() }()

	return m.Run()
}

// Each store gets its own key namespace so subtests never see each other.
func newStore() *redisstore.Store {
	return redisstore.New(rdb, redisstore.WithKeyPrefix(fmt.Sprintf("test%d:", seq.Add(1))))
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) links.Store {
		return newStore()
	})
}

func TestStore_ClampsClickBeforeCreation(t *testing.T) {
	s := newStore()

	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.TryCreate(tcCtx, domain.NewLink{Code: "skew123", TargetURL: "https://x.com", CreatedAt: createdAt})
	require.NoError(t, err)

	_, err = s.ResolveAndRecord(tcCtx, "skew123", createdAt.Add(-time.Minute))
	require.NoError(t, err)

	link, err := s.FindByCode(tcCtx, "skew123")
	require.NoError(t, err)
	require.True(t, createdAt.Equal(*link.LastClickedAt))
}

func TestStore_EqualCreationTimesOrderByID(t *testing.T) {
	s := newStore()

	for _, code := range []string{"zzz0001", "aaa0002"} {
		_, err := s.TryCreate(tcCtx, domain.NewLink{Code: code, TargetURL: "https://x.com", CreatedAt: time.Unix(100, 0)})
		require.NoError(t, err)
	}

	items, err := s.List(tcCtx, links.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "aaa0002", items[0].Code)
	require.Equal(t, "zzz0001", items[1].Code)
}

func TestStore_ClosedClientIsUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: rdb.Options().Addr})
	require.NoError(t, client.Close())

	s := redisstore.New(client)
	require.ErrorIs(t, s.Ping(tcCtx), domain.ErrStoreUnavailable)

	_, err := s.FindByCode(tcCtx, "abc123")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
