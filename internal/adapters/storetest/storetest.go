// Package storetest holds the behavioural contract every links.Store adapter
// must satisfy. Adapter packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tinylink/internal/app/links"
	"tinylink/internal/domain"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) links.Store

var base = time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Helper()

	cases := []struct {
		name string
		fn   func(t *testing.T, s links.Store)
	}{
		{"CreateAndFind", testCreateAndFind},
		{"DuplicateCodeConflicts", testDuplicateCodeConflicts},
		{"ConcurrentCreateSameCode", testConcurrentCreateSameCode},
		{"CodesAreCaseSensitive", testCodesAreCaseSensitive},
		{"FindMissing", testFindMissing},
		{"ResolveRecordsClick", testResolveRecordsClick},
		{"ResolveMissing", testResolveMissing},
		{"ConcurrentResolve", testConcurrentResolve},
		{"ListNewestFirst", testListNewestFirst},
		{"ListSearch", testListSearch},
		{"DeleteRemoves", testDeleteRemoves},
		{"Ping", testPing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func mustCreate(t *testing.T, s links.Store, code, target string, createdAt time.Time) domain.Link {
	t.Helper()

	link, err := s.TryCreate(context.Background(), domain.NewLink{
		Code:      code,
		TargetURL: target,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)

	return link
}

func testCreateAndFind(t *testing.T, s links.Store) {
	ctx := context.Background()

	created := mustCreate(t, s, "abc123de", "https://x.com", base)
	require.NotZero(t, created.ID)
	require.Equal(t, "abc123de", created.Code)
	require.Equal(t, "https://x.com", created.TargetURL)
	require.Zero(t, created.Clicks)
	require.Nil(t, created.LastClickedAt)
	require.True(t, base.Equal(created.CreatedAt), "created_at %s != %s", created.CreatedAt, base)

	found, err := s.FindByCode(ctx, "abc123de")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, created.TargetURL, found.TargetURL)
	require.True(t, base.Equal(found.CreatedAt))
}

func testDuplicateCodeConflicts(t *testing.T, s links.Store) {
	ctx := context.Background()

	first := mustCreate(t, s, "dupe01", "https://example.com/a", base)

	_, err := s.TryCreate(ctx, domain.NewLink{Code: "dupe01", TargetURL: "https://example.com/b", CreatedAt: base})
	require.ErrorIs(t, err, domain.ErrCodeConflict)

	found, err := s.FindByCode(ctx, "dupe01")
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)
	require.Equal(t, "https://example.com/a", found.TargetURL)

	all, err := s.List(ctx, links.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func testConcurrentCreateSameCode(t *testing.T, s links.Store) {
	const workers = 10

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start

			_, err := s.TryCreate(context.Background(), domain.NewLink{
				Code:      "race01",
				TargetURL: fmt.Sprintf("https://example.com/%d", i),
				CreatedAt: base,
			})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrCodeConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	require.Empty(t, others)
	require.Equal(t, 1, created)
	require.Equal(t, workers-1, conflicts)
}

func testCodesAreCaseSensitive(t *testing.T, s links.Store) {
	ctx := context.Background()

	upper := mustCreate(t, s, "AbC123", "https://example.com/upper", base)
	lower := mustCreate(t, s, "abc123", "https://example.com/lower", base.Add(time.Second))
	require.NotEqual(t, upper.ID, lower.ID)

	found, err := s.FindByCode(ctx, "AbC123")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/upper", found.TargetURL)
}

func testFindMissing(t *testing.T, s links.Store) {
	_, err := s.FindByCode(context.Background(), "nope123")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testResolveRecordsClick(t *testing.T, s links.Store) {
	ctx := context.Background()

	mustCreate(t, s, "clk1234", "https://x.com", base)

	clickAt := base.Add(time.Minute)
	target, err := s.ResolveAndRecord(ctx, "clk1234", clickAt)
	require.NoError(t, err)
	require.Equal(t, "https://x.com", target)

	found, err := s.FindByCode(ctx, "clk1234")
	require.NoError(t, err)
	require.Equal(t, int64(1), found.Clicks)
	require.NotNil(t, found.LastClickedAt)
	require.True(t, clickAt.Equal(*found.LastClickedAt), "last_clicked_at %s != %s", *found.LastClickedAt, clickAt)
	require.False(t, found.LastClickedAt.Before(found.CreatedAt))

	later := clickAt.Add(time.Hour)
	_, err = s.ResolveAndRecord(ctx, "clk1234", later)
	require.NoError(t, err)

	found, err = s.FindByCode(ctx, "clk1234")
	require.NoError(t, err)
	require.Equal(t, int64(2), found.Clicks)
	require.True(t, later.Equal(*found.LastClickedAt))
}

func testResolveMissing(t *testing.T, s links.Store) {
	_, err := s.ResolveAndRecord(context.Background(), "nope123", base)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testConcurrentResolve(t *testing.T, s links.Store) {
	const callers = 50

	mustCreate(t, s, "hot1234", "https://example.com/hot", base)
	mustCreate(t, s, "cold123", "https://example.com/cold", base)

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	targets := make(chan string, callers)

	start := make(chan struct{})
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start

			target, err := s.ResolveAndRecord(context.Background(), "hot1234", base.Add(time.Duration(i)*time.Millisecond))
			if err != nil {
				errs <- err
				return
			}
			targets <- target
		}(i)
	}

	close(start)
	wg.Wait()
	close(errs)
	close(targets)

	for err := range errs {
		require.NoError(t, err)
	}

	var n int
	for target := range targets {
		require.Equal(t, "https://example.com/hot", target)
		n++
	}
	require.Equal(t, callers, n)

	hot, err := s.FindByCode(context.Background(), "hot1234")
	require.NoError(t, err)
	require.Equal(t, int64(callers), hot.Clicks)

	cold, err := s.FindByCode(context.Background(), "cold123")
	require.NoError(t, err)
	require.Zero(t, cold.Clicks)
	require.Nil(t, cold.LastClickedAt)
}

func testListNewestFirst(t *testing.T, s links.Store) {
	ctx := context.Background()

	empty, err := s.List(ctx, links.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, empty)

	mustCreate(t, s, "old0001", "https://example.com/1", base)
	mustCreate(t, s, "new0003", "https://example.com/3", base.Add(2*time.Second))
	mustCreate(t, s, "mid0002", "https://example.com/2", base.Add(time.Second))

	items, err := s.List(ctx, links.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, []string{"new0003", "mid0002", "old0001"}, codes(items))
}

func testListSearch(t *testing.T, s links.Store) {
	ctx := context.Background()

	mustCreate(t, s, "Promo01", "https://shop.example.com/sale", base)
	mustCreate(t, s, "docs001", "https://docs.example.org/Guide", base.Add(time.Second))
	mustCreate(t, s, "misc001", "https://other.net/x", base.Add(2*time.Second))

	tests := []struct {
		search string
		want   []string
	}{
		{"promo", []string{"Promo01"}},
		{"GUIDE", []string{"docs001"}},
		{"example", []string{"docs001", "Promo01"}},
		{"001", []string{"misc001", "docs001"}},
		{"%", nil},
		{"_", nil},
		{"nothing-here", nil},
	}

	for _, tc := range tests {
		items, err := s.List(ctx, links.ListFilter{Search: tc.search})
		require.NoError(t, err, "search %q", tc.search)
		require.Equal(t, tc.want, codes(items), "search %q", tc.search)
	}
}

func testDeleteRemoves(t *testing.T, s links.Store) {
	ctx := context.Background()

	mustCreate(t, s, "gone123", "https://example.com", base)

	deleted, err := s.Delete(ctx, "gone123")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.Delete(ctx, "gone123")
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = s.FindByCode(ctx, "gone123")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.ResolveAndRecord(ctx, "gone123", base)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// The code is free again after removal.
	mustCreate(t, s, "gone123", "https://example.com/again", base.Add(time.Second))
}

func testPing(t *testing.T, s links.Store) {
	require.NoError(t, s.Ping(context.Background()))
}

func codes(items []domain.Link) []string {
	if len(items) == 0 {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Code)
	}

	return out
}
