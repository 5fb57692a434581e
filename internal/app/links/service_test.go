package links

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tinylink/internal/domain"
)

type stubStore struct {
	t testing.TB

	tryCreateFunc        func(context.Context, domain.NewLink) (domain.Link, error)
	findByCodeFunc       func(context.Context, string) (domain.Link, error)
	resolveAndRecordFunc func(context.Context, string, time.Time) (string, error)
	listFunc             func(context.Context, ListFilter) ([]domain.Link, error)
	deleteFunc           func(context.Context, string) (bool, error)
	pingFunc             func(context.Context) error
}

func (s *stubStore) TryCreate(ctx context.Context, link domain.NewLink) (domain.Link, error) {
	s.t.Helper()
	if s.tryCreateFunc == nil {
		s.t.Fatalf("unexpected TryCreate call")
	}
	return s.tryCreateFunc(ctx, link)
}

func (s *stubStore) FindByCode(ctx context.Context, code string) (domain.Link, error) {
	s.t.Helper()
	if s.findByCodeFunc == nil {
		s.t.Fatalf("unexpected FindByCode call")
	}
	return s.findByCodeFunc(ctx, code)
}

func (s *stubStore) ResolveAndRecord(ctx context.Context, code string, at time.Time) (string, error) {
	s.t.Helper()
	if s.resolveAndRecordFunc == nil {
		s.t.Fatalf("unexpected ResolveAndRecord call")
	}
	return s.resolveAndRecordFunc(ctx, code, at)
}

func (s *stubStore) List(ctx context.Context, filter ListFilter) ([]domain.Link, error) {
	s.t.Helper()
	if s.listFunc == nil {
		s.t.Fatalf("unexpected List call")
	}
	return s.listFunc(ctx, filter)
}

func (s *stubStore) Delete(ctx context.Context, code string) (bool, error) {
	s.t.Helper()
	if s.deleteFunc == nil {
		s.t.Fatalf("unexpected Delete call")
	}
	return s.deleteFunc(ctx, code)
}

func (s *stubStore) Ping(ctx context.Context) error {
	s.t.Helper()
	if s.pingFunc == nil {
		s.t.Fatalf("unexpected Ping call")
	}
	return s.pingFunc(ctx)
}

type seqGenerator struct {
	codes []string
	calls int
}

func (g *seqGenerator) Generate() (string, error) {
	code := g.codes[g.calls%len(g.codes)]
	g.calls++
	return code, nil
}

type failingGenerator struct{}

func (failingGenerator) Generate() (string, error) {
	return "", errors.New("entropy gone")
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestServiceCreate_CustomCode(t *testing.T) {
	ctx := context.Background()

	store := &stubStore{
		t: t,
		tryCreateFunc: func(ctx context.Context, link domain.NewLink) (domain.Link, error) {
			require.Equal(t, "abc123de", link.Code)
			require.Equal(t, "https://x.com", link.TargetURL)
			require.Equal(t, fixedNow, link.CreatedAt)
			return domain.Link{ID: 1, Code: link.Code, TargetURL: link.TargetURL, CreatedAt: link.CreatedAt}, nil
		},
	}

	svc := New(store, WithClock(fixedClock))
	link, err := svc.Create(ctx, "  https://x.com ", " abc123de ")
	require.NoError(t, err)
	require.Equal(t, "abc123de", link.Code)
	require.Zero(t, link.Clicks)
	require.Nil(t, link.LastClickedAt)
}

func TestServiceCreate_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		targetURL  string
		customCode string
		wantErr    error
	}{
		{"ftp url", "ftp://x.com", "", domain.ErrInvalidURL},
		{"empty url", "", "abc123", domain.ErrInvalidURL},
		{"not a url", "not-a-url", "", domain.ErrInvalidURL},
		{"code too short", "https://x.com", "ab1", domain.ErrInvalidCode},
		{"code too long", "https://x.com", "abcdefghi", domain.ErrInvalidCode},
		{"code with dash", "https://x.com", "abc-123", domain.ErrInvalidCode},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(&stubStore{t: t})
			_, err := svc.Create(ctx, tc.targetURL, tc.customCode)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestServiceCreate_CustomCodeConflictDoesNotRetry(t *testing.T) {
	ctx := context.Background()
	var calls int

	store := &stubStore{
		t: t,
		tryCreateFunc: func(ctx context.Context, link domain.NewLink) (domain.Link, error) {
			calls++
			return domain.Link{}, domain.ErrCodeConflict
		},
	}

	svc := New(store)
	_, err := svc.Create(ctx, "https://example.com", "abc123")
	require.ErrorIs(t, err, domain.ErrCodeConflict)
	require.NotErrorIs(t, err, domain.ErrCodeGenerationExhausted)
	require.Equal(t, 1, calls)
}

func TestServiceCreate_AutoCodeRetries(t *testing.T) {
	ctx := context.Background()
	var seen []string

	store := &stubStore{
		t: t,
		tryCreateFunc: func(ctx context.Context, link domain.NewLink) (domain.Link, error) {
			seen = append(seen, link.Code)
			if len(seen) < 3 {
				return domain.Link{}, domain.ErrCodeConflict
			}
			return domain.Link{ID: 7, Code: link.Code, TargetURL: link.TargetURL}, nil
		},
	}

	gen := &seqGenerator{codes: []string{"aaaaaaa", "bbbbbbb", "ccccccc"}}
	svc := New(store, WithGenerator(gen))

	link, err := svc.Create(ctx, "https://example.com", "")
	require.NoError(t, err)
	require.Equal(t, []string{"aaaaaaa", "bbbbbbb", "ccccccc"}, seen)
	require.Equal(t, "ccccccc", link.Code)
	require.Equal(t, 3, gen.calls)
}

func TestServiceCreate_AutoCodeExhausted(t *testing.T) {
	ctx := context.Background()
	var calls int

	store := &stubStore{
		t: t,
		tryCreateFunc: func(ctx context.Context, link domain.NewLink) (domain.Link, error) {
			calls++
			return domain.Link{}, domain.ErrCodeConflict
		},
	}

	svc := New(store)
	_, err := svc.Create(ctx, "https://example.com", "")
	require.ErrorIs(t, err, domain.ErrCodeGenerationExhausted)
	require.NotErrorIs(t, err, domain.ErrCodeConflict)
	require.Equal(t, autoCodeAttempts, calls)
	require.Equal(t, 5, calls)
}

func TestServiceCreate_AutoCodeStoreFailureStopsLoop(t *testing.T) {
	ctx := context.Background()
	var calls int
	boom := errors.Join(domain.ErrStoreUnavailable, errors.New("connection reset"))

	store := &stubStore{
		t: t,
		tryCreateFunc: func(ctx context.Context, link domain.NewLink) (domain.Link, error) {
			calls++
			return domain.Link{}, boom
		},
	}

	svc := New(store)
	_, err := svc.Create(ctx, "https://example.com", "")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.Equal(t, 1, calls)
}

func TestServiceCreate_GeneratorFailure(t *testing.T) {
	svc := New(&stubStore{t: t}, WithGenerator(failingGenerator{}))
	_, err := svc.Create(context.Background(), "https://example.com", "")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrCodeGenerationExhausted)
}

func TestServiceResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store := &stubStore{
			t: t,
			resolveAndRecordFunc: func(ctx context.Context, code string, at time.Time) (string, error) {
				require.Equal(t, "abc1234", code)
				require.Equal(t, fixedNow, at)
				return "https://x.com", nil
			},
		}

		svc := New(store, WithClock(fixedClock))
		target, err := svc.Resolve(ctx, "abc1234")
		require.NoError(t, err)
		require.Equal(t, "https://x.com", target)
	})

	t.Run("not found", func(t *testing.T) {
		store := &stubStore{
			t: t,
			resolveAndRecordFunc: func(ctx context.Context, code string, at time.Time) (string, error) {
				return "", domain.ErrNotFound
			},
		}

		svc := New(store)
		_, err := svc.Resolve(ctx, "abc1234")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed code skips store", func(t *testing.T) {
		svc := New(&stubStore{t: t})
		_, err := svc.Resolve(ctx, "doesnotexist")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		store := &stubStore{
			t: t,
			deleteFunc: func(ctx context.Context, code string) (bool, error) {
				return true, nil
			},
		}

		require.NoError(t, New(store).Delete(ctx, "abc123"))
	})

	t.Run("absent", func(t *testing.T) {
		store := &stubStore{
			t: t,
			deleteFunc: func(ctx context.Context, code string) (bool, error) {
				return false, nil
			},
		}

		require.ErrorIs(t, New(store).Delete(ctx, "abc123"), domain.ErrNotFound)
	})

	t.Run("malformed code", func(t *testing.T) {
		require.ErrorIs(t, New(&stubStore{t: t}).Delete(ctx, "a/b"), domain.ErrNotFound)
	})
}

func TestServiceList_TrimsSearch(t *testing.T) {
	store := &stubStore{
		t: t,
		listFunc: func(ctx context.Context, filter ListFilter) ([]domain.Link, error) {
			require.Equal(t, "example", filter.Search)
			return []domain.Link{{ID: 1, Code: "abc123"}}, nil
		},
	}

	items, err := New(store).List(context.Background(), "  example ")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestServicePing_WrapsStoreError(t *testing.T) {
	store := &stubStore{
		t: t,
		pingFunc: func(ctx context.Context) error {
			return errors.Join(domain.ErrStoreUnavailable, context.DeadlineExceeded)
		},
	}

	err := New(store).Ping(context.Background())
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
