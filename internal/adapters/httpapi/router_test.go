package httpapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"tinylink/internal/adapters/httpapi"
	"tinylink/internal/adapters/httpapi/dto"
	"tinylink/internal/adapters/httpapi/stack"
	"tinylink/internal/adapters/memory"
	"tinylink/internal/app/links"
	"tinylink/internal/domain"
	testhttp "tinylink/internal/testing/httptest"
	"tinylink/internal/testutils"
)

const baseURL = "http://sho.rt"

func newRouter(t *testing.T, store links.Store) *gin.Engine {
	t.Helper()

	return newRouterWithBudget(t, store, time.Second)
}

func newRouterWithBudget(t *testing.T, store links.Store, budget time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := httpapi.NewEngine(
		stack.RequestID(),
		stack.Recovery(log),
		stack.RequestTimeout(budget),
	)
	httpapi.RegisterRoutes(r, httpapi.RouterDeps{
		Links:     links.New(store),
		BaseURL:   baseURL,
		Version:   "test",
		StartedAt: time.Now().Add(-time.Minute),
		Logger:    log,
	})

	return r
}

func createLink(t *testing.T, r http.Handler, body map[string]any) *http.Response {
	t.Helper()

	return testhttp.Do(r, testhttp.NewJSONRequest(t, http.MethodPost, "/api/links", body))
}

func TestAPI_Scenario(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	resp := createLink(t, r, map[string]any{"targetUrl": "https://x.com", "customCode": "abc123de"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "/api/links/abc123de", resp.Header.Get("Location"))

	created := testhttp.DecodeJSON[dto.LinkResponse](t, resp.Body)
	require.Equal(t, "abc123de", created.Code)
	require.Equal(t, "https://x.com", created.TargetURL)
	require.Equal(t, baseURL+"/abc123de", created.ShortURL)
	require.Zero(t, created.Clicks)
	require.Nil(t, created.LastClickedAt)

	resp = createLink(t, r, map[string]any{"targetUrl": "https://y.com", "customCode": "abc123de"})
	p := testutils.RequireProblem(t, resp, http.StatusConflict, "conflict")
	require.Equal(t, "code already exists", p.Detail)

	resp = createLink(t, r, map[string]any{"targetUrl": "https://x.com", "customCode": "ab1"})
	testutils.RequireFieldError(t, resp, "customCode")

	resp = createLink(t, r, map[string]any{"targetUrl": "ftp://x.com"})
	testutils.RequireFieldError(t, resp, "targetUrl")

	resp = testhttp.Get(r, "/doesnotexist")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestAPI_RedirectCountsClicks(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	resp := createLink(t, r, map[string]any{"targetUrl": "https://x.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := testhttp.DecodeJSON[dto.LinkResponse](t, resp.Body)
	require.Len(t, created.Code, 7)

	resp = testhttp.Get(r, "/"+created.Code)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "https://x.com", resp.Header.Get("Location"))
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp = testhttp.Get(r, "/api/links/"+created.Code)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := testhttp.DecodeJSON[dto.LinkResponse](t, resp.Body)
	require.Equal(t, int64(1), got.Clicks)
	require.NotNil(t, got.LastClickedAt)
	require.False(t, got.LastClickedAt.Before(got.CreatedAt))
}

func TestAPI_CreateAcceptsLongTargetURL(t *testing.T) {
	r := newRouter(t, memory.NewStore())
	target := "https://example.com/" + strings.Repeat("a", 4096)

	resp := createLink(t, r, map[string]any{"targetUrl": target})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := testhttp.DecodeJSON[dto.LinkResponse](t, resp.Body)
	require.Equal(t, target, created.TargetURL)

	resp = testhttp.Get(r, "/"+created.Code)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, target, resp.Header.Get("Location"))
}

func TestAPI_ConcurrentRedirects(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	resp := createLink(t, r, map[string]any{"targetUrl": "https://x.com", "customCode": "hot1234"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	const n = 40
	var wg sync.WaitGroup
	statuses := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses <- testhttp.Get(r, "/hot1234").StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	for s := range statuses {
		require.Equal(t, http.StatusFound, s)
	}

	resp = testhttp.Get(r, "/api/links/hot1234")
	got := testhttp.DecodeJSON[dto.LinkResponse](t, resp.Body)
	require.Equal(t, int64(n), got.Clicks)
}

func TestAPI_ListAndSearch(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	for _, body := range []map[string]any{
		{"targetUrl": "https://example.com/a", "customCode": "first01"},
		{"targetUrl": "https://docs.example.org/b", "customCode": "second1"},
	} {
		resp := createLink(t, r, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		time.Sleep(2 * time.Millisecond)
	}

	resp := testhttp.Get(r, "/api/links")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := testhttp.DecodeJSON[[]dto.LinkResponse](t, resp.Body)
	require.Len(t, all, 2)
	require.Equal(t, "second1", all[0].Code)
	require.Equal(t, "first01", all[1].Code)

	resp = testhttp.Get(r, "/api/links?q=DOCS")
	found := testhttp.DecodeJSON[[]dto.LinkResponse](t, resp.Body)
	require.Len(t, found, 1)
	require.Equal(t, "second1", found[0].Code)

	resp = testhttp.Get(r, "/api/links?q=nothing")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(body))
}

func TestAPI_Delete(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	resp := createLink(t, r, map[string]any{"targetUrl": "https://x.com", "customCode": "gone123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testhttp.Do(r, httptest.NewRequest(http.MethodDelete, "/api/links/gone123", nil))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = testhttp.Do(r, httptest.NewRequest(http.MethodDelete, "/api/links/gone123", nil))
	testutils.RequireProblem(t, resp, http.StatusNotFound, "about:blank")

	resp = testhttp.Get(r, "/gone123")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = testhttp.Get(r, "/api/links/gone123")
	testutils.RequireProblem(t, resp, http.StatusNotFound, "about:blank")
}

func TestAPI_CreateRejectsBadBodies(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	tests := []struct {
		name     string
		body     string
		wantType string
	}{
		{"not json", `{"targetUrl":`, "invalid_json"},
		{"unknown field", `{"targetUrl":"https://x.com","extra":1}`, "invalid_json"},
		{"trailing data", `{"targetUrl":"https://x.com"} {}`, "invalid_json"},
		{"missing url", `{}`, "validation_error"},
		{"blank url", `{"targetUrl":"   "}`, "validation_error"},
		{"code with dash", `{"targetUrl":"https://x.com","customCode":"abc-123"}`, "validation_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			testutils.RequireProblem(t, testhttp.Do(r, req), http.StatusBadRequest, tc.wantType)
		})
	}
}

func TestAPI_UnknownRoute(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	resp := testhttp.Get(r, "/api/nope/deeper")
	testutils.RequireProblem(t, resp, http.StatusNotFound, "about:blank")
}

func TestAPI_PingAndHealth(t *testing.T) {
	r := newRouter(t, memory.NewStore())

	resp := testhttp.Get(r, "/ping")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = testhttp.Get(r, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := testhttp.DecodeJSON[dto.HealthResponse](t, resp.Body)
	require.True(t, health.OK)
	require.Equal(t, "test", health.Version)
	require.Equal(t, "connected", health.Database)
	require.GreaterOrEqual(t, health.Uptime, 60.0)
}

func TestAPI_HealthReportsDisconnectedStore(t *testing.T) {
	r := newRouter(t, downStore{memory.NewStore()})

	resp := testhttp.Get(r, "/healthz")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	health := testhttp.DecodeJSON[dto.HealthResponse](t, resp.Body)
	require.False(t, health.OK)
	require.Equal(t, "disconnected", health.Database)
}

func TestAPI_StoreFailureIsInternalError(t *testing.T) {
	r := newRouter(t, downStore{memory.NewStore()})

	resp := testhttp.Get(r, "/api/links")
	testutils.RequireProblem(t, resp, http.StatusInternalServerError, "store_unavailable")
}

func TestAPI_StoreTimeoutIsGatewayTimeout(t *testing.T) {
	r := newRouterWithBudget(t, slowStore{memory.NewStore()}, 20*time.Millisecond)

	resp := testhttp.Get(r, "/api/links")
	testutils.RequireProblem(t, resp, http.StatusGatewayTimeout, "timeout")
}

var errDown = errors.Join(domain.ErrStoreUnavailable, errors.New("connection refused"))

// downStore fails every listing and ping.
type downStore struct {
	*memory.Store
}

func (downStore) List(context.Context, links.ListFilter) ([]domain.Link, error) {
	return nil, errDown
}

func (downStore) Ping(context.Context) error {
	return errDown
}

// slowStore blocks listing until the request budget runs out.
type slowStore struct {
	*memory.Store
}

func (slowStore) List(ctx context.Context, _ links.ListFilter) ([]domain.Link, error) {
	<-ctx.Done()

	return nil, errors.Join(domain.ErrStoreUnavailable, ctx.Err())
}
