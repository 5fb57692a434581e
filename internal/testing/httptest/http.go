// Package httptest holds request helpers shared by the HTTP tests.
package httptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func NewJSONRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")

	return req
}

// Do serves req on h and returns the recorded response.
func Do(h http.Handler, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec.Result()
}

// Get is Do for a body-less GET.
func Get(h http.Handler, path string) *http.Response {
	return Do(h, httptest.NewRequest(http.MethodGet, path, nil))
}

func DecodeJSON[T any](t *testing.T, r io.Reader) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))

	return v
}
