package kit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	_, ok := l.Allow("10.0.0.1")
	assert.True(t, ok)
	_, ok = l.Allow("10.0.0.1")
	assert.True(t, ok)

	wait, ok := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, wait)

	_, ok = l.Allow("10.0.0.2")
	assert.True(t, ok)

	now = now.Add(61 * time.Second)
	_, ok = l.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(remote, xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("192.0.2.1:4000", "1.1.1.1").Code)
	rec := do("192.0.2.1:4001", "2.2.2.2")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "forwarded header must not mint a fresh bucket")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, do("192.0.2.2:4000", "").Code)

	l.mu.Lock()
	assert.Len(t, l.hits, 2)
	l.mu.Unlock()
}

func TestIPRateLimiter_TrustedForwardedKey(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	l.Key = ClientIP
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:80"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("1.1.1.1, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, do("2.2.2.2"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(req))
	assert.Equal(t, "192.0.2.7", RemoteIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 192.0.2.7")
	assert.Equal(t, "203.0.113.9", ClientIP(req))
	assert.Equal(t, "192.0.2.7", RemoteIP(req))
}

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"disabled without token", "", "Bearer x", http.StatusForbidden},
		{"missing header", "t0k", "", http.StatusForbidden},
		{"wrong token", "t0k", "Bearer nope", http.StatusForbidden},
		{"valid", "t0k", "Bearer t0k", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			MetricsAuth(tc.token)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"name":"a"}`, false},
		{"unknown field", `{"name":"a","x":1}`, true},
		{"trailing data", `{"name":"a"}{"name":"b"}`, true},
		{"malformed", `{"name":`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.raw))
			var b body
			err := DecodeJSON(httptest.NewRecorder(), req, &b)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", b.Name)
		})
	}
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	WriteError(rec, req, http.StatusNotFound, "not found", map[string]any{"id": 3})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "not found", got.Error)
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware("test", RoutePattern))
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Requests.WithLabelValues("test", http.MethodGet, "/items/{id}", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
}
