package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recstore/internal/cache"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/movie", http.MethodPost, 200, 3*time.Millisecond)
	m.ObserveRequest("/movie", http.MethodPost, 200, time.Millisecond)
	m.ObserveRequest("/movie", http.MethodPost, 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/movie", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/movie", "POST", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestRegisterCache(t *testing.T) {
	m := New()
	stats := cache.Stats{Hits: 4, Misses: 2, Loads: 2, Invalidations: 1, Size: 1}
	m.RegisterCache(func() cache.Stats { return stats })

	expected := `
# HELP recstore_cache_hits_total Lookups served from the cache.
# TYPE recstore_cache_hits_total counter
recstore_cache_hits_total 4
# HELP recstore_cache_entries Entries currently cached.
# TYPE recstore_cache_entries gauge
recstore_cache_entries 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"recstore_cache_hits_total", "recstore_cache_entries")
	require.NoError(t, err)

	// Values are read at scrape time.
	stats.Hits = 9
	err = testutil.GatherAndCompare(m.Registry(), strings.NewReader(strings.Replace(expected, "total 4", "total 9", 1)),
		"recstore_cache_hits_total", "recstore_cache_entries")
	require.NoError(t, err)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("/health", http.MethodGet, 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `recstore_http_requests_total{code="200",method="GET",route="/health"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
