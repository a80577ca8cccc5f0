package metasummary_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policylens/services/chat-api/internal/domain/metasummary"
	"policylens/services/chat-api/internal/infrastructure/metrics"
)

// countingFetcher counts upstream fetches per slug. Refreshes run
// concurrently, so the counter is guarded.
type countingFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	failing bool
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{calls: make(map[string]int)}
}

func (f *countingFetcher) count(slug string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[slug]
}

func (f *countingFetcher) GetMetaSummary(ctx context.Context, slug string) (*metasummary.MetaSummary, error) {
	f.mu.Lock()
	f.calls[slug]++
	f.mu.Unlock()
	if f.failing {
		return nil, errors.New("engine unavailable")
	}
	return &metasummary.MetaSummary{
		CompanySlug: slug,
		Summary:     "Collects extensive data.",
		Verdict:     metasummary.VerdictPervasive,
		GeneratedAt: time.Now(),
	}, nil
}

func TestGetCachesWhileFresh(t *testing.T) {
	fetcher := newCountingFetcher()
	service, err := metasummary.NewService(fetcher, 16, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		summary, err := service.Get(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", summary.CompanySlug)
	}

	assert.Equal(t, 1, fetcher.count("acme"), "fresh entries must be served from cache")
}

func TestGetDoesNotRetryFailedFetchPerRequest(t *testing.T) {
	fetcher := newCountingFetcher()
	fetcher.failing = true
	service, err := metasummary.NewService(fetcher, 16, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := service.Get(context.Background(), "acme")
		require.Error(t, err)
	}

	assert.Equal(t, 1, fetcher.count("acme"), "a failed fetch must be remembered")
}

func TestRefreshBypassesAttemptGuard(t *testing.T) {
	fetcher := newCountingFetcher()
	fetcher.failing = true
	service, err := metasummary.NewService(fetcher, 16, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	_, err = service.Get(context.Background(), "acme")
	require.Error(t, err)

	fetcher.failing = false
	summary, err := service.Refresh(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", summary.CompanySlug)
	assert.Equal(t, 2, fetcher.count("acme"))

	// The guard is cleared after a successful refresh.
	_, err = service.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.count("acme"))
}

func TestGetRecordsCacheLookups(t *testing.T) {
	fetcher := newCountingFetcher()
	service, err := metasummary.NewService(fetcher, 16, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	missBefore := testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("meta_summary", "miss"))
	hitBefore := testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("meta_summary", "hit"))

	_, err = service.Get(context.Background(), "acme")
	require.NoError(t, err)
	_, err = service.Get(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, missBefore+1, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("meta_summary", "miss")))
	assert.Equal(t, hitBefore+1, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("meta_summary", "hit")))
}

func TestRefreshStale(t *testing.T) {
	fetcher := newCountingFetcher()
	service, err := metasummary.NewService(fetcher, 16, time.Nanosecond, zerolog.Nop())
	require.NoError(t, err)

	_, err = service.Get(context.Background(), "acme")
	require.NoError(t, err)
	_, err = service.Get(context.Background(), "beta-industries")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	refreshed := service.RefreshStale(context.Background())
	assert.Equal(t, 2, refreshed)
	assert.GreaterOrEqual(t, fetcher.count("acme"), 2)
	assert.GreaterOrEqual(t, fetcher.count("beta-industries"), 2)
}
