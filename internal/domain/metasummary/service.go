package metasummary

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"policylens/services/chat-api/internal/infrastructure/metrics"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// failedAttemptBackoff is how long a failed summary fetch is remembered
// before the next request may retry it.
const failedAttemptBackoff = 10 * time.Minute

// Fetcher is the slice of the analysis engine this service needs. Declared
// here to avoid an import cycle with the analysis package consumers.
type Fetcher interface {
	GetMetaSummary(ctx context.Context, slug string) (*MetaSummary, error)
}

type cacheEntry struct {
	summary   *MetaSummary
	fetchedAt time.Time
}

// Service caches per-company meta-summaries with a TTL and a guard that
// keeps a failed fetch from being retried on every request.
type Service struct {
	fetcher   Fetcher
	cache     *lru.Cache
	attempted *lru.Cache
	ttl       time.Duration
	log       zerolog.Logger
}

// NewService wires the meta-summary service.
func NewService(fetcher Fetcher, cacheSize int, ttl time.Duration, log zerolog.Logger) (*Service, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create summary cache: %w", err)
	}
	attempted, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create summary attempt cache: %w", err)
	}
	return &Service{
		fetcher:   fetcher,
		cache:     cache,
		attempted: attempted,
		ttl:       ttl,
		log:       log.With().Str("component", "metasummary-service").Logger(),
	}, nil
}

// Get returns the meta-summary for a company, fetching lazily on first
// request and serving from cache while the entry is fresh.
func (s *Service) Get(ctx context.Context, slug string) (*MetaSummary, error) {
	if cached, ok := s.cache.Get(slug); ok {
		entry := cached.(cacheEntry)
		if time.Since(entry.fetchedAt) < s.ttl {
			metrics.RecordCacheLookup("meta_summary", "hit")
			return entry.summary, nil
		}
	}
	metrics.RecordCacheLookup("meta_summary", "miss")

	if lastFail, ok := s.attempted.Get(slug); ok {
		if time.Since(lastFail.(time.Time)) < failedAttemptBackoff {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("meta summary unavailable: %s", slug), nil, "metasummary-attempted")
		}
		s.attempted.Remove(slug)
	}

	return s.Refresh(ctx, slug)
}

// Refresh fetches the summary from the analysis engine unconditionally and
// updates the cache.
func (s *Service) Refresh(ctx context.Context, slug string) (*MetaSummary, error) {
	summary, err := s.fetcher.GetMetaSummary(ctx, slug)
	if err != nil {
		s.attempted.Add(slug, time.Now())
		s.log.Debug().Err(err).Str("slug", slug).Msg("meta summary fetch failed")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("meta summary unavailable: %s", slug), err, "metasummary-missing")
	}

	s.cache.Add(slug, cacheEntry{summary: summary, fetchedAt: time.Now()})
	s.attempted.Remove(slug)
	return summary, nil
}

// RefreshStale re-fetches every cached summary older than the TTL. Run on a
// schedule so the browser keeps serving warm entries without a miss spike.
func (s *Service) RefreshStale(ctx context.Context) int {
	stale := make([]string, 0)
	for _, key := range s.cache.Keys() {
		cached, ok := s.cache.Get(key)
		if !ok {
			continue
		}
		if time.Since(cached.(cacheEntry).fetchedAt) >= s.ttl {
			stale = append(stale, key.(string))
		}
	}

	if len(stale) == 0 {
		return 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, slug := range stale {
		slug := slug
		g.Go(func() error {
			if _, err := s.Refresh(gctx, slug); err != nil {
				s.cache.Remove(slug)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info().Int("count", len(stale)).Msg("refreshed stale meta summaries")
	return len(stale)
}
