package company

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"policylens/services/chat-api/internal/domain/metasummary"
	"policylens/services/chat-api/internal/infrastructure/metrics"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// failedAttemptBackoff is how long a failed logo fetch is remembered before
// the next request may retry it. Keeps one broken logo from triggering an
// upstream call per card render.
const failedAttemptBackoff = 10 * time.Minute

// Provider is the slice of the analysis engine the company browser needs.
// Declared here, like metasummary.Fetcher, so the engine contract can
// reference company types without a cycle.
type Provider interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, slug string) (*Company, error)
	ListDocuments(ctx context.Context, slug string) ([]Document, error)
	GetLogo(ctx context.Context, slug string) (*Logo, error)
}

// Enriched bundles a company with its lazily loaded artifacts.
type Enriched struct {
	Company Company                  `json:"company"`
	Logo    *Logo                    `json:"logo,omitempty"`
	Summary *metasummary.MetaSummary `json:"summary,omitempty"`
}

// Service serves the company browser: list with search and sort, detail,
// documents, and lazily cached logos.
type Service struct {
	provider  Provider
	summaries *metasummary.Service
	logos     *lru.Cache
	attempted *lru.Cache
	log       zerolog.Logger
}

// NewService wires the company service.
func NewService(provider Provider, summaries *metasummary.Service, logoCacheSize int, log zerolog.Logger) (*Service, error) {
	logos, err := lru.New(logoCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create logo cache: %w", err)
	}
	attempted, err := lru.New(logoCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create logo attempt cache: %w", err)
	}
	return &Service{
		provider:  provider,
		summaries: summaries,
		logos:     logos,
		attempted: attempted,
		log:       log.With().Str("component", "company-service").Logger(),
	}, nil
}

// List fetches the catalog and applies server-side search and sort.
func (s *Service) List(ctx context.Context, term string, key SortKey) ([]Company, error) {
	companies, err := s.provider.ListCompanies(ctx)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"failed to list companies", err, "company-list-upstream")
	}

	filtered := Filter(companies, term)
	Sort(filtered, key)
	return filtered, nil
}

// Get fetches a single company by slug.
func (s *Service) Get(ctx context.Context, slug string) (*Company, error) {
	comp, err := s.provider.GetCompany(ctx, slug)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get company")
	}
	return comp, nil
}

// Documents fetches the tracked legal documents for a company.
func (s *Service) Documents(ctx context.Context, slug string) ([]Document, error) {
	docs, err := s.provider.ListDocuments(ctx, slug)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list documents")
	}
	return docs, nil
}

// Logo returns a company logo, fetching it at most once per slug until the
// cache evicts it. A failed fetch is remembered so repeated card renders do
// not hammer the upstream; callers fall back to a placeholder on not-found.
func (s *Service) Logo(ctx context.Context, slug string) (*Logo, error) {
	if cached, ok := s.logos.Get(slug); ok {
		metrics.RecordCacheLookup("logo", "hit")
		return cached.(*Logo), nil
	}
	metrics.RecordCacheLookup("logo", "miss")

	if lastFail, ok := s.attempted.Get(slug); ok {
		if time.Since(lastFail.(time.Time)) < failedAttemptBackoff {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("logo unavailable: %s", slug), nil, "company-logo-attempted")
		}
		s.attempted.Remove(slug)
	}

	logo, err := s.provider.GetLogo(ctx, slug)
	if err != nil {
		s.attempted.Add(slug, time.Now())
		s.log.Debug().Err(err).Str("slug", slug).Msg("logo fetch failed")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("logo unavailable: %s", slug), err, "company-logo-missing")
	}

	s.logos.Add(slug, logo)
	return logo, nil
}

// Enrich loads the logo and meta-summary for a company concurrently. The
// two fetches fill disjoint fields; either may fail without failing the
// whole enrichment.
func (s *Service) Enrich(ctx context.Context, comp Company) *Enriched {
	enriched := &Enriched{Company: comp}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if logo, err := s.Logo(gctx, comp.Slug); err == nil {
			enriched.Logo = logo
		}
		return nil
	})
	g.Go(func() error {
		if summary, err := s.summaries.Get(gctx, comp.Slug); err == nil {
			enriched.Summary = summary
		}
		return nil
	})
	_ = g.Wait()

	return enriched
}
