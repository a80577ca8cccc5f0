// Package query serves ad-hoc questions against a company's documents
// outside any persisted conversation.
package query

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/analysis"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// Params is one ad-hoc question.
type Params struct {
	CompanySlug string
	CompanyName string
	Question    string
}

// Service proxies one-shot questions to the analysis engine. Nothing is
// persisted.
type Service struct {
	provider analysis.Provider
	log      zerolog.Logger
}

// NewService wires the query service.
func NewService(provider analysis.Provider, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log.With().Str("component", "query-service").Logger(),
	}
}

// Ask validates and forwards the question.
func (s *Service) Ask(ctx context.Context, params Params) (*analysis.QueryResponse, error) {
	if strings.TrimSpace(params.Question) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"question must not be empty", nil, "query-empty-question")
	}
	if strings.TrimSpace(params.CompanySlug) == "" && strings.TrimSpace(params.CompanyName) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"a company slug or name is required", nil, "query-no-company")
	}

	resp, err := s.provider.Ask(ctx, analysis.QueryRequest{
		CompanySlug: params.CompanySlug,
		CompanyName: params.CompanyName,
		Question:    params.Question,
	})
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"analysis engine query failed", err, "query-upstream")
	}
	return resp, nil
}
