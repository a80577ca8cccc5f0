package analysis

import (
	"context"

	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/domain/metasummary"
)

// Provider is the typed contract with the analysis engine. Every upstream
// endpoint the service depends on goes through this interface so handlers
// never hand-roll HTTP calls.
type Provider interface {
	ListCompanies(ctx context.Context) ([]company.Company, error)
	GetCompany(ctx context.Context, slug string) (*company.Company, error)
	ListDocuments(ctx context.Context, slug string) ([]company.Document, error)
	GetLogo(ctx context.Context, slug string) (*company.Logo, error)
	GetMetaSummary(ctx context.Context, slug string) (*metasummary.MetaSummary, error)
	Ask(ctx context.Context, req QueryRequest) (*QueryResponse, error)
	IngestDocument(ctx context.Context, req IngestRequest) (*IngestResult, error)
}
