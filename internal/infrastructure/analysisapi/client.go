package analysisapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"policylens/services/chat-api/internal/domain/analysis"
	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/domain/metasummary"
	"policylens/services/chat-api/internal/infrastructure/metrics"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

// Client implements analysis.Provider against the analysis engine's REST
// API with a Resty-backed client.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 75 * time.Second
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
	}
}

// ListCompanies calls GET /v1/companies.
func (c *Client) ListCompanies(ctx context.Context) ([]company.Company, error) {
	var payload struct {
		Companies []company.Company `json:"companies"`
	}
	resp, err := c.request(ctx).SetResult(&payload).Get("/v1/companies")
	if err := c.finish(ctx, resp, err, "companies"); err != nil {
		return nil, err
	}
	return payload.Companies, nil
}

// GetCompany calls GET /v1/companies/{slug}.
func (c *Client) GetCompany(ctx context.Context, slug string) (*company.Company, error) {
	var comp company.Company
	resp, err := c.request(ctx).
		SetResult(&comp).
		SetPathParam("slug", slug).
		Get("/v1/companies/{slug}")
	if err := c.finish(ctx, resp, err, "company"); err != nil {
		return nil, err
	}
	return &comp, nil
}

// ListDocuments calls GET /v1/companies/{slug}/documents.
func (c *Client) ListDocuments(ctx context.Context, slug string) ([]company.Document, error) {
	var payload struct {
		Documents []company.Document `json:"documents"`
	}
	resp, err := c.request(ctx).
		SetResult(&payload).
		SetPathParam("slug", slug).
		Get("/v1/companies/{slug}/documents")
	if err := c.finish(ctx, resp, err, "documents"); err != nil {
		return nil, err
	}
	return payload.Documents, nil
}

// GetLogo calls GET /v1/companies/{slug}/logo.
func (c *Client) GetLogo(ctx context.Context, slug string) (*company.Logo, error) {
	var logo company.Logo
	resp, err := c.request(ctx).
		SetResult(&logo).
		SetPathParam("slug", slug).
		Get("/v1/companies/{slug}/logo")
	if err := c.finish(ctx, resp, err, "logo"); err != nil {
		return nil, err
	}
	return &logo, nil
}

// GetMetaSummary calls GET /v1/meta-summary/{slug}.
func (c *Client) GetMetaSummary(ctx context.Context, slug string) (*metasummary.MetaSummary, error) {
	var summary metasummary.MetaSummary
	resp, err := c.request(ctx).
		SetResult(&summary).
		SetPathParam("slug", slug).
		Get("/v1/meta-summary/{slug}")
	if err := c.finish(ctx, resp, err, "meta-summary"); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Ask calls POST /v1/query.
func (c *Client) Ask(ctx context.Context, req analysis.QueryRequest) (*analysis.QueryResponse, error) {
	var answer analysis.QueryResponse
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&answer).
		Post("/v1/query")
	if err := c.finish(ctx, resp, err, "query"); err != nil {
		return nil, err
	}
	return &answer, nil
}

// IngestDocument calls POST /v1/documents with a multipart body.
func (c *Client) IngestDocument(ctx context.Context, req analysis.IngestRequest) (*analysis.IngestResult, error) {
	var result analysis.IngestResult
	request := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", req.FileName, bytes.NewReader(req.Data)).
		SetFormData(map[string]string{
			"company_name":        req.CompanyName,
			"company_description": req.CompanyDescription,
			"conversation_id":     req.ConversationID,
			"content_type":        req.ContentType,
		}).
		SetResult(&result)

	if token := analysis.AuthTokenFromContext(ctx); token != "" {
		request.SetHeader("Authorization", token)
	}

	resp, err := request.Post("/v1/documents")
	if err := c.finish(ctx, resp, err, "ingest"); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	request := c.httpClient.R().SetContext(ctx)
	if token := analysis.AuthTokenFromContext(ctx); token != "" {
		request.SetHeader("Authorization", token)
	}
	return request
}

// finish records the call outcome and classifies failures so handlers map
// them to the right status: an engine 404 stays not-found, everything else
// (error statuses and transport failures alike) is an external failure.
func (c *Client) finish(ctx context.Context, resp *resty.Response, err error, operation string) error {
	if err != nil {
		metrics.RecordUpstreamCall(operation, "error")
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"analysis engine unreachable", err, "analysis-"+operation)
	}
	if resp.IsError() {
		metrics.RecordUpstreamCall(operation, "error")
		if resp.StatusCode() == http.StatusNotFound {
			return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("analysis api: %s not found", operation),
				fmt.Errorf("analysis api error: %s", resp.String()), "analysis-"+operation)
		}
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("analysis api error: status %d", resp.StatusCode()),
			fmt.Errorf("analysis api error: %s", resp.String()), "analysis-"+operation)
	}
	metrics.RecordUpstreamCall(operation, "ok")
	return nil
}

// Ensure interface compliance.
var (
	_ analysis.Provider   = (*Client)(nil)
	_ company.Provider    = (*Client)(nil)
	_ metasummary.Fetcher = (*Client)(nil)
)
