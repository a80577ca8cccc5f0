package analysisapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policylens/services/chat-api/internal/infrastructure/analysisapi"
	"policylens/services/chat-api/internal/infrastructure/metrics"
	"policylens/services/chat-api/internal/utils/platformerrors"
)

func TestGetCompanyUnknownSlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := analysisapi.NewClient(server.URL, time.Second)
	_, err := client.GetCompany(context.Background(), "no-such-company")
	require.Error(t, err)

	platformErr := platformerrors.GetPlatformError(err)
	require.NotNil(t, platformErr)
	assert.Equal(t, platformerrors.ErrorTypeNotFound, platformErr.Type)
	assert.Equal(t, http.StatusNotFound, platformerrors.ErrorTypeToHTTPStatus(platformErr.Type))
}

func TestListDocumentsUnknownSlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := analysisapi.NewClient(server.URL, time.Second)
	_, err := client.ListDocuments(context.Background(), "no-such-company")
	require.Error(t, err)
	assert.True(t, platformerrors.IsNotFound(err))
}

func TestGetCompanyEngineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := analysisapi.NewClient(server.URL, time.Second)
	_, err := client.GetCompany(context.Background(), "acme")
	require.Error(t, err)

	platformErr := platformerrors.GetPlatformError(err)
	require.NotNil(t, platformErr)
	assert.Equal(t, platformerrors.ErrorTypeExternal, platformErr.Type)
	assert.Equal(t, http.StatusBadGateway, platformerrors.ErrorTypeToHTTPStatus(platformErr.Type))
}

func TestGetCompanyEngineUnreachable(t *testing.T) {
	client := analysisapi.NewClient("http://127.0.0.1:1", time.Second)
	_, err := client.GetCompany(context.Background(), "acme")
	require.Error(t, err)

	platformErr := platformerrors.GetPlatformError(err)
	require.NotNil(t, platformErr)
	assert.Equal(t, platformerrors.ErrorTypeExternal, platformErr.Type)
}

func TestUpstreamCallsRecorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slug":"acme","name":"Acme"}`))
	}))
	defer server.Close()

	okBefore := testutil.ToFloat64(metrics.UpstreamCallsTotal.WithLabelValues("company", "ok"))

	client := analysisapi.NewClient(server.URL, time.Second)
	comp, err := client.GetCompany(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", comp.Slug)

	okAfter := testutil.ToFloat64(metrics.UpstreamCallsTotal.WithLabelValues("company", "ok"))
	assert.Equal(t, okBefore+1, okAfter)
}
