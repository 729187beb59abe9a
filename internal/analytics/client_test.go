package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewFactory(FactoryConfig{Endpoint: srv.URL, HTTPClient: srv.Client()})
	b, err := f.NewBackend(context.Background(), &oauth2.Token{AccessToken: "ya29.test", TokenType: "Bearer"})
	require.NoError(t, err)
	return b
}

func TestClient_RunReport(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/properties/123:runReport", r.URL.Path)
		assert.Equal(t, "Bearer ya29.test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body["dimensions"], 1)
		assert.NotContains(t, body, "currencyCode")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"dimensionHeaders": [{"name": "country"}],
			"metricHeaders": [{"name": "sessions", "type": "TYPE_INTEGER"}],
			"rows": [
				{"dimensionValues": [{"value": "US"}], "metricValues": [{"value": "120"}]},
				{"dimensionValues": [{"value": "CA"}], "metricValues": [{"value": "30"}]}
			],
			"rowCount": 2
		}`))
	})

	resp, err := b.RunReport(context.Background(), "properties/123", &analyticsdata.RunReportRequest{
		Dimensions: []*analyticsdata.Dimension{{Name: "country"}},
		Metrics:    []*analyticsdata.Metric{{Name: "sessions"}},
		DateRanges: []*analyticsdata.DateRange{{StartDate: "2024-01-01", EndDate: "2024-01-07"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "US", resp.Rows[0].DimensionValues[0].Value)
	assert.Equal(t, int64(2), resp.RowCount)
}

func TestClient_RunReportError(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "User does not have sufficient permissions for this property.", "status": "PERMISSION_DENIED", "errors": [{"reason": "forbidden", "message": "denied"}]}}`))
	})

	_, err := b.RunReport(context.Background(), "properties/123", &analyticsdata.RunReportRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBackendRequestFailed))
	assert.Contains(t, err.Error(), "sufficient permissions")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	assert.Equal(t, "forbidden", appErr.Code)
}

func TestClient_GetMetadata(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1beta/properties/123/metadata", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "properties/123/metadata",
			"dimensions": [
				{"apiName": "country", "uiName": "Country", "description": "The country of the user.", "category": "Geography"},
				{"apiName": "city", "uiName": "City", "description": "The city of the user."}
			],
			"metrics": [
				{"apiName": "sessions", "uiName": "Sessions", "description": "The number of sessions.", "type": "TYPE_INTEGER"}
			]
		}`))
	})

	md, err := b.GetMetadata(context.Background(), "properties/123")
	require.NoError(t, err)
	assert.Equal(t, []FieldInfo{
		{Name: "country", DisplayName: "Country", Description: "The country of the user."},
		{Name: "city", DisplayName: "City", Description: "The city of the user."},
	}, md.Dimensions)
	assert.Equal(t, []FieldInfo{
		{Name: "sessions", DisplayName: "Sessions", Description: "The number of sessions."},
	}, md.Metrics)
}

func TestFactory_EmptyToken(t *testing.T) {
	_, err := NewFactory(FactoryConfig{}).NewBackend(context.Background(), &oauth2.Token{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindClientConstructionFailed))

	_, err = NewFactory(FactoryConfig{}).NewBackend(context.Background(), nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindClientConstructionFailed))
}

func TestToMetadata(t *testing.T) {
	md := toMetadata(nil)
	assert.NotNil(t, md.Dimensions)
	assert.NotNil(t, md.Metrics)

	md = toMetadata(&analyticsdata.Metadata{
		Dimensions: []*analyticsdata.DimensionMetadata{nil, {ApiName: "date", UiName: "Date"}},
	})
	assert.Equal(t, []FieldInfo{{Name: "date", DisplayName: "Date"}}, md.Dimensions)
	assert.Empty(t, md.Metrics)
}

func TestMetadataName(t *testing.T) {
	assert.Equal(t, "properties/1/metadata", metadataName("properties/1"))
	assert.Equal(t, "properties/1/metadata", metadataName("properties/1/"))
}
