package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imovelhub/ingest/internal/ingest"
)

func TestEnrichPostsBatchAndDecodesResults(t *testing.T) {
	t.Parallel()

	var got ingest.EnrichmentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/scrape", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"url":     "https://example.com/ver/4412/casa",
					"ref":     "4412",
					"content": "Casa ampla no centro.",
					"photos":  []string{"https://cdn.example.com/1.jpg"},
				},
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	results, err := client.Enrich(context.Background(), ingest.EnrichmentRequest{
		Name: "Jeferson Alba",
		URLs: []string{"https://example.com/ver/4412/casa"},
		Selectors: ingest.EnrichmentSelectors{
			Content: []string{".imovel-content-section"},
			Photos:  []string{".img-gallery img"},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "4412", results[0].Ref)
	require.Equal(t, "Casa ampla no centro.", results[0].Content)

	require.Equal(t, []string{"https://example.com/ver/4412/casa"}, got.URLs)
	require.Equal(t, []string{".imovel-content-section"}, got.Selectors.Content)
}

func TestEnrichWrapsTransportFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Enrich(context.Background(), ingest.EnrichmentRequest{URLs: []string{"https://example.com"}})
	require.Error(t, err)
	require.ErrorIs(t, err, ingest.ErrEnrichment)
}

func TestEnrichWrapsMalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Enrich(context.Background(), ingest.EnrichmentRequest{URLs: []string{"https://example.com"}})
	require.ErrorIs(t, err, ingest.ErrEnrichment)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{})
	require.Error(t, err)
}
