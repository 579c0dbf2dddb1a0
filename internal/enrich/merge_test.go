package enrich

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/ingest"
)

func TestMergeMatchesByRef(t *testing.T) {
	t.Parallel()

	listings := []ingest.ScrapedListing{
		{Ref: "A1"},
		{Ref: "A2", Content: "prior content", Photos: []string{"old.jpg"}},
		{Ref: "A3"},
	}
	results := []ingest.EnrichmentResult{
		{Ref: "A1", Content: "Apartamento novo.", Photos: []string{"a.jpg", "b.jpg"}},
		{Ref: "A3", Content: "Terreno plano."},
	}

	merged := Merge(listings, results, zap.NewNop())

	require.Equal(t, 2, merged)
	require.Equal(t, "Apartamento novo.", listings[0].Content)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, listings[0].Photos)
	require.Equal(t, "prior content", listings[1].Content, "unmatched listing keeps prior content")
	require.Equal(t, []string{"old.jpg"}, listings[1].Photos)
	require.Equal(t, "Terreno plano.", listings[2].Content)
	require.Nil(t, listings[2].Photos)
}

func TestMergeIgnoresUnknownRefs(t *testing.T) {
	t.Parallel()

	listings := []ingest.ScrapedListing{{Ref: "A1"}}
	results := []ingest.EnrichmentResult{
		{Ref: "ZZ", Content: "should not land anywhere"},
	}

	merged := Merge(listings, results, zap.NewNop())

	require.Zero(t, merged)
	require.Empty(t, listings[0].Content)
}

func TestMergeEmptyResults(t *testing.T) {
	t.Parallel()

	listings := []ingest.ScrapedListing{{Ref: "A1", Content: "keep"}}

	require.Zero(t, Merge(listings, nil, zap.NewNop()))
	require.Equal(t, "keep", listings[0].Content)
}

func TestMergeSkipsEmptyPayloads(t *testing.T) {
	t.Parallel()

	listings := []ingest.ScrapedListing{{Ref: "A1"}}
	results := []ingest.EnrichmentResult{{Ref: "A1"}}

	require.Zero(t, Merge(listings, results, zap.NewNop()))
}
