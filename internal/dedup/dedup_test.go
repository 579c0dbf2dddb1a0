package dedup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imovelhub/ingest/internal/ingest"
)

func withRef(ref string) ingest.ScrapedListing {
	return ingest.ScrapedListing{Ref: ref, Agency: "test"}
}

func refs(listings []ingest.ScrapedListing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Ref)
	}
	return out
}

func TestByRefFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	in := []ingest.ScrapedListing{
		withRef("A1"), withRef("A2"), withRef("A2"), withRef("A3"), withRef("A4"),
	}

	kept, dropped := ByRef(in)

	require.Equal(t, []string{"A1", "A2", "A3", "A4"}, refs(kept))
	require.Equal(t, 1, dropped)
}

func TestByRefDropsEmptyRefs(t *testing.T) {
	t.Parallel()

	in := []ingest.ScrapedListing{
		withRef(""), withRef("B1"), withRef(""), withRef("B1"),
	}

	kept, dropped := ByRef(in)

	require.Equal(t, []string{"B1"}, refs(kept))
	require.Equal(t, 3, dropped)
}

func TestByRefIsIdempotent(t *testing.T) {
	t.Parallel()

	in := []ingest.ScrapedListing{withRef("C1"), withRef("C2"), withRef("C1")}

	once, _ := ByRef(in)
	twice, dropped := ByRef(once)

	require.Equal(t, refs(once), refs(twice))
	require.Zero(t, dropped)
}

func TestByRefEmptyInput(t *testing.T) {
	t.Parallel()

	kept, dropped := ByRef(nil)
	require.Empty(t, kept)
	require.Zero(t, dropped)
}
