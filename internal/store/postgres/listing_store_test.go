package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/imovelhub/ingest/internal/ingest"
)

func ptr[T any](v T) *T {
	return &v
}

func TestUpsertListingsWritesEachRefInOneTx(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewListingStoreWithPool(mock)
	require.NoError(t, err)

	listings := []ingest.ScrapedListing{
		{
			Address:   ptr("Barra de Ibiraquera, Imbituba - SC"),
			Price:     ptr(3950000.0),
			Area:      ptr(300),
			Bedrooms:  ptr(4),
			Bathrooms: ptr(3),
			Parking:   ptr(2),
			Type:      ptr("Apartamento"),
			ForSale:   true,
			Content:   "Vista para o mar.",
			Photos:    []string{"https://cdn.example.com/1.jpg"},
			Agency:    "Auxiliadora Predial",
			Ref:       "759737",
		},
		{
			Agency:  "Auxiliadora Predial",
			Ref:     "759738",
			ForSale: true,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			(*string)(nil),
			(*string)(nil),
			(*string)(nil),
			ptr("Barra de Ibiraquera, Imbituba - SC"),
			ptr(3950000.0),
			ptr(300),
			ptr(4),
			ptr(3),
			ptr(2),
			ptr("Apartamento"),
			true,
			"Vista para o mar.",
			[]byte(`["https://cdn.example.com/1.jpg"]`),
			"Auxiliadora Predial",
			"759737",
			(*int64)(nil),
			false,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			(*string)(nil),
			(*string)(nil),
			(*string)(nil),
			(*string)(nil),
			(*float64)(nil),
			(*int)(nil),
			(*int)(nil),
			(*int)(nil),
			(*int)(nil),
			(*string)(nil),
			true,
			"",
			nil,
			"Auxiliadora Predial",
			"759738",
			(*int64)(nil),
			false,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	written, err := store.UpsertListings(context.Background(), listings)
	require.NoError(t, err)
	require.Equal(t, 2, written)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertListingsSkipsEmptyRefs(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewListingStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	written, err := store.UpsertListings(context.Background(), []ingest.ScrapedListing{
		{Agency: "test", Ref: ""},
	})
	require.NoError(t, err)
	require.Zero(t, written)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertListingsRollsBackOnError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewListingStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err = store.UpsertListings(context.Background(), []ingest.ScrapedListing{
		{Agency: "test", Ref: "X1"},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertListingsEmptyInputIsNoop(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewListingStoreWithPool(mock)
	require.NoError(t, err)

	written, err := store.UpsertListings(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, written)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunMetadata(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewListingStoreWithPool(mock)
	require.NoError(t, err)

	created := time.Unix(1700000000, 0).UTC()
	mock.ExpectExec("INSERT INTO scrape_runs").
		WithArgs("run-uuid", "Jeferson Alba", 120, 37, created).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.SaveRunMetadata(context.Background(), ingest.RunMetadata{
		RunID:         "run-uuid",
		Agency:        "Jeferson Alba",
		TotalListings: 120,
		TotalPages:    37,
		Created:       created,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgePlaceholdersNeverTouchesAgentRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewListingStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec(`DELETE FROM listings WHERE name IS NULL AND agent_id IS NULL`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := store.PurgePlaceholders(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
