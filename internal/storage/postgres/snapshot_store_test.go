package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

func sampleRecords() []award.Record {
	return []award.Record{
		{Year: 2024, Company: "Koala", Agency: "Humaan", Category: "E-Commerce", Project: "Koala", Rank: 1},
		{Year: 2023, Company: "City of Perth", Category: "Government", Project: "City of Perth", Rank: 2},
	}
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestSaveSnapshotInsertsRowsInOrder(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSnapshotStoreWithPool(mock, "")
	require.NoError(t, err)

	records := sampleRecords()
	mock.ExpectBegin()
	for i, rec := range records {
		body, err := json.Marshal(rec)
		require.NoError(t, err)
		mock.ExpectExec("INSERT INTO award_snapshots").
			WithArgs("run-1", i, rec.Year, rec.Category, rec.Project, rec.Company, rec.Agency, rec.Rank, body).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.SaveSnapshot(context.Background(), "run-1", records))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSnapshotRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSnapshotStoreWithPool(mock, "snapshots")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO snapshots").
		WithArgs(anyArgs(9)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO snapshots").
		WithArgs(anyArgs(9)...).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = store.SaveSnapshot(context.Background(), "run-2", sampleRecords())
	require.ErrorContains(t, err, "insert snapshot row 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSnapshotValidation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSnapshotStoreWithPool(mock, "")
	require.NoError(t, err)
	require.Error(t, store.SaveSnapshot(context.Background(), "", sampleRecords()))

	var nilStore *SnapshotStore
	require.Error(t, nilStore.SaveSnapshot(context.Background(), "run", nil))
	nilStore.Close()
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSnapshotStoreWithPool(mock, "")
	require.NoError(t, err)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS award_snapshots").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSnapshotStoreWithPoolValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshotStoreWithPool(nil, "")
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	_, err = NewSnapshotStoreWithPool(mock, "bad-name;")
	require.Error(t, err)
}

func TestNewSnapshotStoreRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshotStore(context.Background(), Config{})
	require.Error(t, err)
	_, err = NewSnapshotStore(context.Background(), Config{DSN: "::not a dsn::"})
	require.Error(t, err)
}
