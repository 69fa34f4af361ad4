package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobackoffice/internal/pkg/docstore"
)

func newMockStore(t *testing.T) (*docstore.PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return docstore.NewPostgresStore(db, 2*time.Second), mock
}

func TestPostgresStore_LoadMissingCollection(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT payload, version FROM collections WHERE name = \$1`).
		WithArgs("products").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "version"}))

	doc, err := store.Load(context.Background(), "products")

	require.NoError(t, err)
	assert.Equal(t, int64(0), doc.Version)
	assert.Empty(t, doc.Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadExisting(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT payload, version FROM collections`).
		WithArgs("returns").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "version"}).AddRow([]byte(`[{"id":"r1"}]`), int64(7)))

	doc, err := store.Load(context.Background(), "returns")

	require.NoError(t, err)
	assert.Equal(t, int64(7), doc.Version)
	assert.JSONEq(t, `[{"id":"r1"}]`, string(doc.Payload))
}

func TestPostgresStore_FirstSaveInserts(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO collections`).
		WithArgs("products", `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	version, err := store.Save(context.Background(), "products", []byte(`[]`), 0)

	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateChecksVersion(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE collections`).
		WithArgs(`[1]`, sqlmock.AnyArg(), "products", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	version, err := store.Save(context.Background(), "products", []byte(`[1]`), 4)

	require.NoError(t, err)
	assert.Equal(t, int64(5), version)
}

func TestPostgresStore_StaleVersionIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE collections`).
		WithArgs(`[1]`, sqlmock.AnyArg(), "products", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Save(context.Background(), "products", []byte(`[1]`), 4)

	assert.ErrorIs(t, err, docstore.ErrVersionConflict)
}

func TestPostgresStore_ConcurrentFirstInsertIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO collections`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Save(context.Background(), "products", []byte(`[]`), 0)

	assert.ErrorIs(t, err, docstore.ErrVersionConflict)
}

func TestPostgresStore_DriverErrorIsWrapped(t *testing.T) {
	store, mock := newMockStore(t)
	driverErr := errors.New("conexão perdida")
	mock.ExpectExec(`UPDATE collections`).WillReturnError(driverErr)

	_, err := store.Save(context.Background(), "products", []byte(`[]`), 2)

	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, docstore.ErrVersionConflict)
}
