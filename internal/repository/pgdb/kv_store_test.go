package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*KVStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewKVStore(db), mock
}

func TestKVStore_Get(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)).
		WithArgs("cart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"lines":[]}`))

	v, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"lines":[]}`, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_GetMiss(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)).
		WithArgs("orders").
		WillReturnError(sql.ErrNoRows)

	_, ok, err := s.Get(context.Background(), "orders")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_Set(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store (key, value, updated_at)`)).
		WithArgs("products_local", `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "products_local", `[]`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_Remove(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_store WHERE key = $1`)).
		WithArgs("cart").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Remove(context.Background(), "cart"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_Errors(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	dbErr := errors.New("connection refused")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store`)).WillReturnError(dbErr)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store`)).WillReturnError(dbErr)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_store`)).WillReturnError(dbErr)

	_, _, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, e.ErrStoreUnavailable)
	assert.ErrorIs(t, err, dbErr)

	assert.ErrorIs(t, s.Set(ctx, "cart", "{}"), e.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Remove(ctx, "cart"), e.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
