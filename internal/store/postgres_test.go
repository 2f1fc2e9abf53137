// internal/store/postgres_test.go
package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	createTablePattern = `CREATE TABLE IF NOT EXISTS ticket_pages`
	loadPattern        = `SELECT ticket_number, page_id FROM ticket_pages`
	insertPattern      = `INSERT INTO ticket_pages \(ticket_number, page_id\) VALUES \(\$1, \$2\) ON CONFLICT \(ticket_number\) DO NOTHING`
)

func newTestPostgresStore(t *testing.T, rows *sqlmock.Rows) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(createTablePattern).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(loadPattern).WillReturnRows(rows)

	st, err := NewPostgresStore(context.Background(), db)
	require.NoError(t, err)
	return st, mock
}

func TestNewPostgresStore_LoadsExistingRows(t *testing.T) {
	rows := sqlmock.NewRows([]string{"ticket_number", "page_id"}).
		AddRow(1, "page-1").
		AddRow(2, "page-2")

	st, mock := newTestPostgresStore(t, rows)
	assert.Equal(t, 2, st.Len())

	id, ok := st.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "page-1", id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutAndGet(t *testing.T) {
	st, mock := newTestPostgresStore(t, sqlmock.NewRows([]string{"ticket_number", "page_id"}))

	mock.ExpectExec(insertPattern).
		WithArgs(42, "page-42").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Put(context.Background(), 42, "page-42"))

	id, ok := st.Get(42)
	assert.True(t, ok)
	assert.Equal(t, "page-42", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FirstWriteWins(t *testing.T) {
	st, mock := newTestPostgresStore(t, sqlmock.NewRows([]string{"ticket_number", "page_id"}))

	// Only the first Put reaches the database; the second is a no-op.
	mock.ExpectExec(insertPattern).
		WithArgs(42, "page-first").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Put(context.Background(), 42, "page-first"))
	require.NoError(t, st.Put(context.Background(), 42, "page-second"))

	id, ok := st.Get(42)
	assert.True(t, ok)
	assert.Equal(t, "page-first", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutError(t *testing.T) {
	st, mock := newTestPostgresStore(t, sqlmock.NewRows([]string{"ticket_number", "page_id"}))

	mock.ExpectExec(insertPattern).
		WithArgs(42, "page-42").
		WillReturnError(errors.New("connection reset"))

	err := st.Put(context.Background(), 42, "page-42")
	assert.Error(t, err)

	// A failed write must not poison the in-memory view.
	_, ok := st.Get(42)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresStore_Errors(t *testing.T) {
	t.Run("create table fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(createTablePattern).WillReturnError(errors.New("permission denied"))

		_, err = NewPostgresStore(context.Background(), db)
		assert.Error(t, err)
	})

	t.Run("load fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(createTablePattern).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(loadPattern).WillReturnError(errors.New("connection reset"))

		_, err = NewPostgresStore(context.Background(), db)
		assert.Error(t, err)
	})
}
