package postgres

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/ingest/clients/postgres/dialect"
	"github.com/artie-labs/ingest/lib/db"
	"github.com/artie-labs/ingest/lib/typing"
	"github.com/artie-labs/ingest/lib/typing/columns"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewStore(db.WithDatabase(sqlDB, 1)), mock
}

var zoneColumns = []columns.Column{
	columns.NewColumn("LocationID", typing.Integer),
	columns.NewColumn("Borough", typing.String),
}

func TestRowsPerStatement(t *testing.T) {
	assert.Equal(t, 10_000, rowsPerStatement(0))
	assert.Equal(t, 10_000, rowsPerStatement(1))
	assert.Equal(t, 10_000, rowsPerStatement(6))
	assert.Equal(t, 9362, rowsPerStatement(7))
	assert.Equal(t, 8191, rowsPerStatement(8))
	assert.Equal(t, 1, rowsPerStatement(100_000))
	for _, numCols := range []int{1, 7, 8, 19, 20, 1000} {
		assert.LessOrEqual(t, rowsPerStatement(numCols)*numCols, 65_535, numCols)
	}
}

func TestStore_TableExists(t *testing.T) {
	store, mock := newMockStore(t)
	tableID := dialect.NewTableIdentifier("public", "yellow_taxi_data")

	mock.ExpectQuery(regexp.QuoteMeta(tableExistsQueryForTest)).WithArgs("public", "yellow_taxi_data").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	exists, err := store.TableExists(t.Context(), tableID)
	assert.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta(tableExistsQueryForTest)).WithArgs("public", "yellow_taxi_data").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	exists, err = store.TableExists(t.Context(), tableID)
	assert.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta(tableExistsQueryForTest)).WillReturnError(fmt.Errorf("connection closed"))
	_, err = store.TableExists(t.Context(), tableID)
	assert.ErrorContains(t, err, `failed to check if "public"."yellow_taxi_data" exists: connection closed`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

const tableExistsQueryForTest = `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`

func TestStore_ReplaceTable(t *testing.T) {
	tableID := dialect.NewTableIdentifier("public", "taxi_zones")
	rows := [][]any{{int64(1), "EWR"}, {int64(2), "Queens"}}
	{
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."taxi_zones"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."taxi_zones" ("LocationID" BIGINT,"Borough" TEXT)`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."taxi_zones" ("LocationID","Borough") VALUES ($1,$2),($3,$4)`)).
			WithArgs(int64(1), "EWR", int64(2), "Queens").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()
		assert.NoError(t, store.ReplaceTable(t.Context(), tableID, zoneColumns, rows))
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// The drop is rolled back when anything fails
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."taxi_zones"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."taxi_zones"`)).WillReturnError(fmt.Errorf("permission denied"))
		mock.ExpectRollback()
		assert.ErrorContains(t, store.ReplaceTable(t.Context(), tableID, zoneColumns, rows), "failed to create table: permission denied")
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// No rows, no insert
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."taxi_zones"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."taxi_zones"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		assert.NoError(t, store.ReplaceTable(t.Context(), tableID, zoneColumns, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestStore_Append(t *testing.T) {
	tableID := dialect.NewTableIdentifier("public", "yellow_taxi_data")
	{
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."yellow_taxi_data" ("LocationID","Borough") VALUES ($1,$2),($3,$4),($5,$6)`)).
			WithArgs(int64(1), "EWR", int64(2), nil, nil, "Bronx").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()
		inserted, err := store.Append(t.Context(), tableID, zoneColumns, [][]any{{int64(1), "EWR"}, {int64(2), nil}, {nil, "Bronx"}})
		assert.NoError(t, err)
		assert.Equal(t, int64(3), inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Mismatched rows are rejected before anything is sent
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := store.Append(t.Context(), tableID, zoneColumns, [][]any{{int64(1)}})
		assert.ErrorContains(t, err, "row has 1 values, expected 2")
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."yellow_taxi_data"`)).WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()
		_, err := store.Append(t.Context(), tableID, zoneColumns, [][]any{{int64(1), "EWR"}})
		assert.ErrorContains(t, err, `failed to insert into "public"."yellow_taxi_data": disk full`)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// A cancelled run never opens the transaction
		store, mock := newMockStore(t)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := store.Append(ctx, tableID, zoneColumns, [][]any{{int64(1), "EWR"}})
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorContains(t, err, "failed to start tx")
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestStore_CreateTable(t *testing.T) {
	store, mock := newMockStore(t)
	tableID := dialect.NewTableIdentifier("public", "yellow_taxi_data")
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."yellow_taxi_data" ("LocationID" BIGINT,"Borough" TEXT)`)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, store.CreateTable(t.Context(), tableID, zoneColumns, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
