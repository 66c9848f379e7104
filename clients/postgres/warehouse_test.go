package postgres

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/ingest/clients/postgres/dialect"
	"github.com/artie-labs/ingest/lib/destination"
)

type memObjectStore struct {
	objects map[string][]byte
}

func (m *memObjectStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memObjectStore) Upload(_ context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjectStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjectStore) URI(key string) string {
	return "mem://" + key
}

func (m *memObjectStore) Close() error {
	return nil
}

func gzipped(t *testing.T, contents string) []byte {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	_, err := writer.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

const fhvCSV = `dispatching_base_num,pickup_datetime,dropOff_datetime,PUlocationID,DOlocationID,SR_Flag,Affiliated_base_number
B00001,2019-01-01 00:30:00,2019-01-01 02:51:55,,,,B00001
B00008,2019-01-01 00:15,2019-01-01 00:30:00,264,265,1,B00008
`

var (
	finalTableID   = dialect.NewTableIdentifier("public", "fhv_2019")
	stagingTableID = dialect.NewTableIdentifier("public", "fhv_2019__stage")
)

func newMockWarehouse(t *testing.T, objects *memObjectStore) (*Warehouse, sqlmock.Sqlmock) {
	store, mock := newMockStore(t)
	return NewWarehouse(store, objects), mock
}

func TestWarehouse_ParseTableID(t *testing.T) {
	warehouse := NewWarehouse(nil, nil)
	tableID, err := warehouse.ParseTableID("trips.fhv_2019")
	assert.NoError(t, err)
	assert.Equal(t, `"trips"."fhv_2019"`, tableID.FullyQualifiedName())

	_, err = warehouse.ParseTableID("a.b.c")
	assert.ErrorContains(t, err, `invalid table "a.b.c"`)
}

func TestWarehouse_EnsureTables(t *testing.T) {
	warehouse, mock := newMockWarehouse(t, nil)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "public"."fhv_2019" ("dispatching_base_num" TEXT,"pickup_datetime" TIMESTAMPTZ,"dropoff_datetime" TIMESTAMPTZ,"pickup_location_id" BIGINT,"dropoff_location_id" BIGINT,"sr_flag" BIGINT,"affiliated_base_number" TEXT,"source_file" TEXT)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS "fhv_2019_source_file_idx" ON "public"."fhv_2019" ("source_file")`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "public"."fhv_2019__stage" ("dispatching_base_num" TEXT,"pickup_datetime" TEXT,"dropOff_datetime" TEXT,"PUlocationID" TEXT,"DOlocationID" TEXT,"SR_Flag" TEXT,"Affiliated_base_number" TEXT)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, warehouse.EnsureTables(t.Context(), finalTableID, stagingTableID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarehouse_EnsureTables_IndexFailure(t *testing.T) {
	warehouse, mock := newMockWarehouse(t, nil)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "public"."fhv_2019" (`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS "fhv_2019_source_file_idx"`)).WillReturnError(fmt.Errorf("permission denied"))
	mock.ExpectRollback()

	err := warehouse.EnsureTables(t.Context(), finalTableID, stagingTableID)
	assert.ErrorContains(t, err, "failed to create warehouse tables")
	assert.ErrorContains(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarehouse_LoadStaging(t *testing.T) {
	key := "fhv/2019/fhv_tripdata_2019-01.csv.gz"
	object := destination.Object{Key: key, URI: "mem://" + key}
	{
		objects := &memObjectStore{objects: map[string][]byte{key: gzipped(t, fhvCSV)}}
		warehouse, mock := newMockWarehouse(t, objects)
		warehouse.batchSize = 1

		insertQuery := regexp.QuoteMeta(`INSERT INTO "public"."fhv_2019__stage" ("dispatching_base_num","pickup_datetime","dropOff_datetime","PUlocationID","DOlocationID","SR_Flag","Affiliated_base_number") VALUES ($1,$2,$3,$4,$5,$6,$7)`)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "public"."fhv_2019__stage"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(insertQuery).
			WithArgs("B00001", "2019-01-01 00:30:00", "2019-01-01 02:51:55", "", "", "", "B00001").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertQuery).
			WithArgs("B00008", "2019-01-01 00:15", "2019-01-01 00:30:00", "264", "265", "1", "B00008").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, warehouse.LoadStaging(t.Context(), object, stagingTableID))
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Wrong number of columns
		objects := &memObjectStore{objects: map[string][]byte{key: gzipped(t, "a,b\n1,2\n")}}
		warehouse, mock := newMockWarehouse(t, objects)
		assert.ErrorContains(t, warehouse.LoadStaging(t.Context(), object, stagingTableID), `expected 7 columns in "mem://fhv/2019/fhv_tripdata_2019-01.csv.gz", got 2`)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Missing object
		warehouse, mock := newMockWarehouse(t, &memObjectStore{objects: map[string][]byte{}})
		assert.ErrorContains(t, warehouse.LoadStaging(t.Context(), object, stagingTableID), "not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Failed insert rolls back the truncate
		objects := &memObjectStore{objects: map[string][]byte{key: gzipped(t, fhvCSV)}}
		warehouse, mock := newMockWarehouse(t, objects)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "public"."fhv_2019__stage"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."fhv_2019__stage"`)).WillReturnError(fmt.Errorf("value too long"))
		mock.ExpectRollback()
		assert.ErrorContains(t, warehouse.LoadStaging(t.Context(), object, stagingTableID), "value too long")
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func expectMerge(mock sqlmock.Sqlmock, sourceFile string) {
	stageColumns := []string{"dispatching_base_num", "pickup_datetime", "dropOff_datetime", "PUlocationID", "DOlocationID", "SR_Flag", "Affiliated_base_number"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "public"."fhv_2019" WHERE "source_file" = $1`)).
		WithArgs(sourceFile).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DECLARE "ingest_stage" NO SCROLL CURSOR FOR SELECT "dispatching_base_num","pickup_datetime","dropOff_datetime","PUlocationID","DOlocationID","SR_Flag","Affiliated_base_number" FROM "public"."fhv_2019__stage"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FETCH FORWARD 10000 FROM "ingest_stage"`)).
		WillReturnRows(sqlmock.NewRows(stageColumns).
			AddRow("B00001", "2019-01-01 00:30:00", "2019-01-01 02:51:55", nil, "", "abc", "B00001").
			AddRow("B00008", "2019-1-1 0:15", "garbage", "264", "265", "1", "B00008"),
		)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."fhv_2019" ("dispatching_base_num","pickup_datetime","dropoff_datetime","pickup_location_id","dropoff_location_id","sr_flag","affiliated_base_number","source_file") VALUES ($1,$2,$3,$4,$5,$6,$7,$8),($9,$10,$11,$12,$13,$14,$15,$16)`)).
		WithArgs(
			"B00001", time.Date(2019, 1, 1, 0, 30, 0, 0, time.UTC), time.Date(2019, 1, 1, 2, 51, 55, 0, time.UTC), nil, nil, nil, "B00001", sourceFile,
			"B00008", time.Date(2019, 1, 1, 0, 15, 0, 0, time.UTC), nil, int64(264), int64(265), int64(1), "B00008", sourceFile,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`FETCH FORWARD 10000 FROM "ingest_stage"`)).
		WillReturnRows(sqlmock.NewRows(stageColumns))
	mock.ExpectExec(regexp.QuoteMeta(`CLOSE "ingest_stage"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

func TestWarehouse_Merge(t *testing.T) {
	sourceFile := "fhv_tripdata_2019-01.csv.gz"
	{
		// Running the same merge twice issues the same statements, the delete makes it idempotent
		warehouse, mock := newMockWarehouse(t, nil)
		expectMerge(mock, sourceFile)
		expectMerge(mock, sourceFile)

		assert.NoError(t, warehouse.Merge(t.Context(), stagingTableID, finalTableID, sourceFile))
		assert.NoError(t, warehouse.Merge(t.Context(), stagingTableID, finalTableID, sourceFile))
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Delete failure aborts before reading staging
		warehouse, mock := newMockWarehouse(t, nil)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "public"."fhv_2019"`)).WillReturnError(fmt.Errorf("lock timeout"))
		mock.ExpectRollback()
		assert.ErrorContains(t, warehouse.Merge(t.Context(), stagingTableID, finalTableID, sourceFile), `failed to delete rows for "fhv_tripdata_2019-01.csv.gz": lock timeout`)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}
