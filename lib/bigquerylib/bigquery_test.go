package bigquerylib

import (
	"fmt"
	"net/http"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsAlreadyExistsErr(t *testing.T) {
	assert.False(t, IsAlreadyExistsErr(nil))
	assert.False(t, IsAlreadyExistsErr(fmt.Errorf("boom")))
	assert.False(t, IsAlreadyExistsErr(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, IsAlreadyExistsErr(&googleapi.Error{Code: http.StatusConflict, Message: "Already Exists: Table project:dataset.table"}))
	assert.True(t, IsAlreadyExistsErr(fmt.Errorf("failed: %w", &googleapi.Error{Code: http.StatusConflict})))
}

func TestNewCSVReference(t *testing.T) {
	schema := bigquery.Schema{{Name: "dispatching_base_num", Type: bigquery.StringFieldType}}
	{
		ref := NewCSVReference("gs://bucket/fhv/2019/fhv_tripdata_2019-01.csv.gz", schema, true)
		assert.Equal(t, []string{"gs://bucket/fhv/2019/fhv_tripdata_2019-01.csv.gz"}, ref.URIs)
		assert.Equal(t, bigquery.CSV, ref.SourceFormat)
		assert.Equal(t, int64(1), ref.SkipLeadingRows)
		assert.True(t, ref.AllowQuotedNewlines)
		assert.Equal(t, bigquery.Gzip, ref.Compression)
		assert.Equal(t, schema, ref.Schema)
	}
	{
		ref := NewCSVReference("gs://bucket/taxi_zone_lookup.csv", schema, false)
		assert.Equal(t, bigquery.None, ref.Compression)
	}
}
