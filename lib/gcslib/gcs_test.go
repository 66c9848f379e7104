package gcslib

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GCSClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGCSClient(t.Context(), nil, "bucket",
		option.WithEndpoint(server.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewGCSClient(t *testing.T) {
	_, err := NewGCSClient(t.Context(), nil, "", option.WithoutAuthentication())
	assert.ErrorContains(t, err, "bucket cannot be empty")
}

func TestGCSClient_URI(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "gs://bucket/fhv/2019/fhv_tripdata_2019-01.csv.gz", client.URI("fhv/2019/fhv_tripdata_2019-01.csv.gz"))
}

func TestGCSClient_Exists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(w, `{"error": {"code": 404, "message": "No such object"}}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"kind": "storage#object", "name": "fhv/2019/fhv_tripdata_2019-01.csv.gz", "bucket": "bucket", "size": "5"}`)
	})

	{
		exists, err := client.Exists(t.Context(), "fhv/2019/fhv_tripdata_2019-01.csv.gz")
		assert.NoError(t, err)
		assert.True(t, exists)
	}
	{
		exists, err := client.Exists(t.Context(), "fhv/2019/missing.csv.gz")
		assert.NoError(t, err)
		assert.False(t, exists)
	}
}

// brokenReader returns [data] and then fails with [err], like a download whose connection drops.
type brokenReader struct {
	data []byte
	err  error
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, b.err
	}

	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

type uploadRecorder struct {
	mu        sync.Mutex
	committed []string
}

func (u *uploadRecorder) handler(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.URL.Path, "/upload/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		// The client aborted the request before the body was complete.
		return
	}

	u.mu.Lock()
	u.committed = append(u.committed, string(body))
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprint(w, `{"kind": "storage#object", "name": "fhv/2019/fhv_tripdata_2019-01.csv.gz", "bucket": "bucket", "size": "18"}`)
}

func (u *uploadRecorder) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.committed)
}

func TestGCSClient_Upload(t *testing.T) {
	{
		// Complete body
		recorder := &uploadRecorder{}
		client := newTestClient(t, recorder.handler)
		assert.NoError(t, client.Upload(t.Context(), "fhv/2019/fhv_tripdata_2019-01.csv.gz", strings.NewReader("dispatching_base_num\n")))
		assert.Equal(t, 1, recorder.count())
		assert.Contains(t, recorder.committed[0], "dispatching_base_num")
	}
	{
		// Body fails partway, nothing is committed
		recorder := &uploadRecorder{}
		client := newTestClient(t, recorder.handler)
		body := &brokenReader{data: []byte("dispatching_base_n"), err: syscall.ECONNRESET}
		err := client.Upload(t.Context(), "fhv/2019/fhv_tripdata_2019-01.csv.gz", body)
		assert.ErrorIs(t, err, syscall.ECONNRESET)
		assert.ErrorContains(t, err, "failed to write file to GCS")
		assert.Equal(t, 0, recorder.count())
	}
}
