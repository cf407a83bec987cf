package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConcurrentInserts(t *testing.T) {
	var count atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		ops := decodeExecute(t, r)
		if len(ops) != 1 || ops[0].Operation != OpInsert {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := count.Add(1)
		w.Write(resultsResponse(map[string]any{
			"insertData": []map[string]any{{"id": fmt.Sprintf("r-%d", n), "title": ops[0].Instruction.Data["title"]}},
		}))
	})

	const workers = 50
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.InsertRecord(context.Background(), DefaultTable, RecordInput{
				Title:       "stress",
				Description: "stress",
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(workers), count.Load())
}

func TestClientHandlesTruncatedResults(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"getData":[{"id":"a"`))
	})

	_, err := client.ListRecords(context.Background(), DefaultTable, 10)
	require.Error(t, err)
}

func TestClientHandlesOversizedErrorBody(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(strings.Repeat("x", 1<<16)))
	})

	_, err := client.StorageToken(context.Background())
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}
