package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "qore_testsecret")
	return srv, client
}

func resultsResponse(results map[string]any) []byte {
	b, _ := json.Marshal(map[string]any{"results": results})
	return b
}

func decodeExecute(t *testing.T, r *http.Request) []Operation {
	t.Helper()
	var body executeRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body.Operations
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("https://engine.example.com/", "s")
	assert.Equal(t, "https://engine.example.com", client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestNewClientHonoursTimeout(t *testing.T) {
	client := NewClient("https://engine.example.com", "s", 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)

	clone := client.WithTimeout(time.Second)
	assert.Equal(t, time.Second, clone.httpClient.Timeout)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestClientSendsSecretHeader(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "qore_testsecret", r.Header.Get(SecretHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write(resultsResponse(map[string]any{}))
	})

	_, err := client.Execute(context.Background())
	require.NoError(t, err)
}

func TestClientOmitsEmptySecret(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[http.CanonicalHeaderKey(SecretHeader)]
		assert.False(t, present)
		w.Write(resultsResponse(nil))
	})

	results, err := NewClient(srv.URL, "").Execute(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, results)
}

func TestClientMapsErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "message", body: `{"message":"table not found"}`, want: "table not found"},
		{name: "error string", body: `{"error":"forbidden"}`, want: "forbidden"},
		{name: "nested error", body: `{"error":{"code":"E_AUTH","message":"bad secret"}}`, want: "E_AUTH: bad secret"},
		{name: "detail", body: `{"detail":"  slow down  "}`, want: "slow down"},
		{name: "plain text", body: "gateway exploded", want: "HTTP 502: gateway exploded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				io.WriteString(w, tc.body)
			})

			_, err := client.Execute(context.Background())
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
			assert.Equal(t, tc.want, statusErr.Message)
		})
	}
}

func TestStatusErrorWithoutMessage(t *testing.T) {
	err := &StatusError{StatusCode: http.StatusTeapot}
	assert.Equal(t, "HTTP 418", err.Error())
}

func TestClientTransportFailure(t *testing.T) {
	client := NewClient("http://engine.invalid", "s")
	client.httpClient.Transport = roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	})

	_, err := client.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.Contains(t, err.Error(), "boom")
}

func TestClientHandlesMalformedJSON(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-json"))
	})

	_, err := client.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClientRespectsContextCancel(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorMessageRejectsEmpty(t *testing.T) {
	_, ok := errorMessage(nil)
	assert.False(t, ok)
	_, ok = errorMessage([]byte(`{"error":""}`))
	assert.False(t, ok)
	_, ok = errorMessage([]byte(`[1,2]`))
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/execute", r.URL.Path)
		ops := decodeExecute(t, r)
		require.Len(t, ops, 1)
		assert.Equal(t, OpSelect, ops[0].Operation)
		assert.Equal(t, "data_files", ops[0].Instruction.Table)
		assert.Equal(t, 1, ops[0].Instruction.Limit)
		w.Write(resultsResponse(map[string]any{"ping": []any{}}))
	})

	require.NoError(t, client.Ping(context.Background(), DefaultTable))
}

func TestPingWrapsFailure(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid admin secret"}`))
	})

	err := client.Ping(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "ping missing:"))
}
