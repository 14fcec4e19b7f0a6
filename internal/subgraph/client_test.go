package subgraph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/backend/pkg/model"
)

func serve(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestQueryDecodesData(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"data":{"communities":[{"id":"ai"}]}}`))
	})

	var out struct {
		Communities []Ref `json:"communities"`
	}
	err := client.Query(context.Background(), `{ communities { id } }`, nil, &out)
	require.NoError(t, err)
	require.Len(t, out.Communities, 1)
	assert.Equal(t, "ai", out.Communities[0].ID)
}

func TestQueryTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1") // nothing listens there

	err := client.Query(context.Background(), `{ _meta { block { number } } }`, nil, nil)
	assert.ErrorIs(t, err, model.ErrTransport)
}

func TestQueryUpstreamStatusError(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "indexer exploded", http.StatusBadGateway)
	})

	err := client.Query(context.Background(), `{ x }`, nil, nil)
	assert.ErrorIs(t, err, model.ErrUpstream)
}

func TestQueryGraphQLErrors(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"no such field"}]}`))
	})

	err := client.Query(context.Background(), `{ nope }`, nil, nil)
	require.ErrorIs(t, err, model.ErrUpstream)
	assert.Contains(t, err.Error(), "no such field")
}

func TestQueryMalformedBody(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not json`))
	})

	err := client.Query(context.Background(), `{ x }`, nil, nil)
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}

func TestQueryCancellation(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Query(ctx, `{ x }`, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHealthy(t *testing.T) {
	healthy := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"_meta":{"block":{"number":123}}}}`))
	})
	assert.True(t, healthy.IsHealthy(context.Background()))

	broken := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	assert.False(t, broken.IsHealthy(context.Background()))
}
