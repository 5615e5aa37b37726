package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmo-agent/internal/config"
	"cosmo-agent/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStoreClient(url string) StoreClient {
	return NewStoreClient(&config.Store{
		InstanceURL:    url,
		ServerToken:    "server-token",
		RequestTimeout: 2 * time.Second,
	})
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://store.example.com", "api/game/store/pending", "https://store.example.com/api/game/store/pending"},
		{"https://store.example.com/", "/api/game/store/pending", "https://store.example.com/api/game/store/pending"},
		{"https://store.example.com//", "//api", "https://store.example.com///api"},
		{"https://store.example.com/shop", "api", "https://store.example.com/shop/api"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, joinURL(tt.base, tt.path))
	}
}

func TestStoreClient_FetchPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/game/store/pending", r.URL.Path)
		assert.Equal(t, "Bearer server-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"orders": [{"id": 5, "receiver": "76561198000000000", "packageName": "Wood",
				"actions": [{"id": 50, "receiver": "76561198000000000", "name": "console_command",
					"data": {"cmd": "give :sid64 wood", "expire_cmd": "take :sid64 wood"}}]}],
			"actions": [{"id": 60, "receiver": "76561198000000001", "name": "console_command", "data": "{\"expire_cmd\":\"oxide.usergroup remove :sid64 vip\"}"}]
		}`))
	}))
	defer srv.Close()

	snapshot, err := newTestStoreClient(srv.URL+"/").FetchPending(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.Orders, 1)
	order := snapshot.Orders[0]
	assert.Equal(t, uint64(5), order.ID)
	require.Len(t, order.Actions, 1)
	assert.Same(t, order, order.Actions[0].Order)

	require.Len(t, snapshot.Actions, 1)
	assert.Equal(t, uint64(60), snapshot.Actions[0].ID)
}

func TestStoreClient_FetchPendingUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	_, err := newTestStoreClient(srv.URL).FetchPending(context.Background())
	require.Error(t, err)

	var statusErr *model.UnexpectedStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusOK, statusErr.Expected)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Got)
	assert.Contains(t, statusErr.Body, "invalid token")
}

func TestStoreClient_FetchPendingTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestStoreClient(url).FetchPending(context.Background())
	require.Error(t, err)

	var transportErr *model.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.MethodGet, transportErr.Method)
}

func TestStoreClient_FetchPendingBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := newTestStoreClient(srv.URL).FetchPending(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode pending response")
}

func TestStoreClient_Reports(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer server-token", r.Header.Get("Authorization"))
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/game/store/actions/9/expire" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestStoreClient(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.ReportDelivered(ctx, 1))
	require.NoError(t, c.ReportActionCompleted(ctx, 2))
	err := c.ReportActionExpired(ctx, 9)

	var statusErr *model.UnexpectedStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Got)
	assert.Equal(t, []string{
		"/api/game/store/orders/1/deliver",
		"/api/game/store/actions/2/complete",
		"/api/game/store/actions/9/expire",
	}, paths)
}
