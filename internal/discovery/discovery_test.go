package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
)

func TestDiscoverHostReturnsFirstAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "my-client", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"address":"wss://host-a.example.com"},{"address":"wss://host-b.example.com"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "my-client")
	addr, err := client.DiscoverHost(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wss://host-a.example.com", addr)
}

func TestDiscoverHostEmptyListIsNoHostsFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "my-client")
	_, err := client.DiscoverHost(context.Background())
	require.Error(t, err)

	var noHosts *ierrors.NoHostsFound
	assert.ErrorAs(t, err, &noHosts)
}

func TestDiscoverHostServerErrorIsNoHostsFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "my-client")
	_, err := client.DiscoverHost(context.Background())
	require.Error(t, err)

	var noHosts *ierrors.NoHostsFound
	assert.ErrorAs(t, err, &noHosts)
}

func TestDiscoverHostUnauthorizedIsAuthenticationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "my-client")
	_, err := client.DiscoverHost(context.Background())
	require.Error(t, err)

	var authErr *ierrors.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}
