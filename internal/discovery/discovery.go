// Package discovery implements the host-discovery REST call: a GET
// against a well-known hosts endpoint returning the first healthy
// Interactive host URL. It is a pure function of (client ID, endpoint) —
// no state, no retries — callers (the façade) own backoff and retry
// policy.
//
// net/http's client is used directly rather than adding a dedicated
// lightweight HTTP client dependency, since this is a single GET with one
// custom header and no other outbound REST traffic in this module (see
// DESIGN.md).
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
)

// DefaultTimeout bounds the discovery GET.
const DefaultTimeout = 10 * time.Second

// hostEntry mirrors one element of the discovery response:
// {"address": "wss://..."}. Only Address is consumed.
type hostEntry struct {
	Address string `json:"address"`
}

// Client performs host discovery against a configurable endpoint,
// primarily so tests can point it at an httptest.Server.
type Client struct {
	Endpoint   string
	ClientID   string
	HTTPClient *http.Client
}

// NewClient returns a discovery client for endpoint, identifying itself
// with clientID in the User-Agent header.
func NewClient(endpoint, clientID string) *Client {
	return &Client{
		Endpoint:   endpoint,
		ClientID:   clientID,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// DiscoverHost performs the GET and returns the first host's address.
// Fails with NoHostsFound if the list is empty or the request errors.
func (c *Client) DiscoverHost(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return "", &ierrors.NoHostsFound{Cause: err}
	}
	req.Header.Set("User-Agent", c.ClientID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &ierrors.NoHostsFound{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &ierrors.AuthenticationError{Reason: "host discovery rejected: " + resp.Status}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ierrors.NoHostsFound{Cause: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ierrors.NoHostsFound{Cause: err}
	}

	var hosts []hostEntry
	if err := json.Unmarshal(body, &hosts); err != nil {
		return "", &ierrors.NoHostsFound{Cause: err}
	}

	if len(hosts) == 0 {
		return "", &ierrors.NoHostsFound{}
	}

	return hosts[0].Address, nil
}
