// Package transport abstracts the duplex, frame-oriented channel the
// correlator and event bus run over. It knows nothing about packets —
// only bytes in, bytes out, and open/close lifecycle callbacks — so the
// rest of the core can be tested against a fake duplex channel without a
// real network socket.
package transport

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/logger"
)

// Listener receives transport lifecycle events. Implementations must
// return quickly — the adapter invokes these synchronously from its own
// read loop; long-running work belongs on the dispatch worker one layer up
// (internal/correlator, internal/eventbus), not here.
type Listener interface {
	OnOpen(handshake *http.Response)
	OnText(payload []byte)
	OnBinary(payload []byte)
	OnClose(code int, reason string, remote bool)
	OnError(err error)
}

// Options configure a single connection attempt.
type Options struct {
	// Token is the opaque bearer token; an XBL3.0 token is sent as-is rather
	// than prefixed with "Bearer ".
	Token string

	// ProjectVersionID is echoed as X-Interactive-Version.
	ProjectVersionID uint32

	// Sharecode, if non-empty, is sent as X-Interactive-Sharecode.
	Sharecode string

	// ConnectTimeout bounds the WebSocket handshake. Zero means the
	// package default (15s).
	ConnectTimeout time.Duration
}

// DefaultConnectTimeout is used when Options.ConnectTimeout is zero.
const DefaultConnectTimeout = 15 * time.Second

// Adapter is the minimal duplex contract this module needs: open, send,
// close, with status delivered to a Listener. It does not interpret
// frames as packets.
type Adapter interface {
	Open(ctx context.Context, rawURL string, opts Options, listener Listener) error
	Send(payload []byte) error
	Close(code int, reason string) error
}

// WebSocketAdapter is the gorilla/websocket-backed Adapter. Writes are
// serialized through writeMu so concurrent Send calls from different
// goroutines never interleave text frames on the wire — the same
// guarantee a dedicated writer-pump goroutine gets from owning the only
// writer, implemented here with a mutex instead since this adapter's Send
// is called directly rather than fed through a channel.
type WebSocketAdapter struct {
	writeMu sync.Mutex
	conn    *websocket.Conn

	closeOnce sync.Once
}

// NewWebSocketAdapter returns an unconnected adapter; call Open to dial.
func NewWebSocketAdapter() *WebSocketAdapter {
	return &WebSocketAdapter{}
}

// Open dials rawURL with the required handshake headers, then starts a
// background read loop delivering frames to listener until the connection
// closes or errors.
func (a *WebSocketAdapter) Open(ctx context.Context, rawURL string, opts Options, listener Listener) error {
	if _, err := url.Parse(rawURL); err != nil {
		return &ierrors.ConnectionError{Reason: "malformed host URL: " + err.Error()}
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	header := http.Header{}
	header.Set("X-Protocol-Version", "2.0")
	header.Set("X-Interactive-Version", strconv.FormatUint(uint64(opts.ProjectVersionID), 10))
	if opts.Sharecode != "" {
		header.Set("X-Interactive-Sharecode", opts.Sharecode)
	}
	header.Set("Authorization", authorizationHeader(opts.Token))

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}

	conn, resp, err := dialer.DialContext(dialCtx, rawURL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return &ierrors.AuthenticationError{Reason: "handshake rejected: " + resp.Status}
		}
		return &ierrors.ConnectionError{Reason: "dial: " + err.Error()}
	}

	a.conn = conn
	listener.OnOpen(resp)

	go a.readLoop(listener)

	return nil
}

// readLoop is the transport I/O task: it owns the only reader goroutine
// for this connection and never touches the correlator or event bus
// directly — it only calls back into listener.
func (a *WebSocketAdapter) readLoop(listener Listener) {
	for {
		msgType, payload, err := a.conn.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			reason := err.Error()
			if closeErr, ok := err.(*websocket.CloseError); ok {
				code = closeErr.Code
				reason = closeErr.Text
			}
			listener.OnClose(code, reason, true)
			return
		}

		switch msgType {
		case websocket.TextMessage:
			listener.OnText(payload)
		case websocket.BinaryMessage:
			listener.OnBinary(payload)
		}
	}
}

// Send writes one text frame. Serialized by writeMu so interleaved
// concurrent sends never corrupt a frame boundary.
func (a *WebSocketAdapter) Send(payload []byte) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if a.conn == nil {
		return &ierrors.ConnectionError{Reason: "send on unopened transport"}
	}

	if err := a.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return &ierrors.ConnectionError{Reason: "write: " + err.Error()}
	}
	return nil
}

// Close sends a close frame and tears down the socket. Safe to call more
// than once.
func (a *WebSocketAdapter) Close(code int, reason string) error {
	var err error
	a.closeOnce.Do(func() {
		if a.conn == nil {
			return
		}
		a.writeMu.Lock()
		writeErr := a.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second),
		)
		a.writeMu.Unlock()
		if writeErr != nil {
			logger.Debug("close control frame not sent", "error", writeErr)
		}
		err = a.conn.Close()
	})
	return err
}

// authorizationHeader implements the Bearer-vs-raw-token rule: an XBL3.0
// token is sent unmodified, everything else gets a "Bearer " prefix.
func authorizationHeader(token string) string {
	if strings.HasPrefix(token, "XBL3.0") {
		return token
	}
	return "Bearer " + token
}
