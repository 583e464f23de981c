package transport

import (
	"context"
	"net/http"
	"sync"
)

// FakeAdapter is an in-memory Adapter used by the root package's façade
// tests and this package's own tests — it never touches a real socket,
// only records what it was asked to send and lets a test script inject
// inbound frames.
type FakeAdapter struct {
	mu          sync.Mutex
	Sent        [][]byte
	listener    Listener
	closed      bool
	CloseCode   int
	CloseReason string

	// OnSend, if set, is invoked with each payload right after it is
	// recorded, outside the lock. Façade-level tests use it to script an
	// auto-responder that decodes the outbound frame and injects the
	// matching reply, without polling Sent from another goroutine.
	OnSend func(payload []byte)
}

// NewFakeAdapter returns an unopened fake adapter.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{}
}

// Open records the listener and immediately reports success; tests drive
// OnOpen/OnText/OnClose themselves via the helpers below.
func (f *FakeAdapter) Open(_ context.Context, _ string, _ Options, listener Listener) error {
	f.mu.Lock()
	f.listener = listener
	f.mu.Unlock()
	listener.OnOpen(&http.Response{StatusCode: http.StatusSwitchingProtocols})
	return nil
}

// Send records payload for later assertions.
func (f *FakeAdapter) Send(payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)

	f.mu.Lock()
	f.Sent = append(f.Sent, cp)
	hook := f.OnSend
	f.mu.Unlock()

	if hook != nil {
		hook(cp)
	}
	return nil
}

// Close records the close and, if a listener is attached, synthesizes the
// OnClose callback the way a real close frame would.
func (f *FakeAdapter) Close(code int, reason string) error {
	f.mu.Lock()
	f.closed = true
	f.CloseCode = code
	f.CloseReason = reason
	listener := f.listener
	f.mu.Unlock()

	if listener != nil {
		listener.OnClose(code, reason, false)
	}
	return nil
}

// InjectText delivers an inbound text frame to the attached listener, as
// if the server had sent it.
func (f *FakeAdapter) InjectText(payload []byte) {
	f.mu.Lock()
	listener := f.listener
	f.mu.Unlock()
	if listener != nil {
		listener.OnText(payload)
	}
}

// InjectClose simulates the transport observing a remote close.
func (f *FakeAdapter) InjectClose(code int, reason string) {
	f.mu.Lock()
	listener := f.listener
	f.mu.Unlock()
	if listener != nil {
		listener.OnClose(code, reason, true)
	}
}

// IsClosed reports whether Close has been called.
func (f *FakeAdapter) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
