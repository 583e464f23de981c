// Package statemgr tracks everything about a connection that is not a
// single in-flight request: its lifecycle phase, the server-clock
// adjustment derived from the getTime round trip run once per connection
// (it is not repeated while the connection stays up), the negotiated
// compression scheme, and the per-connection monotonic sequence counter
// the correlator stamps onto outbound packets. It is a small
// mutex-guarded struct with explicit getters/setters rather than exported
// mutable fields.
package statemgr

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
)

// Phase is the connection lifecycle state.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseHandshaking
	PhaseEstablished
	PhaseClosing
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseHandshaking:
		return "handshaking"
	case PhaseEstablished:
		return "established"
	case PhaseClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// CodecText is the one compression scheme every implementation must
// support: no transformation at all.
const CodecText = "text"

// Sender is the subset of *correlator.Correlator the state manager needs
// to issue getTime itself, kept narrow so tests can fake it without
// constructing a real correlator.
type Sender interface {
	Send(ctx context.Context, method codec.InteractiveMethod, params any, discard bool) (json.RawMessage, error)
}

// getTimeResult mirrors the getTime reply payload: the server's own clock
// reading in epoch milliseconds.
type getTimeResult struct {
	Time int64 `json:"time"`
}

// Manager owns a connection's protocol state: its phase, clock adjustment,
// and sequence counter. A GameClient keeps one Manager for its whole
// lifetime and calls ResetForReconnect at the start of every connection
// attempt, so sequence numbers and clock adjustment do not survive a
// reconnect; the negotiated compression and registered codecs do.
type Manager struct {
	mu              sync.Mutex
	phase           Phase
	clockAdjustment time.Duration
	compression     string
	now             func() time.Time

	seq uint32 // atomic, advanced via NextSeq

	codecsMu sync.Mutex
	codecs   map[string]struct{}
}

// New constructs a Manager in PhaseDisconnected with only the mandatory
// text codec registered.
func New() *Manager {
	return &Manager{
		phase:       PhaseDisconnected,
		compression: CodecText,
		now:         time.Now,
		codecs:      map[string]struct{}{CodecText: {}},
	}
}

// SetPhase transitions the connection phase. The caller (the façade) is
// responsible for only making transitions the transport callbacks and
// handshake completion actually justify; Manager does not validate the
// transition graph itself.
func (m *Manager) SetPhase(p Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = p
}

// PhaseNow returns the current connection phase.
func (m *Manager) PhaseNow() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// NextSeq returns the next monotonic sequence number for an outbound
// packet's "seq" field. Safe to pass directly as the correlator's nextSeq
// callback.
func (m *Manager) NextSeq() uint32 {
	return atomic.AddUint32(&m.seq, 1)
}

// ResetForReconnect zeroes the sequence counter and clock adjustment, the
// way a fresh TCP/WebSocket connection starts a fresh protocol session.
func (m *Manager) ResetForReconnect() {
	atomic.StoreUint32(&m.seq, 0)
	m.mu.Lock()
	m.clockAdjustment = 0
	m.phase = PhaseDisconnected
	m.mu.Unlock()
}

// SyncClock issues one getTime round trip through sender and records the
// adjustment (serverTime - localTime) used by GetTime. Call it
// at least once right after the connection reaches Established; callers
// that want periodic resync just call it again on a ticker.
func (m *Manager) SyncClock(ctx context.Context, sender Sender) error {
	sendAt := m.now()
	raw, err := sender.Send(ctx, codec.MethodGetTime, nil, false)
	if err != nil {
		return fmt.Errorf("getTime: %w", err)
	}

	var result getTimeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("decode getTime result: %w", err)
	}

	serverTime := time.UnixMilli(result.Time)
	localTime := sendAt

	m.mu.Lock()
	m.clockAdjustment = serverTime.Sub(localTime)
	m.mu.Unlock()
	return nil
}

// GetTime returns the client's best estimate of the server's current
// clock: now() plus the last synced adjustment.
func (m *Manager) GetTime() time.Time {
	m.mu.Lock()
	adj := m.clockAdjustment
	m.mu.Unlock()
	return m.now().Add(adj)
}

// ClockAdjustment exposes the raw adjustment, mainly for tests asserting
// I8 (getTime is within one round trip of the server clock).
func (m *Manager) ClockAdjustment() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clockAdjustment
}

// RegisterCodec adds name to the set of compression schemes this client
// can negotiate. Only CodecText ships with a body in this module: registering
// any other name records that the caller has its own encode/decode
// implementation wired in elsewhere and is only asking the state manager to
// remember the name is offerable.
func (m *Manager) RegisterCodec(name string) {
	m.codecsMu.Lock()
	defer m.codecsMu.Unlock()
	m.codecs[name] = struct{}{}
}

// NegotiateCompression picks the first entry in preferences this Manager
// has registered, falling back to CodecText if none match or preferences
// is empty. The client offers a preference list and the server picks one;
// this module negotiates locally against its own registry since it does
// not implement the server side.
func (m *Manager) NegotiateCompression(preferences []string) string {
	m.codecsMu.Lock()
	defer m.codecsMu.Unlock()

	for _, pref := range preferences {
		if _, ok := m.codecs[pref]; ok {
			m.mu.Lock()
			m.compression = pref
			m.mu.Unlock()
			return pref
		}
	}

	m.mu.Lock()
	m.compression = CodecText
	m.mu.Unlock()
	return CodecText
}

// CompressionScheme returns the currently negotiated scheme.
func (m *Manager) CompressionScheme() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compression
}
