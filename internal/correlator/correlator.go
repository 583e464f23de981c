// Package correlator assigns each outbound method packet an ID, tracks it
// in a pending map until a reply with a matching ID arrives or the request
// times out, and completes every pending request with a
// ConnectionClosedError the moment the transport goes away. It lives in
// its own package so the transport's read goroutine (internal/transport)
// never blocks on a caller waiting for its reply.
package correlator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/logger"
	"codeberg.org/algopatterns/gameinteractive/internal/throttle"
)

// DefaultTimeout bounds how long Send waits for a reply before failing
// with NoReplyError.
const DefaultTimeout = 15 * time.Second

// Sender is the minimal write-side contract the correlator needs from the
// transport: one text frame out. Satisfied by *transport.WebSocketAdapter
// and *transport.FakeAdapter.
type Sender interface {
	Send(payload []byte) error
}

// outcome is what a pending entry's channel carries: either a reply from
// the service or a locally synthesized error (connection closed).
type outcome struct {
	reply codec.ReplyPacket
	err   error
}

// pendingEntry is the one in-flight request record: exactly one outcome is
// ever delivered to ch, whether that's a reply, a connection-closed error,
// or nothing at all if Send gave up first (timeout/ctx cancel).
type pendingEntry struct {
	method codec.InteractiveMethod
	ch     chan outcome
}

// Correlator owns the outbound ID space and the pending-reply map for one
// connection's lifetime. A new Correlator is constructed per connection
// attempt: sequence numbers and pending requests do not survive a
// reconnect.
type Correlator struct {
	sender   Sender
	throttle *throttle.Manager
	nextSeq  func() uint32 // supplied by the state manager; nil means no seq stamping
	timeout  time.Duration

	nextID uint32 // atomic, via atomic.AddUint32

	mu      sync.Mutex
	pending map[uint32]*pendingEntry
	closed  bool
}

// New constructs a Correlator bound to sender for outbound writes and
// throttleMgr for per-method bandwidth admission. nextSeq may be nil.
func New(sender Sender, throttleMgr *throttle.Manager, nextSeq func() uint32) *Correlator {
	return &Correlator{
		sender:   sender,
		throttle: throttleMgr,
		nextSeq:  nextSeq,
		timeout:  DefaultTimeout,
		pending:  make(map[uint32]*pendingEntry),
	}
}

// SetTimeout overrides DefaultTimeout, mainly for tests.
func (c *Correlator) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Send assigns an ID, stamps seq (if a source was supplied), consults the
// throttle, and writes the frame. Unless discard is set, it then blocks
// until a reply arrives, ctx is canceled, or the per-request timeout
// elapses.
//
// discard mirrors the wire "discard" flag: the caller has signaled it does
// not want to wait for a reply, so once the frame is written successfully
// Send returns (nil, nil) immediately without registering a pending entry
// or blocking on one — there is nothing for HandleReply to deliver to.
func (c *Correlator) Send(ctx context.Context, method codec.InteractiveMethod, params any, discard bool) (json.RawMessage, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}

	id := c.allocateID()
	traceID := uuid.NewString()
	log := logger.WithTrace(traceID)
	log.Debug("sending method packet", logger.AttrMethod, method, logger.AttrPacketID, id)

	pkt := codec.MethodPacket{
		ID:      id,
		Method:  method,
		Params:  raw,
		Discard: discard,
	}
	if c.nextSeq != nil {
		pkt.Seq = c.nextSeq()
	}

	frame, err := codec.EncodeMethod(pkt)
	if err != nil {
		return nil, fmt.Errorf("encode method packet: %w", err)
	}

	if c.throttle != nil && !c.throttle.TryAdmit(string(method), len(frame)) {
		return nil, &ierrors.ThrottledError{Method: string(method), Bytes: len(frame)}
	}

	if discard {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return nil, &ierrors.ConnectionClosedError{Reason: "send on closed correlator"}
		}
		if err := c.sender.Send(frame); err != nil {
			return nil, fmt.Errorf("send method packet: %w", err)
		}
		log.Debug("discarded method packet sent")
		return nil, nil
	}

	entry := &pendingEntry{method: method, ch: make(chan outcome, 1)}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, &ierrors.ConnectionClosedError{Reason: "send on closed correlator"}
	}
	c.pending[id] = entry
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.sender.Send(frame); err != nil {
		return nil, fmt.Errorf("send method packet: %w", err)
	}

	timeout := c.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	select {
	case out := <-entry.ch:
		if out.err != nil {
			log.Debug("method packet failed", "error", out.err)
			return nil, out.err
		}
		if out.reply.Error != nil {
			log.Debug("method packet replied with error", "code", out.reply.Error.Code)
			return nil, &ierrors.ReplyError{Code: out.reply.Error.Code, Message: out.reply.Error.Message, Path: out.reply.Error.Path}
		}
		log.Debug("method packet replied")
		return out.reply.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, &ierrors.NoReplyError{Method: string(method), ID: id}
	}
}

// allocateID returns the next packet ID. Wrapping the 32-bit counter is
// legal; an ID still occupied by a pending entry from 2^32 requests ago is
// skipped until a free slot comes up. Distinct concurrent calls always get
// distinct counter values, so only that wrap-around collision needs the
// check.
func (c *Correlator) allocateID() uint32 {
	for {
		id := atomic.AddUint32(&c.nextID, 1)
		c.mu.Lock()
		_, taken := c.pending[id]
		c.mu.Unlock()
		if !taken {
			return id
		}
	}
}

// HandleReply completes the pending entry matching reply.ID, if any. A
// reply with no matching pending entry (already timed out, or a server bug)
// is logged and dropped rather than treated as fatal.
func (c *Correlator) HandleReply(reply codec.ReplyPacket) {
	c.mu.Lock()
	entry, ok := c.pending[reply.ID]
	c.mu.Unlock()

	if !ok {
		logger.Debug("reply for unknown or already-resolved request", "id", reply.ID)
		return
	}

	select {
	case entry.ch <- outcome{reply: reply}:
	default:
		// Send already gave up (context canceled) and stopped receiving;
		// dropping here is correct since nobody is listening.
	}
}

// CloseWithError completes every pending request with err and marks the
// correlator closed; further Send calls fail immediately. Call this from
// the transport's OnClose/OnError callback: connection loss completes
// every request still waiting on a reply.
func (c *Correlator) CloseWithError(err error) {
	c.mu.Lock()
	c.closed = true
	pending := c.pending
	c.pending = make(map[uint32]*pendingEntry)
	c.mu.Unlock()

	for _, entry := range pending {
		select {
		case entry.ch <- outcome{err: err}:
		default:
		}
	}
}

// Pending returns the number of in-flight requests, mainly for tests and
// getMemoryStats-style introspection.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return b, nil
}
