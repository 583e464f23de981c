package correlator

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/throttle"
)

// recordingSender captures every frame written, decodes its ID, and lets
// the test reply to it asynchronously.
type recordingSender struct {
	mu   sync.Mutex
	sent [][]byte
	fail error
}

func (s *recordingSender) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, payload)
	return nil
}

func (s *recordingSender) lastID(t *testing.T) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent)
	var pkt codec.MethodPacket
	frames, errs := codec.Decode(s.sent[len(s.sent)-1])
	require.Empty(t, errs)
	require.Len(t, frames, 1)
	require.NotNil(t, frames[0].Method)
	pkt = *frames[0].Method
	return pkt.ID
}

func TestSendReturnsResultOnReply(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)

	replyDone := make(chan struct{})
	go func() {
		defer close(replyDone)
		for {
			if c.Pending() == 1 {
				break
			}
			time.Sleep(time.Millisecond)
		}
		id := sender.lastID(t)
		c.HandleReply(codec.ReplyPacket{ID: id, Result: json.RawMessage(`{"ok":true}`)})
	}()

	result, err := c.Send(context.Background(), codec.MethodGetTime, nil, false)
	<-replyDone
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
}

func TestSendReturnsReplyError(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)

	go func() {
		for c.Pending() != 1 {
			time.Sleep(time.Millisecond)
		}
		id := sender.lastID(t)
		c.HandleReply(codec.ReplyPacket{ID: id, Error: &codec.ReplyErrorBody{Code: 4010, Message: "scene not found"}})
	}()

	_, err := c.Send(context.Background(), codec.MethodGetScenes, nil, false)
	require.Error(t, err)

	var replyErr *ierrors.ReplyError
	require.ErrorAs(t, err, &replyErr)
	assert.Equal(t, 4010, replyErr.Code)
}

func TestSendTimesOutWithNoReplyError(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)
	c.SetTimeout(10 * time.Millisecond)

	_, err := c.Send(context.Background(), codec.MethodGetTime, nil, false)
	require.Error(t, err)

	var noReply *ierrors.NoReplyError
	assert.ErrorAs(t, err, &noReply)
}

func TestSendRespectsContextCancel(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)
	c.SetTimeout(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := c.Send(ctx, codec.MethodGetTime, nil, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseWithErrorCompletesAllPending(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)
	c.SetTimeout(time.Minute)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Send(context.Background(), codec.MethodGetTime, nil, false)
		}(i)
	}

	for c.Pending() != 3 {
		time.Sleep(time.Millisecond)
	}
	c.CloseWithError(&ierrors.ConnectionClosedError{Code: 1006, Reason: "abnormal closure"})
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		var closedErr *ierrors.ConnectionClosedError
		assert.ErrorAs(t, err, &closedErr)
	}
}

func TestSendAfterCloseFailsImmediately(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)
	c.CloseWithError(&ierrors.ConnectionClosedError{Reason: "gone"})

	_, err := c.Send(context.Background(), codec.MethodGetTime, nil, false)
	require.Error(t, err)
	var closedErr *ierrors.ConnectionClosedError
	assert.ErrorAs(t, err, &closedErr)
}

func TestSendConsultsThrottle(t *testing.T) {
	sender := &recordingSender{}
	mgr := throttle.NewManager(map[string]throttle.Config{
		string(codec.MethodGiveInput): {Capacity: 1, DrainRate: 1},
	})
	c := New(sender, mgr, nil)

	_, err := c.Send(context.Background(), codec.MethodGiveInput, map[string]any{"x": 1000}, false)
	require.Error(t, err)
	var throttled *ierrors.ThrottledError
	assert.ErrorAs(t, err, &throttled)
}

func TestSendStampsSeqFromProvider(t *testing.T) {
	sender := &recordingSender{}
	var seq uint32 = 41
	c := New(sender, nil, func() uint32 {
		seq++
		return seq
	})
	c.SetTimeout(10 * time.Millisecond)

	_, _ = c.Send(context.Background(), codec.MethodGetTime, nil, false)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 1)
	frames, errs := codec.Decode(sender.sent[0])
	require.Empty(t, errs)
	require.Len(t, frames, 1)
	assert.EqualValues(t, 42, frames[0].Method.Seq)
}

func TestHandleReplyForUnknownIDIsIgnored(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)

	assert.NotPanics(t, func() {
		c.HandleReply(codec.ReplyPacket{ID: 999, Result: json.RawMessage(`{}`)})
	})
}

func TestSendWithDiscardReturnsImmediatelyWithoutRegisteringPending(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)
	c.SetTimeout(time.Minute) // a bug here would hang the test for a full minute

	result, err := c.Send(context.Background(), codec.MethodGiveInput, nil, true)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, c.Pending(), "a discarded send must not leave a pending entry behind")
	assert.Len(t, sender.sent, 1, "the frame must still be written")
}

func TestSendWithDiscardFailsOnClosedCorrelator(t *testing.T) {
	sender := &recordingSender{}
	c := New(sender, nil, nil)
	c.CloseWithError(&ierrors.ConnectionClosedError{Reason: "gone"})

	_, err := c.Send(context.Background(), codec.MethodGiveInput, nil, true)
	require.Error(t, err)
	var closedErr *ierrors.ConnectionClosedError
	assert.ErrorAs(t, err, &closedErr)
}

func TestSendWithDiscardRespectsThrottle(t *testing.T) {
	sender := &recordingSender{}
	mgr := throttle.NewManager(map[string]throttle.Config{
		string(codec.MethodGiveInput): {Capacity: 1, DrainRate: 1},
	})
	c := New(sender, mgr, nil)

	_, err := c.Send(context.Background(), codec.MethodGiveInput, map[string]any{"x": 1000}, true)
	require.Error(t, err)
	var throttled *ierrors.ThrottledError
	assert.ErrorAs(t, err, &throttled)
}
