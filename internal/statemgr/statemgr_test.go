package statemgr

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
)

type fakeSender struct {
	result json.RawMessage
	err    error
}

func (f *fakeSender) Send(_ context.Context, _ codec.InteractiveMethod, _ any, _ bool) (json.RawMessage, error) {
	return f.result, f.err
}

func TestNewManagerStartsDisconnectedWithTextCodec(t *testing.T) {
	m := New()
	assert.Equal(t, PhaseDisconnected, m.PhaseNow())
	assert.Equal(t, CodecText, m.CompressionScheme())
}

func TestSetPhaseTransitions(t *testing.T) {
	m := New()
	m.SetPhase(PhaseConnecting)
	assert.Equal(t, PhaseConnecting, m.PhaseNow())
	m.SetPhase(PhaseEstablished)
	assert.Equal(t, PhaseEstablished, m.PhaseNow())
}

func TestNextSeqIsMonotonicFromOne(t *testing.T) {
	m := New()
	assert.EqualValues(t, 1, m.NextSeq())
	assert.EqualValues(t, 2, m.NextSeq())
	assert.EqualValues(t, 3, m.NextSeq())
}

func TestResetForReconnectZeroesSeqAndAdjustment(t *testing.T) {
	m := New()
	m.NextSeq()
	m.NextSeq()
	m.SetPhase(PhaseEstablished)

	sender := &fakeSender{result: json.RawMessage(`{"time":1000}`)}
	fixedNow := time.UnixMilli(0)
	m.now = func() time.Time { return fixedNow }
	require.NoError(t, m.SyncClock(context.Background(), sender))
	assert.NotZero(t, m.ClockAdjustment())

	m.ResetForReconnect()
	assert.Equal(t, PhaseDisconnected, m.PhaseNow())
	assert.Zero(t, m.ClockAdjustment())
	assert.EqualValues(t, 1, m.NextSeq())
}

func TestSyncClockComputesAdjustment(t *testing.T) {
	m := New()
	fixedNow := time.UnixMilli(5000)
	m.now = func() time.Time { return fixedNow }

	sender := &fakeSender{result: json.RawMessage(`{"time":8000}`)}
	require.NoError(t, m.SyncClock(context.Background(), sender))

	assert.Equal(t, 3*time.Second, m.ClockAdjustment())
	assert.Equal(t, fixedNow.Add(3*time.Second), m.GetTime())
}

func TestSyncClockPropagatesSendError(t *testing.T) {
	m := New()
	sender := &fakeSender{err: assertError("boom")}
	err := m.SyncClock(context.Background(), sender)
	require.Error(t, err)
}

func TestNegotiateCompressionPicksFirstRegisteredPreference(t *testing.T) {
	m := New()
	m.RegisterCodec("gzip-ish")

	chosen := m.NegotiateCompression([]string{"lz4-ish", "gzip-ish", CodecText})
	assert.Equal(t, "gzip-ish", chosen)
	assert.Equal(t, "gzip-ish", m.CompressionScheme())
}

func TestNegotiateCompressionFallsBackToText(t *testing.T) {
	m := New()
	chosen := m.NegotiateCompression([]string{"unknown-scheme"})
	assert.Equal(t, CodecText, chosen)
}

func TestNegotiateCompressionEmptyPreferencesFallsBackToText(t *testing.T) {
	m := New()
	m.RegisterCodec("gzip-ish")
	chosen := m.NegotiateCompression(nil)
	assert.Equal(t, CodecText, chosen)
}

type assertError string

func (e assertError) Error() string { return string(e) }
