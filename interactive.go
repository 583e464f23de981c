package gameinteractive

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/config"
	"codeberg.org/algopatterns/gameinteractive/internal/correlator"
	"codeberg.org/algopatterns/gameinteractive/internal/discovery"
	"codeberg.org/algopatterns/gameinteractive/internal/eventbus"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/logger"
	"codeberg.org/algopatterns/gameinteractive/internal/providers"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
	"codeberg.org/algopatterns/gameinteractive/internal/statemgr"
	"codeberg.org/algopatterns/gameinteractive/internal/throttle"
	"codeberg.org/algopatterns/gameinteractive/internal/transport"
)

// ProviderKey selects one of the four service providers from Using.
type ProviderKey string

const (
	ProviderScenes       ProviderKey = "scenes"
	ProviderGroups       ProviderKey = "groups"
	ProviderControls     ProviderKey = "controls"
	ProviderParticipants ProviderKey = "participants"
)

// authFailureCode is the protocol close code the server sends for a
// rejected handshake; a reconnect must not retry it.
const authFailureCode = 4019

// maxReconnectsPerMinute paces automatic reconnection attempts with
// golang.org/x/time/rate, generalized here from an outbound-request
// limiter to a reconnect-attempt limiter (see DESIGN.md).
const maxReconnectsPerMinute = 6

// GameClient is the single entry point for an Interactive integration: one
// instance per (projectVersionID, clientID) pair, parameterizing every
// connection attempt it makes.
type GameClient struct {
	projectVersionID uint32
	clientID         string
	cfg              *config.Config

	discoveryClient *discovery.Client
	throttleMgr     *throttle.Manager
	bus             *eventbus.Bus
	reconnectLimit  *rate.Limiter

	// newAdapter builds the transport for each connection attempt. Tests
	// in this package override it with transport.NewFakeAdapter to avoid
	// dialing a real socket; production code never touches this field.
	newAdapter func() transport.Adapter

	mu        sync.Mutex
	adapter   transport.Adapter
	corr      *correlator.Correlator
	state     *statemgr.Manager
	token     string
	hostURL   string
	wantReady bool
	closing   bool
	helloCh   chan struct{}

	scenes       *providers.SceneService
	groups       *providers.GroupService
	controls     *providers.ControlService
	participants *providers.ParticipantService
}

// New constructs a GameClient. cfg may be nil to accept every package
// default.
func New(projectVersionID uint32, clientID string, cfg *config.Config) *GameClient {
	if cfg == nil {
		cfg = &config.Config{
			HostDiscoveryURL: config.DefaultHostDiscoveryURL,
			ConnectTimeout:   config.DefaultConnectTimeout,
			RequestTimeout:   config.DefaultRequestTimeout,
		}
	}
	return &GameClient{
		projectVersionID: projectVersionID,
		clientID:         clientID,
		cfg:              cfg,
		discoveryClient:  discovery.NewClient(cfg.HostDiscoveryURL, clientID),
		throttleMgr:      throttle.NewManager(nil),
		bus:              eventbus.New(),
		reconnectLimit:   rate.NewLimiter(rate.Every(time.Minute/maxReconnectsPerMinute), 1),
		state:            statemgr.New(),
		newAdapter:       func() transport.Adapter { return transport.NewWebSocketAdapter() },
	}
}

// EventBus returns the bus used for both server-pushed and synthesized
// connection lifecycle events.
func (c *GameClient) EventBus() *eventbus.Bus {
	return c.bus
}

// Using returns the typed accessor for one of the four service providers.
// Callers must Connect first: before the first connection attempt every
// provider is nil. After a Disconnect or a dropped connection the providers
// stay bound to the closed correlator and fail every call with
// ConnectionClosedError.
// The Scenes/Groups/Controls/Participants methods below are equivalent,
// statically-typed shortcuts for callers that know which provider they
// want at compile time.
func (c *GameClient) Using(key ProviderKey) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case ProviderScenes:
		return c.scenes
	case ProviderGroups:
		return c.groups
	case ProviderControls:
		return c.controls
	case ProviderParticipants:
		return c.participants
	default:
		return nil
	}
}

// Scenes returns the scene provider.
func (c *GameClient) Scenes() *providers.SceneService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scenes
}

// Groups returns the group provider.
func (c *GameClient) Groups() *providers.GroupService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groups
}

// Controls returns the control provider.
func (c *GameClient) Controls() *providers.ControlService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controls
}

// Participants returns the participant provider.
func (c *GameClient) Participants() *providers.ParticipantService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.participants
}

// Connect performs host discovery (unless hostURL is provided), opens the
// transport, waits for the server's hello, and brings the connection to
// Established. It is one of the module's four suspension points.
func (c *GameClient) Connect(ctx context.Context, token string, hostURL string) error {
	c.mu.Lock()
	if c.adapter != nil {
		c.mu.Unlock()
		return &ierrors.ConnectionError{Reason: "already connected"}
	}
	c.token = token
	c.hostURL = hostURL
	c.closing = false
	c.mu.Unlock()

	return c.connectOnce(ctx)
}

// connectOnce runs one full connection attempt: it owns the reset of
// helloCh so every attempt, including automatic reconnects from
// attemptReconnect, gets a genuine wait for a fresh hello rather than
// observing one a previous attempt already closed.
func (c *GameClient) connectOnce(ctx context.Context) error {
	c.state.ResetForReconnect()
	c.state.SetPhase(statemgr.PhaseConnecting)

	c.mu.Lock()
	hostURL := c.hostURL
	token := c.token
	c.helloCh = make(chan struct{})
	helloCh := c.helloCh
	c.mu.Unlock()

	if hostURL == "" {
		discovered, err := c.discoveryClient.DiscoverHost(ctx)
		if err != nil {
			return err
		}
		hostURL = discovered
	}

	adapter := c.newAdapter()
	corr := correlator.New(adapter, c.throttleMgr, c.state.NextSeq)
	corr.SetTimeout(c.cfg.RequestTimeout)

	c.mu.Lock()
	c.adapter = adapter
	c.corr = corr
	c.hostURL = hostURL
	c.scenes = providers.NewSceneService(corr)
	c.groups = providers.NewGroupService(corr)
	c.controls = providers.NewControlService(corr)
	c.participants = providers.NewParticipantService(corr)
	c.mu.Unlock()

	opts := transport.Options{
		Token:            token,
		ProjectVersionID: c.projectVersionID,
		Sharecode:        c.cfg.Sharecode,
		ConnectTimeout:   c.cfg.ConnectTimeout,
	}

	if err := adapter.Open(ctx, hostURL, opts, c); err != nil {
		c.clearAdapter()
		return err
	}

	select {
	case <-helloCh:
	case <-ctx.Done():
		_ = adapter.Close(1000, "connect canceled")
		c.clearAdapter()
		return ctx.Err()
	case <-time.After(c.cfg.ConnectTimeout):
		_ = adapter.Close(1000, "hello timeout")
		c.clearAdapter()
		return &ierrors.ConnectionError{Reason: "timed out waiting for hello"}
	}

	c.state.SetPhase(statemgr.PhaseEstablished)
	c.bus.Publish(eventbus.ConnectionEstablishedEvent{})

	if err := c.state.SyncClock(ctx, corr); err != nil {
		logger.Debug("initial clock sync failed", "error", err)
	}

	c.mu.Lock()
	wantReady := c.wantReady
	c.mu.Unlock()
	if wantReady {
		if err := c.participants.Ready(ctx, true); err != nil {
			logger.Debug("resuming ready state after connect failed", "error", err)
		}
	}

	return nil
}

func (c *GameClient) clearAdapter() {
	c.mu.Lock()
	c.adapter = nil
	c.corr = nil
	c.mu.Unlock()
}

// Disconnect transitions to Closing, closes the transport, fails every
// pending request, and publishes ConnectionClosedEvent. It is a suspension
// point and an unconditional cancel-all.
func (c *GameClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	c.closing = true
	adapter := c.adapter
	corr := c.corr
	c.mu.Unlock()

	if adapter == nil {
		return nil
	}

	c.state.SetPhase(statemgr.PhaseClosing)
	err := adapter.Close(1000, "client disconnect")
	if corr != nil {
		corr.CloseWithError(&ierrors.ConnectionClosedError{Code: 1000, Reason: "local disconnect"})
	}
	c.state.SetPhase(statemgr.PhaseDisconnected)
	c.bus.Publish(eventbus.ConnectionClosedEvent{Code: 1000, Reason: "local disconnect", Remote: false})
	c.clearAdapter()
	return err
}

// Ready sets the integration's readiness and remembers it across
// reconnects so the façade can re-issue ready(previousReadyState)
// automatically.
func (c *GameClient) Ready(ctx context.Context, isReady bool) error {
	c.mu.Lock()
	c.wantReady = isReady
	participants := c.participants
	c.mu.Unlock()

	if participants == nil {
		return &ierrors.ConnectionClosedError{Reason: "not connected"}
	}
	return participants.Ready(ctx, isReady)
}

// GetTime returns the client's best estimate of the server's clock: the
// local clock plus the adjustment recorded by the clock sync Connect runs.
// It never blocks and never issues a request.
func (c *GameClient) GetTime() time.Time {
	return c.state.GetTime()
}

// SetCompression offers preferences to the server via the setCompression
// method and records whichever scheme this client itself supports from
// that list, falling back to CodecText. Only CodecText is registered, and
// GameClient offers no way to register another scheme, so the scheme it
// returns and records is always CodecText.
func (c *GameClient) SetCompression(ctx context.Context, preferences []string) (string, error) {
	c.mu.Lock()
	corr := c.corr
	c.mu.Unlock()
	if corr == nil {
		return "", &ierrors.ConnectionClosedError{Reason: "not connected"}
	}

	if _, err := corr.Send(ctx, codec.MethodSetCompression, map[string]any{"schemes": preferences}, false); err != nil {
		return "", err
	}
	return c.state.NegotiateCompression(preferences), nil
}

// SetBandwidthThrottle pushes a new throttle configuration to the server
// and, on success, applies the same configuration locally.
func (c *GameClient) SetBandwidthThrottle(ctx context.Context, cfg map[string]throttle.Config) error {
	c.mu.Lock()
	corr := c.corr
	c.mu.Unlock()
	if corr == nil {
		return &ierrors.ConnectionClosedError{Reason: "not connected"}
	}

	wire := make(map[string]map[string]float64, len(cfg))
	for method, b := range cfg {
		wire[method] = map[string]float64{"capacity": float64(b.Capacity), "drainRate": b.DrainRate}
	}

	if _, err := corr.Send(ctx, codec.MethodSetBandwidthThrottle, wire, false); err != nil {
		return err
	}
	c.throttleMgr.SetConfig(cfg)
	return nil
}

// GetThrottleState returns the current bandwidth bucket snapshot per
// method. This reads purely local state; no round trip.
func (c *GameClient) GetThrottleState() map[string]throttle.State {
	return c.throttleMgr.State()
}

// CaptureTransaction charges the sparks held by the transaction token that
// accompanied a control input, committing the participant's spend for that
// action.
func (c *GameClient) CaptureTransaction(ctx context.Context, transactionID string) error {
	c.mu.Lock()
	corr := c.corr
	c.mu.Unlock()
	if corr == nil {
		return &ierrors.ConnectionClosedError{Reason: "not connected"}
	}
	_, err := corr.Send(ctx, codec.MethodCapture, map[string]string{"transactionID": transactionID}, false)
	return err
}

// GetMemoryStats issues getMemoryStats and returns the raw decoded result;
// the wire shape of memory stats is server-defined and out of this
// module's scope beyond relaying it.
func (c *GameClient) GetMemoryStats(ctx context.Context) (json.RawMessage, error) {
	c.mu.Lock()
	corr := c.corr
	c.mu.Unlock()
	if corr == nil {
		return nil, &ierrors.ConnectionClosedError{Reason: "not connected"}
	}
	return corr.Send(ctx, codec.MethodGetMemoryStats, nil, false)
}

// --- transport.Listener ---

// OnOpen marks the handshake begun; the connection waits here for the
// server's hello before Connect returns.
func (c *GameClient) OnOpen(_ *http.Response) {
	c.state.SetPhase(statemgr.PhaseHandshaking)
	c.bus.Publish(eventbus.ConnectionOpenEvent{})
}

// OnText decodes one inbound frame and routes each element to the
// correlator (replies) or the event dispatcher (server-initiated method
// calls).
func (c *GameClient) OnText(payload []byte) {
	frames, errs := codec.Decode(payload)
	for _, err := range errs {
		logger.Debug("dropping malformed frame element", "error", err)
	}

	c.mu.Lock()
	corr := c.corr
	c.mu.Unlock()

	for _, frame := range frames {
		if frame.Reply != nil && corr != nil {
			corr.HandleReply(*frame.Reply)
			continue
		}
		if frame.Method != nil {
			c.handleInboundMethod(*frame.Method)
		}
	}
}

// OnBinary is a no-op: this module requires only the text compression
// scheme.
func (c *GameClient) OnBinary(_ []byte) {
	logger.Debug("ignoring binary frame; only text scheme is supported")
}

// OnClose fails every pending request, publishes ConnectionClosedEvent,
// and — unless this was a deliberate Disconnect, a close the transport did
// not report as remote, or an auth rejection — schedules a reconnect
// attempt.
func (c *GameClient) OnClose(code int, reason string, remote bool) {
	c.state.SetPhase(statemgr.PhaseDisconnected)

	c.mu.Lock()
	corr := c.corr
	closing := c.closing
	c.mu.Unlock()

	if corr != nil {
		corr.CloseWithError(&ierrors.ConnectionClosedError{Code: code, Reason: reason})
	}
	c.bus.Publish(eventbus.ConnectionClosedEvent{Code: code, Reason: reason, Remote: remote})
	c.clearAdapter()

	if closing || !remote || code == authFailureCode {
		return
	}

	go c.attemptReconnect()
}

// OnError publishes ConnectionErrorEvent; the transport's own close
// callback (not this one) is what drives phase transitions and
// reconnection, keeping error reporting separate from lifecycle handling.
func (c *GameClient) OnError(err error) {
	c.bus.Publish(eventbus.ConnectionErrorEvent{Err: err})
}

// attemptReconnect re-runs host discovery and reconnects with the same
// credentials, paced by reconnectLimit so a flapping server cannot spin
// this module into a reconnect storm.
func (c *GameClient) attemptReconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
	defer cancel()

	if err := c.reconnectLimit.Wait(ctx); err != nil {
		logger.Debug("reconnect pacing canceled", "error", err)
		return
	}

	c.mu.Lock()
	c.hostURL = "" // force rediscovery; the old host may be the one that failed
	c.mu.Unlock()

	if err := c.connectOnce(ctx); err != nil {
		logger.Debug("automatic reconnect failed", "error", err)
	}
}

// handleInboundMethod routes one server-initiated method packet: hello
// completes the handshake, onX methods decode their resource array and
// publish the matching typed event, giveInput projects into one of the seven
// input event types, and issueMemoryWarning has no payload at all.
func (c *GameClient) handleInboundMethod(pkt codec.MethodPacket) {
	switch pkt.Method {
	case codec.MethodHello:
		c.mu.Lock()
		if c.helloCh != nil {
			close(c.helloCh)
			c.helloCh = nil
		}
		c.mu.Unlock()

	case codec.MethodOnReady:
		var body struct {
			IsReady bool `json:"isReady"`
		}
		if decodeParams(pkt.Params, &body) {
			c.bus.Publish(eventbus.ReadyEvent{IsReady: body.IsReady})
		}

	case codec.MethodOnParticipantJoin:
		if p, ok := decodeParticipants(pkt.Params); ok {
			c.bus.Publish(eventbus.ParticipantJoinEvent{Participants: p})
		}
	case codec.MethodOnParticipantLeave:
		if p, ok := decodeParticipants(pkt.Params); ok {
			c.bus.Publish(eventbus.ParticipantLeaveEvent{Participants: p})
		}
	case codec.MethodOnParticipantUpdate:
		if p, ok := decodeParticipants(pkt.Params); ok {
			c.bus.Publish(eventbus.ParticipantUpdateEvent{Participants: p})
		}

	case codec.MethodOnGroupCreate:
		if g, ok := decodeGroups(pkt.Params); ok {
			c.bus.Publish(eventbus.GroupCreateEvent{Groups: g})
		}
	case codec.MethodOnGroupDelete:
		if g, ok := decodeGroups(pkt.Params); ok {
			c.bus.Publish(eventbus.GroupDeleteEvent{Groups: g})
		}
	case codec.MethodOnGroupUpdate:
		if g, ok := decodeGroups(pkt.Params); ok {
			c.bus.Publish(eventbus.GroupUpdateEvent{Groups: g})
		}

	case codec.MethodOnSceneCreate:
		if s, ok := decodeScenes(pkt.Params); ok {
			c.bus.Publish(eventbus.SceneCreateEvent{Scenes: s})
		}
	case codec.MethodOnSceneDelete:
		if s, ok := decodeScenes(pkt.Params); ok {
			c.bus.Publish(eventbus.SceneDeleteEvent{Scenes: s})
		}
	case codec.MethodOnSceneUpdate:
		if s, ok := decodeScenes(pkt.Params); ok {
			c.bus.Publish(eventbus.SceneUpdateEvent{Scenes: s})
		}

	case codec.MethodOnControlCreate:
		if ctrls, ok := decodeControls(pkt.Params); ok {
			c.bus.Publish(eventbus.ControlCreateEvent{Controls: ctrls})
		}
	case codec.MethodOnControlDelete:
		if ctrls, ok := decodeControls(pkt.Params); ok {
			c.bus.Publish(eventbus.ControlDeleteEvent{Controls: ctrls})
		}
	case codec.MethodOnControlUpdate:
		if ctrls, ok := decodeControls(pkt.Params); ok {
			c.bus.Publish(eventbus.ControlUpdateEvent{Controls: ctrls})
		}

	case codec.MethodGiveInput:
		c.handleGiveInput(pkt.Params)

	case codec.MethodIssueMemoryWarning:
		c.bus.Publish(eventbus.MemoryWarningEvent{})

	default:
		logger.Debug("unhandled inbound method", "method", pkt.Method)
	}
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Debug("decode inbound method params failed", "error", err)
		return false
	}
	return true
}

func decodeParticipants(raw json.RawMessage) ([]resource.Participant, bool) {
	var body struct {
		Participants []json.RawMessage `json:"participants"`
	}
	if !decodeParams(raw, &body) {
		return nil, false
	}
	out := make([]resource.Participant, 0, len(body.Participants))
	for _, el := range body.Participants {
		p, err := codec.DecodeParticipant(el)
		if err != nil {
			logger.Debug("decode participant failed", "error", err)
			continue
		}
		out = append(out, p)
	}
	return out, true
}

func decodeGroups(raw json.RawMessage) ([]resource.Group, bool) {
	var body struct {
		Groups []json.RawMessage `json:"groups"`
	}
	if !decodeParams(raw, &body) {
		return nil, false
	}
	out := make([]resource.Group, 0, len(body.Groups))
	for _, el := range body.Groups {
		g, err := codec.DecodeGroup(el)
		if err != nil {
			logger.Debug("decode group failed", "error", err)
			continue
		}
		out = append(out, g)
	}
	return out, true
}

func decodeScenes(raw json.RawMessage) ([]resource.Scene, bool) {
	var body struct {
		Scenes []json.RawMessage `json:"scenes"`
	}
	if !decodeParams(raw, &body) {
		return nil, false
	}
	out := make([]resource.Scene, 0, len(body.Scenes))
	for _, el := range body.Scenes {
		s, err := codec.DecodeScene(el)
		if err != nil {
			logger.Debug("decode scene failed", "error", err)
			continue
		}
		out = append(out, s)
	}
	return out, true
}

func decodeControls(raw json.RawMessage) ([]resource.Control, bool) {
	var body struct {
		SceneID  string            `json:"sceneID"`
		Controls []json.RawMessage `json:"controls"`
	}
	if !decodeParams(raw, &body) {
		return nil, false
	}
	out := make([]resource.Control, 0, len(body.Controls))
	for _, el := range body.Controls {
		ctrl, err := codec.DecodeControl(el, body.SceneID)
		if err != nil {
			logger.Debug("decode control failed", "error", err)
			continue
		}
		out = append(out, ctrl)
	}
	return out, true
}

// handleGiveInput decodes one giveInput call and publishes the typed
// projection codec.DecodeControlInput produced.
func (c *GameClient) handleGiveInput(raw json.RawMessage) {
	var body struct {
		ParticipantID string          `json:"participantID"`
		Input         json.RawMessage `json:"input"`
	}
	if !decodeParams(raw, &body) {
		return
	}

	input, err := codec.DecodeControlInput(body.ParticipantID, body.Input)
	if err != nil {
		logger.Debug("decode giveInput failed", "error", err)
		return
	}

	switch v := input.(type) {
	case resource.MouseInput:
		if v.Event == resource.InputEventMouseDown {
			c.bus.Publish(eventbus.ControlMouseDownInputEvent{Input: v})
		} else {
			c.bus.Publish(eventbus.ControlMouseUpInputEvent{Input: v})
		}
	case resource.KeyInput:
		if v.Event == resource.InputEventKeyDown {
			c.bus.Publish(eventbus.ControlKeyDownInputEvent{Input: v})
		} else {
			c.bus.Publish(eventbus.ControlKeyUpInputEvent{Input: v})
		}
	case resource.MoveInput:
		c.bus.Publish(eventbus.ControlMoveInputEvent{Input: v})
	case resource.SubmitInput:
		c.bus.Publish(eventbus.ControlSubmitInputEvent{Input: v})
	case resource.GenericInput:
		c.bus.Publish(eventbus.ControlGenericInputEvent{Input: v})
	}
}
