package gameinteractive

import (
	"codeberg.org/algopatterns/gameinteractive/internal/config"
	"codeberg.org/algopatterns/gameinteractive/internal/eventbus"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/providers"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
	"codeberg.org/algopatterns/gameinteractive/internal/throttle"
)

// The implementation lives in internal packages; everything a caller needs
// to name is aliased here so the module has exactly one importable surface.

// Config configures a GameClient; see LoadEnvironmentVariables for the
// environment-driven constructor.
type Config = config.Config

// LoadEnvironmentVariables builds a Config from INTERACTIVE_* environment
// variables, falling back to package defaults for anything unset.
func LoadEnvironmentVariables() (*Config, error) {
	return config.LoadEnvironmentVariables()
}

// Resource model.
type (
	Scene           = resource.Scene
	Group           = resource.Group
	Control         = resource.Control
	ControlPosition = resource.ControlPosition
	Participant     = resource.Participant
	Meta            = resource.Meta

	ControlKind = resource.ControlKind
	CanvasSize  = resource.CanvasSize

	ButtonAttrs   = resource.ButtonAttrs
	JoystickAttrs = resource.JoystickAttrs
	LabelAttrs    = resource.LabelAttrs
	TextboxAttrs  = resource.TextboxAttrs

	ControlInput = resource.ControlInput
	MouseInput   = resource.MouseInput
	KeyInput     = resource.KeyInput
	MoveInput    = resource.MoveInput
	SubmitInput  = resource.SubmitInput
	GenericInput = resource.GenericInput
)

const (
	DefaultSceneID = resource.DefaultSceneID
	DefaultGroupID = resource.DefaultGroupID

	ControlKindButton   = resource.ControlKindButton
	ControlKindJoystick = resource.ControlKindJoystick
	ControlKindLabel    = resource.ControlKindLabel
	ControlKindTextbox  = resource.ControlKindTextbox

	CanvasSmall  = resource.CanvasSmall
	CanvasMedium = resource.CanvasMedium
	CanvasLarge  = resource.CanvasLarge
)

// SyncScene reconciles a caller-held Scene with a fresher server snapshot:
// matching identity absorbs the server's copy, mismatched identity returns
// local unchanged. SyncGroup, SyncControl and SyncParticipant behave the
// same way for their resource kinds.
func SyncScene(local, server Scene) Scene { return resource.SyncScene(local, server) }

func SyncGroup(local, server Group) Group { return resource.SyncGroup(local, server) }

func SyncControl(local, server Control) Control { return resource.SyncControl(local, server) }

func SyncParticipant(local, server Participant) Participant {
	return resource.SyncParticipant(local, server)
}

// ReconcileScenes folds a fresh server collection into a caller's local
// slice in the server's order, replacing matches, dropping scenes the
// server no longer reports, and including new ones where the server lists
// them.
func ReconcileScenes(local, server []Scene) []Scene { return resource.ReconcileScenes(local, server) }

// Service providers, as returned by Scenes/Groups/Controls/Participants.
type (
	SceneService       = providers.SceneService
	GroupService       = providers.GroupService
	ControlService     = providers.ControlService
	ParticipantService = providers.ParticipantService
	SceneCompletion    = providers.SceneCompletion
)

// Bandwidth throttle configuration and snapshots, as accepted by
// SetBandwidthThrottle and returned by GetThrottleState.
type (
	ThrottleConfig = throttle.Config
	ThrottleState  = throttle.State
)

// Event bus and the events it carries.
type (
	Bus = eventbus.Bus

	ReadyEvent         = eventbus.ReadyEvent
	MemoryWarningEvent = eventbus.MemoryWarningEvent

	ParticipantJoinEvent   = eventbus.ParticipantJoinEvent
	ParticipantLeaveEvent  = eventbus.ParticipantLeaveEvent
	ParticipantUpdateEvent = eventbus.ParticipantUpdateEvent

	GroupCreateEvent = eventbus.GroupCreateEvent
	GroupDeleteEvent = eventbus.GroupDeleteEvent
	GroupUpdateEvent = eventbus.GroupUpdateEvent

	SceneCreateEvent = eventbus.SceneCreateEvent
	SceneDeleteEvent = eventbus.SceneDeleteEvent
	SceneUpdateEvent = eventbus.SceneUpdateEvent

	ControlCreateEvent = eventbus.ControlCreateEvent
	ControlDeleteEvent = eventbus.ControlDeleteEvent
	ControlUpdateEvent = eventbus.ControlUpdateEvent

	ControlMouseDownInputEvent = eventbus.ControlMouseDownInputEvent
	ControlMouseUpInputEvent   = eventbus.ControlMouseUpInputEvent
	ControlKeyDownInputEvent   = eventbus.ControlKeyDownInputEvent
	ControlKeyUpInputEvent     = eventbus.ControlKeyUpInputEvent
	ControlMoveInputEvent      = eventbus.ControlMoveInputEvent
	ControlSubmitInputEvent    = eventbus.ControlSubmitInputEvent
	ControlGenericInputEvent   = eventbus.ControlGenericInputEvent

	ConnectionOpenEvent        = eventbus.ConnectionOpenEvent
	ConnectionEstablishedEvent = eventbus.ConnectionEstablishedEvent
	ConnectionClosedEvent      = eventbus.ConnectionClosedEvent
	ConnectionErrorEvent       = eventbus.ConnectionErrorEvent
)

// Subscribe registers handler for every event of type T published on b.
func Subscribe[T any](b *Bus, handler func(T)) {
	eventbus.Subscribe(b, handler)
}

// Error taxonomy, for errors.As/errors.Is against anything the client
// returns.
type (
	AuthenticationError   = ierrors.AuthenticationError
	ConnectionError       = ierrors.ConnectionError
	ConnectionClosedError = ierrors.ConnectionClosedError
	NoHostsFound          = ierrors.NoHostsFound
	NoReplyError          = ierrors.NoReplyError
	ReplyError            = ierrors.ReplyError
	ThrottledError        = ierrors.ThrottledError
	ProtocolError         = ierrors.ProtocolError
	PositionRequiredError = ierrors.PositionRequiredError
)
