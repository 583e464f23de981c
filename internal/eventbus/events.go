package eventbus

import "codeberg.org/algopatterns/gameinteractive/internal/resource"

// ReadyEvent reports a change in the integration's ready state as pushed
// by onReady.
type ReadyEvent struct {
	IsReady bool
}

// ParticipantJoinEvent, ParticipantLeaveEvent and ParticipantUpdateEvent
// carry the set of affected participants for onParticipantJoin/Leave/
// Update.
type ParticipantJoinEvent struct{ Participants []resource.Participant }
type ParticipantLeaveEvent struct{ Participants []resource.Participant }
type ParticipantUpdateEvent struct{ Participants []resource.Participant }

// GroupCreateEvent, GroupDeleteEvent and GroupUpdateEvent carry the
// affected groups for onGroupCreate/Delete/Update.
type GroupCreateEvent struct{ Groups []resource.Group }
type GroupDeleteEvent struct{ Groups []resource.Group }
type GroupUpdateEvent struct{ Groups []resource.Group }

// SceneCreateEvent, SceneDeleteEvent and SceneUpdateEvent carry the
// affected scenes for onSceneCreate/Delete/Update.
type SceneCreateEvent struct{ Scenes []resource.Scene }
type SceneDeleteEvent struct{ Scenes []resource.Scene }
type SceneUpdateEvent struct{ Scenes []resource.Scene }

// ControlCreateEvent, ControlDeleteEvent and ControlUpdateEvent carry the
// affected controls for onControlCreate/Delete/Update.
type ControlCreateEvent struct{ Controls []resource.Control }
type ControlDeleteEvent struct{ Controls []resource.Control }
type ControlUpdateEvent struct{ Controls []resource.Control }

// ControlMouseDownInputEvent, ControlMouseUpInputEvent,
// ControlKeyDownInputEvent, ControlKeyUpInputEvent, ControlMoveInputEvent
// and ControlSubmitInputEvent are the typed projections of giveInput.
// ControlGenericInputEvent covers any event name outside that closed set.
type ControlMouseDownInputEvent struct{ Input resource.MouseInput }
type ControlMouseUpInputEvent struct{ Input resource.MouseInput }
type ControlKeyDownInputEvent struct{ Input resource.KeyInput }
type ControlKeyUpInputEvent struct{ Input resource.KeyInput }
type ControlMoveInputEvent struct{ Input resource.MoveInput }
type ControlSubmitInputEvent struct{ Input resource.SubmitInput }
type ControlGenericInputEvent struct{ Input resource.GenericInput }

// MemoryWarningEvent reports an issueMemoryWarning push from the service.
type MemoryWarningEvent struct{}

// ConnectionOpenEvent, ConnectionEstablishedEvent, ConnectionClosedEvent
// and ConnectionErrorEvent are synthesized locally by the GameClient façade
// from transport callbacks rather than pushed by the service.
type ConnectionOpenEvent struct{}

type ConnectionEstablishedEvent struct{}

type ConnectionClosedEvent struct {
	Code   int
	Reason string
	Remote bool
}

type ConnectionErrorEvent struct {
	Err error
}
