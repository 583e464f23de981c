package resource

import "encoding/json"

// Input event names carried on the giveInput method.
const (
	InputEventMouseDown = "mousedown"
	InputEventMouseUp   = "mouseup"
	InputEventKeyDown   = "keydown"
	InputEventKeyUp     = "keyup"
	InputEventMove      = "move"
	InputEventSubmit    = "submit"
)

// ControlInput is the raw, event-agnostic shape of one input from a
// participant: a control ID, an event name, and whatever extra fields that
// event carries. Raw preserves the full field map so unknown event types
// remain parseable, while the typed Mouse/Key/Move/Submit structs below are
// the event-specific decoders layered on top.
type ControlInput struct {
	ControlID     string
	ParticipantID string
	Event         string
	TransactionID string
	Raw           json.RawMessage
}

// MouseInput decodes a mousedown/mouseup ControlInput.
type MouseInput struct {
	ControlInput
	Button int
}

// KeyInput decodes a keydown/keyup ControlInput.
type KeyInput struct {
	ControlInput
	Key int
}

// MoveInput decodes a joystick move ControlInput.
type MoveInput struct {
	ControlInput
	X float64
	Y float64
}

// SubmitInput decodes a textbox submit ControlInput.
type SubmitInput struct {
	ControlInput
	Value string
}

// GenericInput is returned for any event name outside the known set, so a
// newly introduced event type never fails to parse — it just isn't typed
// yet, the same UNKNOWN-sentinel treatment used for unrecognized methods.
type GenericInput struct {
	ControlInput
}
