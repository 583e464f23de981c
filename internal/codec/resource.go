package codec

import (
	"encoding/json"
	"fmt"

	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
)

// wireControlPosition mirrors resource.ControlPosition for JSON.
type wireControlPosition struct {
	CanvasSize string  `json:"canvasSize"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// wireControl carries every kind's fields flattened, the way the service
// actually sends controls on the wire; DecodeControl dispatches on Kind to
// decide which are meaningful.
type wireControl struct {
	ControlID string                `json:"controlID"`
	SceneID   string                `json:"sceneID,omitempty"`
	Kind      string                `json:"kind"`
	Disabled  bool                  `json:"disabled,omitempty"`
	Position  []wireControlPosition `json:"position,omitempty"`

	KeyCode         *int     `json:"keyCode,omitempty"`
	Text            *string  `json:"text,omitempty"`
	Tooltip         *string  `json:"tooltip,omitempty"`
	Cost            *int     `json:"cost,omitempty"`
	Progress        *float64 `json:"progress,omitempty"`
	Cooldown        *int64   `json:"cooldown,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	TextColor       *string  `json:"textColor,omitempty"`
	BackgroundImage *string  `json:"backgroundImage,omitempty"`

	SampleRate *int     `json:"sampleRate,omitempty"`
	Angle      *float64 `json:"angle,omitempty"`
	Intensity  *float64 `json:"intensity,omitempty"`

	TextSize  *float64 `json:"textSize,omitempty"`
	Bold      *bool    `json:"bold,omitempty"`
	Italic    *bool    `json:"italic,omitempty"`
	Underline *bool    `json:"underline,omitempty"`

	SubmitText  *string `json:"submitText,omitempty"`
	Placeholder *string `json:"placeholder,omitempty"`
	HasSubmit   *bool   `json:"hasSubmit,omitempty"`
	Multiline   *bool   `json:"multiline,omitempty"`
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// DecodeControl parses one control JSON object, dispatching on "kind" to
// populate the matching attrs variant. sceneID is injected by the caller
// when the control was embedded inside a scene payload that omitted it.
func DecodeControl(raw json.RawMessage, sceneID string) (resource.Control, error) {
	var wire wireControl
	if err := json.Unmarshal(raw, &wire); err != nil {
		return resource.Control{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode control: %v", err)}
	}

	if wire.SceneID == "" {
		wire.SceneID = sceneID
	}

	c := resource.Control{
		ControlID: wire.ControlID,
		SceneID:   wire.SceneID,
		Kind:      resource.ControlKind(wire.Kind),
		Disabled:  wire.Disabled,
	}

	for _, pos := range wire.Position {
		c.SetPosition(resource.ControlPosition{
			CanvasSize: resource.CanvasSize(pos.CanvasSize),
			Width:      pos.Width,
			Height:     pos.Height,
			X:          pos.X,
			Y:          pos.Y,
		})
	}

	switch c.Kind {
	case resource.ControlKindButton:
		c.Button = &resource.ButtonAttrs{
			KeyCode:         derefInt(wire.KeyCode),
			Text:            derefStr(wire.Text),
			Tooltip:         derefStr(wire.Tooltip),
			Cost:            derefInt(wire.Cost),
			Progress:        derefFloat(wire.Progress),
			Cooldown:        derefInt64(wire.Cooldown),
			BackgroundColor: derefStr(wire.BackgroundColor),
			TextColor:       derefStr(wire.TextColor),
			BackgroundImage: derefStr(wire.BackgroundImage),
		}
	case resource.ControlKindJoystick:
		c.Joystick = &resource.JoystickAttrs{
			SampleRate: derefInt(wire.SampleRate),
			Angle:      derefFloat(wire.Angle),
			Intensity:  derefFloat(wire.Intensity),
		}
	case resource.ControlKindLabel:
		c.Label = &resource.LabelAttrs{
			Text:      derefStr(wire.Text),
			TextSize:  derefFloat(wire.TextSize),
			TextColor: derefStr(wire.TextColor),
			Bold:      derefBool(wire.Bold),
			Italic:    derefBool(wire.Italic),
			Underline: derefBool(wire.Underline),
		}
	case resource.ControlKindTextbox:
		c.Textbox = &resource.TextboxAttrs{
			SubmitText:  derefStr(wire.SubmitText),
			Placeholder: derefStr(wire.Placeholder),
			Cost:        derefInt(wire.Cost),
			HasSubmit:   derefBool(wire.HasSubmit),
			Multiline:   derefBool(wire.Multiline),
		}
	default:
		return resource.Control{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("unknown control kind %q", wire.Kind)}
	}

	return c, nil
}

// EncodeControl serializes a control back to the flattened wire shape,
// omitting the attrs of every kind other than c.Kind.
func EncodeControl(c resource.Control) ([]byte, error) {
	wire := wireControl{
		ControlID: c.ControlID,
		SceneID:   c.SceneID,
		Kind:      string(c.Kind),
		Disabled:  c.Disabled,
	}

	for _, pos := range c.Positions {
		wire.Position = append(wire.Position, wireControlPosition{
			CanvasSize: string(pos.CanvasSize),
			Width:      pos.Width,
			Height:     pos.Height,
			X:          pos.X,
			Y:          pos.Y,
		})
	}

	switch c.Kind {
	case resource.ControlKindButton:
		if c.Button != nil {
			wire.KeyCode = &c.Button.KeyCode
			wire.Text = &c.Button.Text
			wire.Tooltip = &c.Button.Tooltip
			wire.Cost = &c.Button.Cost
			wire.Progress = &c.Button.Progress
			wire.Cooldown = &c.Button.Cooldown
			wire.BackgroundColor = &c.Button.BackgroundColor
			wire.TextColor = &c.Button.TextColor
			wire.BackgroundImage = &c.Button.BackgroundImage
		}
	case resource.ControlKindJoystick:
		if c.Joystick != nil {
			wire.SampleRate = &c.Joystick.SampleRate
			wire.Angle = &c.Joystick.Angle
			wire.Intensity = &c.Joystick.Intensity
		}
	case resource.ControlKindLabel:
		if c.Label != nil {
			wire.Text = &c.Label.Text
			wire.TextSize = &c.Label.TextSize
			wire.TextColor = &c.Label.TextColor
			wire.Bold = &c.Label.Bold
			wire.Italic = &c.Label.Italic
			wire.Underline = &c.Label.Underline
		}
	case resource.ControlKindTextbox:
		if c.Textbox != nil {
			wire.SubmitText = &c.Textbox.SubmitText
			wire.Placeholder = &c.Textbox.Placeholder
			wire.Cost = &c.Textbox.Cost
			wire.HasSubmit = &c.Textbox.HasSubmit
			wire.Multiline = &c.Textbox.Multiline
		}
	}

	return json.Marshal(wire)
}

// wireScene mirrors resource.Scene; Controls carry raw JSON so DecodeScene
// can inject SceneID into each before dispatching to DecodeControl — the
// server omits sceneID on embedded controls since they're owned by the
// enclosing scene.
type wireScene struct {
	SceneID  string                     `json:"sceneID"`
	Controls []json.RawMessage          `json:"controls,omitempty"`
	Meta     map[string]json.RawMessage `json:"meta,omitempty"`
}

// DecodeScene parses a scene JSON object, propagating sceneID into every
// embedded control.
func DecodeScene(raw json.RawMessage) (resource.Scene, error) {
	var wire wireScene
	if err := json.Unmarshal(raw, &wire); err != nil {
		return resource.Scene{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode scene: %v", err)}
	}

	scene := resource.Scene{SceneID: wire.SceneID}
	if wire.Meta != nil {
		scene.Meta = resource.Meta(wire.Meta)
	}

	for _, rawControl := range wire.Controls {
		c, err := DecodeControl(rawControl, wire.SceneID)
		if err != nil {
			return resource.Scene{}, err
		}
		scene.Controls = append(scene.Controls, c)
	}

	return scene, nil
}

// EncodeScene serializes a scene, including its controls inline (each
// still carries its own sceneID; on decode, DecodeScene fills it in for
// embedded controls that omit it).
func EncodeScene(s resource.Scene) ([]byte, error) {
	wire := wireScene{SceneID: s.SceneID}
	if s.Meta != nil {
		wire.Meta = map[string]json.RawMessage(s.Meta)
	}
	for _, c := range s.Controls {
		b, err := EncodeControl(c)
		if err != nil {
			return nil, err
		}
		wire.Controls = append(wire.Controls, b)
	}
	return json.Marshal(wire)
}

// wireGroup mirrors resource.Group.
type wireGroup struct {
	GroupID string                     `json:"groupID"`
	SceneID string                     `json:"sceneID,omitempty"`
	Meta    map[string]json.RawMessage `json:"meta,omitempty"`
}

// DecodeGroup parses a group JSON object, applying the same empty-scene
// rewrite resource.Group.WithDefaultScene documents.
func DecodeGroup(raw json.RawMessage) (resource.Group, error) {
	var wire wireGroup
	if err := json.Unmarshal(raw, &wire); err != nil {
		return resource.Group{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode group: %v", err)}
	}
	g := resource.Group{GroupID: wire.GroupID, SceneID: wire.SceneID}
	if wire.Meta != nil {
		g.Meta = resource.Meta(wire.Meta)
	}
	return g.WithDefaultScene(), nil
}

// EncodeGroup serializes a group.
func EncodeGroup(g resource.Group) ([]byte, error) {
	wire := wireGroup{GroupID: g.GroupID, SceneID: g.SceneID}
	if g.Meta != nil {
		wire.Meta = map[string]json.RawMessage(g.Meta)
	}
	return json.Marshal(wire)
}

// wireParticipant mirrors resource.Participant.
type wireParticipant struct {
	SessionID   string                     `json:"sessionID"`
	UserID      uint                       `json:"userID,omitempty"`
	Username    string                     `json:"username,omitempty"`
	Level       uint                       `json:"level,omitempty"`
	LastInputAt int64                      `json:"lastInputAt,omitempty"`
	ConnectedAt int64                      `json:"connectedAt,omitempty"`
	Disabled    bool                       `json:"disabled,omitempty"`
	GroupID     string                     `json:"groupID,omitempty"`
	Meta        map[string]json.RawMessage `json:"meta,omitempty"`
}

// DecodeParticipant parses a participant JSON object.
func DecodeParticipant(raw json.RawMessage) (resource.Participant, error) {
	var wire wireParticipant
	if err := json.Unmarshal(raw, &wire); err != nil {
		return resource.Participant{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode participant: %v", err)}
	}
	p := resource.Participant{
		SessionID:   wire.SessionID,
		UserID:      wire.UserID,
		Username:    wire.Username,
		Level:       wire.Level,
		LastInputAt: wire.LastInputAt,
		ConnectedAt: wire.ConnectedAt,
		Disabled:    wire.Disabled,
		GroupID:     wire.GroupID,
	}
	if wire.Meta != nil {
		p.Meta = resource.Meta(wire.Meta)
	}
	return p.WithDefaultGroup(), nil
}

// EncodeParticipant serializes a participant.
func EncodeParticipant(p resource.Participant) ([]byte, error) {
	wire := wireParticipant{
		SessionID:   p.SessionID,
		UserID:      p.UserID,
		Username:    p.Username,
		Level:       p.Level,
		LastInputAt: p.LastInputAt,
		ConnectedAt: p.ConnectedAt,
		Disabled:    p.Disabled,
		GroupID:     p.GroupID,
	}
	if p.Meta != nil {
		wire.Meta = map[string]json.RawMessage(p.Meta)
	}
	return json.Marshal(wire)
}

// wireControlInput mirrors resource.ControlInput, preserving Raw for
// unrecognized event types.
type wireControlInput struct {
	ControlID     string `json:"controlID"`
	ParticipantID string `json:"participantID"`
	Event         string `json:"event"`
	TransactionID string `json:"transactionID,omitempty"`
}

// DecodeControlInput parses the "input" object of a giveInput method and
// projects it into the typed event structs from internal/resource/input.go.
func DecodeControlInput(participantID string, raw json.RawMessage) (any, error) {
	var wire wireControlInput
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode control input: %v", err)}
	}
	wire.ParticipantID = participantID

	base := resource.ControlInput{
		ControlID:     wire.ControlID,
		ParticipantID: participantID,
		Event:         wire.Event,
		TransactionID: wire.TransactionID,
		Raw:           raw,
	}

	switch wire.Event {
	case resource.InputEventMouseDown, resource.InputEventMouseUp:
		var extra struct {
			Button int `json:"button"`
		}
		_ = json.Unmarshal(raw, &extra)
		return resource.MouseInput{ControlInput: base, Button: extra.Button}, nil
	case resource.InputEventKeyDown, resource.InputEventKeyUp:
		var extra struct {
			Key int `json:"key"`
		}
		_ = json.Unmarshal(raw, &extra)
		return resource.KeyInput{ControlInput: base, Key: extra.Key}, nil
	case resource.InputEventMove:
		var extra struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}
		_ = json.Unmarshal(raw, &extra)
		return resource.MoveInput{ControlInput: base, X: extra.X, Y: extra.Y}, nil
	case resource.InputEventSubmit:
		var extra struct {
			Value string `json:"value"`
		}
		_ = json.Unmarshal(raw, &extra)
		return resource.SubmitInput{ControlInput: base, Value: extra.Value}, nil
	default:
		return resource.GenericInput{ControlInput: base}, nil
	}
}
