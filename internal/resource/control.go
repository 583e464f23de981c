package resource

// ControlKind is the closed set of control variants the wire protocol
// carries. Unknown kinds never appear on the wire — the codec rejects them
// with a ProtocolError rather than inventing an UNKNOWN control sentinel,
// since (unlike InteractiveMethod) a control's Kind decides which Go
// struct it deserializes into.
type ControlKind string

const (
	ControlKindButton   ControlKind = "button"
	ControlKindJoystick ControlKind = "joystick"
	ControlKindLabel    ControlKind = "label"
	ControlKindTextbox  ControlKind = "textbox"
)

// CanvasSize is the logical layout target for a ControlPosition.
type CanvasSize string

const (
	CanvasSmall  CanvasSize = "small"
	CanvasMedium CanvasSize = "medium"
	CanvasLarge  CanvasSize = "large"
)

// ControlPosition places a control on one canvas size. A Control carries
// at most one position per CanvasSize; Positions enforces that by keying
// on CanvasSize instead of appending to a slice.
type ControlPosition struct {
	CanvasSize CanvasSize
	Width      float64
	Height     float64
	X          float64
	Y          float64
}

// ButtonAttrs holds the button-specific fields of a Control.
type ButtonAttrs struct {
	KeyCode         int
	Text            string
	Tooltip         string
	Cost            int
	Progress        float64
	Cooldown        int64
	BackgroundColor string
	TextColor       string
	BackgroundImage string
}

// JoystickAttrs holds the joystick-specific fields of a Control.
type JoystickAttrs struct {
	SampleRate int
	Angle      float64
	Intensity  float64
}

// LabelAttrs holds the label-specific fields of a Control.
type LabelAttrs struct {
	Text      string
	TextSize  float64
	TextColor string
	Bold      bool
	Italic    bool
	Underline bool
}

// TextboxAttrs holds the textbox-specific fields of a Control.
type TextboxAttrs struct {
	SubmitText  string
	Placeholder string
	Cost        int
	HasSubmit   bool
	Multiline   bool
}

// Control is a tagged variant of the four UI element kinds: an explicit
// discriminator plus a per-kind struct, no reflection, no class hierarchy.
// Exactly one of Button/Joystick/Label/Textbox is non-nil, matching Kind.
type Control struct {
	ControlID string
	SceneID   string
	Kind      ControlKind
	Disabled  bool
	Positions map[CanvasSize]ControlPosition

	Button   *ButtonAttrs
	Joystick *JoystickAttrs
	Label    *LabelAttrs
	Textbox  *TextboxAttrs
}

// Equal compares controls by ControlID alone.
func (c Control) Equal(other Control) bool {
	return c.ControlID == other.ControlID
}

// SetPosition replaces any existing position for size, enforcing the
// at-most-one-per-canvas-size invariant.
func (c *Control) SetPosition(pos ControlPosition) {
	if c.Positions == nil {
		c.Positions = make(map[CanvasSize]ControlPosition, 1)
	}
	c.Positions[pos.CanvasSize] = pos
}

// HasAnyPosition reports whether at least one ControlPosition is set. The
// control service fails create() fast with PositionRequiredError when this
// is false, since the server rejects positionless controls outright.
func (c Control) HasAnyPosition() bool {
	return len(c.Positions) > 0
}
